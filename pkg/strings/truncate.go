// Package strings holds text helpers shared by the CLI output code.
package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the description width used in tool tables.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest maxLen TruncateDescription honours.
const MinTruncateLen = 4

// TruncateDescription returns the first non-empty line of s with runs of
// whitespace collapsed, cut to maxLen runes. A cut string ends in "...".
//
// Tool descriptions are often several paragraphs long; their first line is
// the summary a table row has room for.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	var line string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			line = l
			break
		}
	}

	runes := []rune(line)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return line
}
