// Package formatting renders session, pool and profile listings for the CLI.
package formatting

import (
	"fmt"

	"mcpool/internal/api"
	"mcpool/internal/session"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	// NoColor disables ANSI colors in table output.
	NoColor bool
}

// Formatter renders admin API listings.
type Formatter interface {
	FormatSessions(records []session.ContextRecord) (string, error)
	FormatPools(pools []session.PoolStats) (string, error)
	FormatProfiles(profiles []api.ProfileInfo) (string, error)
	FormatTools(tools []session.Capability) (string, error)
}

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
	}
}

// NewFormatter creates the formatter for options.Format.
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatTable:
		fallthrough
	default:
		return &TableFormatter{options: options}
	}
}
