package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
)

// PrintToolResult writes a tool result for humans. Text content that
// parses as JSON is re-indented; binary content is summarized.
func PrintToolResult(w io.Writer, result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Fprintln(w, text.FgRed.Sprint("Tool returned an error:"))
	} else {
		fmt.Fprintln(w, "Result:")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case mcp.TextContent:
			var obj interface{}
			if json.Unmarshal([]byte(v.Text), &obj) == nil {
				if b, err := json.MarshalIndent(obj, "", "  "); err == nil {
					fmt.Fprintln(w, string(b))
					continue
				}
			}
			fmt.Fprintln(w, v.Text)
		case mcp.ImageContent:
			fmt.Fprintf(w, "[Image: MIME type %s, %d bytes]\n", v.MIMEType, len(v.Data))
		case mcp.AudioContent:
			fmt.Fprintf(w, "[Audio: MIME type %s, %d bytes]\n", v.MIMEType, len(v.Data))
		default:
			fmt.Fprintf(w, "%+v\n", content)
		}
	}
}
