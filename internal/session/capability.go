package session

import (
	"context"

	"mcpool/internal/mcpserver"

	"github.com/mark3labs/mcp-go/mcp"
)

// Capability is a tool advertised by one server, bound to the session that
// advertised it.
type Capability struct {
	Server string   `json:"server"`
	Tool   mcp.Tool `json:"tool"`

	client mcpserver.MCPClient
}

// Name returns the tool name.
func (c Capability) Name() string {
	return c.Tool.Name
}

// Call runs the tool against the session it came from. Once that session
// has been refreshed or closed the call fails with the transport's error.
func (c Capability) Call(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, mcpserver.ErrNotConnected
	}
	return c.client.CallTool(ctx, c.Tool.Name, args)
}

func newCapabilities(server string, client mcpserver.MCPClient, tools []mcp.Tool) []Capability {
	caps := make([]Capability, 0, len(tools))
	for _, tool := range tools {
		caps = append(caps, Capability{Server: server, Tool: tool, client: client})
	}
	return caps
}
