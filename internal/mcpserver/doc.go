// Package mcpserver provides the MCP client transports used by the session
// pool.
//
// Every transport implements MCPClient:
//
//   - StdioClient launches a local command and speaks MCP over stdin/stdout.
//   - SSEClient connects to a remote server using Server-Sent Events.
//   - StreamableHTTPClient connects to a remote server over streamable HTTP.
//
// All three are thin wrappers around github.com/mark3labs/mcp-go/client and
// share their protocol operations through baseMCPClient.
//
// # Lifecycle
//
// Open is the acquire half of a session: it builds the client for the
// configured transport and runs the handshake. The caller owns the result
// and releases it with Close. Close is idempotent, and operations on a
// closed client fail with ErrNotConnected.
//
//	c, err := mcpserver.Open(ctx, "browser", def)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	tools, err := c.ListTools(ctx)
package mcpserver
