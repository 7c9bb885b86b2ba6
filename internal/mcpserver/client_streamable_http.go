package mcpserver

import (
	"context"
	"fmt"

	"mcpool/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// StreamableHTTPClient talks to a remote server over streamable HTTP.
// Browser-automation servers such as Playwright MCP are usually reached this way.
type StreamableHTTPClient struct {
	baseMCPClient
	url     string
	headers map[string]string
}

// NewStreamableHTTPClientWithHeaders creates a streamable HTTP client sending
// headers with every request.
func NewStreamableHTTPClientWithHeaders(url string, headers map[string]string) *StreamableHTTPClient {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &StreamableHTTPClient{
		url:     url,
		headers: headers,
	}
}

// Initialize establishes the connection and performs the protocol handshake.
func (c *StreamableHTTPClient) Initialize(ctx context.Context) error {
	return c.connect(ctx, "StreamableHTTPClient", c.url, func(context.Context) (*client.Client, error) {
		var opts []transport.StreamableHTTPCOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(c.headers))
		}
		logging.Debug("StreamableHTTPClient", "Connecting to %s (%d custom headers)", c.url, len(c.headers))

		mcpClient, err := client.NewStreamableHttpClient(c.url, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create StreamableHTTP client: %w", err)
		}
		return mcpClient, nil
	})
}
