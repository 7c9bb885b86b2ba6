package mcpserver

import (
	"context"
	"fmt"

	"mcpool/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// SSEClient talks to a remote server over Server-Sent Events.
type SSEClient struct {
	baseMCPClient
	url     string
	headers map[string]string
}

// NewSSEClientWithHeaders creates an SSE client sending headers with every request.
func NewSSEClientWithHeaders(url string, headers map[string]string) *SSEClient {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &SSEClient{
		url:     url,
		headers: headers,
	}
}

// Initialize opens the event stream and performs the protocol handshake.
func (c *SSEClient) Initialize(ctx context.Context) error {
	return c.connect(ctx, "SSEClient", c.url, func(ctx context.Context) (*client.Client, error) {
		var opts []transport.ClientOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHeaders(c.headers))
		}
		logging.Debug("SSEClient", "Connecting to %s (%d custom headers)", c.url, len(c.headers))

		mcpClient, err := client.NewSSEMCPClient(c.url, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE client: %w", err)
		}

		// The event stream must be open before the handshake can be sent. It
		// lives until Close, not until the caller's ctx is done; ctx still
		// bounds the handshake.
		if err := mcpClient.Start(context.WithoutCancel(ctx)); err != nil {
			mcpClient.Close()
			return nil, fmt.Errorf("failed to start SSE transport: %w", err)
		}
		return mcpClient, nil
	})
}
