package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"mcpool/internal/config"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMCPClientFromType tests the factory function for creating MCP clients
func TestNewMCPClientFromType(t *testing.T) {
	tests := []struct {
		name        string
		transport   string
		config      MCPClientConfig
		wantType    interface{}
		errContains string
	}{
		{
			name:      "valid stdio client",
			transport: config.TransportStdio,
			config: MCPClientConfig{
				Command: "echo",
				Args:    []string{"hello"},
				Env:     map[string]string{"TEST": "value"},
			},
			wantType: &StdioClient{},
		},
		{
			name:        "stdio client missing command",
			transport:   config.TransportStdio,
			config:      MCPClientConfig{},
			errContains: "command is required for stdio transport",
		},
		{
			name:      "streamable-http client with headers",
			transport: config.TransportStreamableHTTP,
			config: MCPClientConfig{
				URL:     "http://example.com/mcp",
				Headers: map[string]string{"Authorization": "Bearer token"},
			},
			wantType: &StreamableHTTPClient{},
		},
		{
			name:        "streamable-http client missing URL",
			transport:   config.TransportStreamableHTTP,
			errContains: "url is required for streamable-http transport",
		},
		{
			name:      "valid sse client",
			transport: config.TransportSSE,
			config:    MCPClientConfig{URL: "http://example.com/sse"},
			wantType:  &SSEClient{},
		},
		{
			name:        "sse client missing URL",
			transport:   config.TransportSSE,
			errContains: "url is required for sse transport",
		},
		{
			name:        "unknown transport",
			transport:   "websocket",
			config:      MCPClientConfig{URL: "ws://example.com"},
			errContains: "unsupported MCP transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewMCPClientFromType(tt.transport, tt.config)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, c)
		})
	}
}

func TestClientConfigFromDefinition(t *testing.T) {
	def := config.ServerDefinition{
		Transport: config.TransportStdio,
		Command:   "npx",
		Args:      []string{"-y", "pkg"},
		Env:       map[string]string{"A": "1"},
		URL:       "http://ignored",
		Headers:   map[string]string{"H": "v"},
	}

	cfg := ClientConfigFromDefinition(def)
	assert.Equal(t, "npx", cfg.Command)
	assert.Equal(t, []string{"-y", "pkg"}, cfg.Args)
	assert.Equal(t, map[string]string{"A": "1"}, cfg.Env)
	assert.Equal(t, "http://ignored", cfg.URL)
	assert.Equal(t, map[string]string{"H": "v"}, cfg.Headers)
}

func TestUnconnectedClientOperations(t *testing.T) {
	clients := []MCPClient{
		NewStdioClientWithEnv("echo", nil, nil),
		NewSSEClientWithHeaders("http://example.com/sse", nil),
		NewStreamableHTTPClientWithHeaders("http://example.com/mcp", nil),
	}

	ctx := context.Background()
	for _, c := range clients {
		_, err := c.ListTools(ctx)
		assert.ErrorIs(t, err, ErrNotConnected)

		_, err = c.CallTool(ctx, "tool", nil)
		assert.ErrorIs(t, err, ErrNotConnected)

		assert.ErrorIs(t, c.Ping(ctx), ErrNotConnected)

		// Close on a client that never connected is a no-op.
		assert.NoError(t, c.Close())
	}
}

func TestOpen_InvalidDefinition(t *testing.T) {
	_, err := Open(context.Background(), "broken", config.ServerDefinition{Transport: config.TransportSSE})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")
}

func TestOpen_StdioCommandFails(t *testing.T) {
	_, err := Open(context.Background(), "missing", config.ServerDefinition{
		Transport: config.TransportStdio,
		Command:   "/nonexistent/mcpool-test-binary",
	})
	require.Error(t, err)
}

func TestStdioClientEnvironSorted(t *testing.T) {
	c := NewStdioClientWithEnv("npx", nil, map[string]string{"B": "2", "A": "1", "C": "x=y"})
	assert.Equal(t, []string{"A=1", "B=2", "C=x=y"}, c.environ())
}

func TestConnectDialFailureLeavesClientDisconnected(t *testing.T) {
	var b baseMCPClient
	dialErr := errors.New("dial failed")

	err := b.connect(context.Background(), "Test", "target", func(context.Context) (*client.Client, error) {
		return nil, dialErr
	})
	require.ErrorIs(t, err, dialErr)

	_, err = b.ListTools(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func newEchoSSEServer(t *testing.T) string {
	t.Helper()
	mcpServer := server.NewMCPServer("echo-server", "1.0.0")
	mcpServer.AddTool(
		mcp.NewTool("echo", mcp.WithString("text", mcp.Required())),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(req.GetString("text", "")), nil
		},
	)
	ts := server.NewTestServer(mcpServer)
	t.Cleanup(ts.Close)
	return ts.URL + "/sse"
}

func TestOpen_SSESessionOutlivesOpeningContext(t *testing.T) {
	url := newEchoSSEServer(t)

	// Sessions are opened on behalf of a request whose context ends long
	// before the session does.
	reqCtx, cancelReq := context.WithCancel(context.Background())
	c, err := Open(reqCtx, "echo", config.ServerDefinition{Transport: config.TransportSSE, URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cancelReq()
	time.Sleep(100 * time.Millisecond)

	callCtx, cancelCall := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelCall()

	result, err := c.CallTool(callCtx, "echo", map[string]interface{}{"text": "still here"})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", result.Content[0])
	assert.Equal(t, "still here", text.Text)
}
