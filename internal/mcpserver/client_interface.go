package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mcpool/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ClientName is the client name advertised during the MCP handshake.
	ClientName = "mcpool"
	// ClientVersion is the client version advertised during the MCP handshake.
	ClientVersion = "1.0.0"
	// ProtocolVersion is the MCP protocol revision requested by the client.
	ProtocolVersion = "2024-11-05"
)

// ErrNotConnected is returned by operations on a client that has not been
// initialized or has already been closed.
var ErrNotConnected = errors.New("client not connected")

// MCPClient defines the interface for MCP client implementations.
// All transport types (stdio, SSE, streamable-http) implement this interface,
// which keeps the session pool transport-agnostic and easy to fake in tests.
type MCPClient interface {
	// Initialize establishes the connection and performs protocol handshake
	Initialize(ctx context.Context) error
	// Close cleanly shuts down the client connection
	Close() error
	// ListTools returns all available tools from the server
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// CallTool executes a specific tool and returns the result
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
	// Ping checks if the server is responsive
	Ping(ctx context.Context) error
}

// Compile-time interface compliance checks
var (
	_ MCPClient = (*StdioClient)(nil)
	_ MCPClient = (*SSEClient)(nil)
	_ MCPClient = (*StreamableHTTPClient)(nil)
)

// baseMCPClient holds the connection state and protocol operations shared by
// every transport. Transports only differ in how they dial.
type baseMCPClient struct {
	client    client.MCPClient
	mu        sync.RWMutex
	connected bool
}

// dialFunc creates an mcp-go client for one transport. It must not run the
// handshake.
type dialFunc func(ctx context.Context) (*client.Client, error)

// connect dials and runs the MCP handshake. A client that fails the
// handshake is closed before returning. Connecting twice is a no-op.
func (b *baseMCPClient) connect(ctx context.Context, subsystem, target string, dial dialFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	mcpClient, err := dial(ctx)
	if err != nil {
		return err
	}

	initResult, err := handshake(ctx, mcpClient)
	if err != nil {
		logging.Debug(subsystem, "Handshake with %s failed: %v", target, err)
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug(subsystem, "Error closing failed client for %s: %v", target, closeErr)
		}
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	b.client = mcpClient
	b.connected = true

	logging.Debug(subsystem, "Connected to %s. Server: %s, Version: %s",
		target, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	return nil
}

// checkConnected must be called with at least a read lock on mu.
func (b *baseMCPClient) checkConnected() error {
	if !b.connected || b.client == nil {
		return ErrNotConnected
	}
	return nil
}

// handshake runs the MCP initialize exchange on a freshly created client.
func handshake(ctx context.Context, c client.MCPClient) (*mcp.InitializeResult, error) {
	return c.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: ProtocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    ClientName,
				Version: ClientVersion,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
}

// Close releases the connection. Closing twice is a no-op.
func (b *baseMCPClient) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected || b.client == nil {
		return nil
	}

	err := b.client.Close()
	b.connected = false
	b.client = nil

	return err
}

// ListTools returns all tools the server advertises.
func (b *baseMCPClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	return result.Tools, nil
}

// CallTool runs one tool on the server.
func (b *baseMCPClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call tool %s: %w", name, err)
	}

	return result, nil
}

// Ping checks that the server still answers.
func (b *baseMCPClient) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkConnected(); err != nil {
		return err
	}

	return b.client.Ping(ctx)
}
