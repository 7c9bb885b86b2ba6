package mcpserver

import (
	"context"
	"fmt"

	"mcpool/internal/config"
	"mcpool/pkg/logging"
)

// MCPClientConfig contains configuration for creating an MCP client.
// This provides a unified configuration structure for all client types.
type MCPClientConfig struct {
	// Command is the executable path for stdio servers
	Command string
	// Args are the command line arguments for stdio servers
	Args []string
	// Env contains environment variables for stdio servers
	Env map[string]string
	// URL is the endpoint for remote servers (streamable-http, sse)
	URL string
	// Headers are HTTP headers for remote servers
	Headers map[string]string
}

// ClientConfigFromDefinition converts a configured server into client settings.
func ClientConfigFromDefinition(def config.ServerDefinition) MCPClientConfig {
	return MCPClientConfig{
		Command: def.Command,
		Args:    def.Args,
		Env:     def.Env,
		URL:     def.URL,
		Headers: def.Headers,
	}
}

// NewMCPClientFromType creates the appropriate MCP client based on the transport.
//
// Supported transports:
//   - "stdio": Creates a StdioClient for local subprocess communication
//   - "streamable-http": Creates a StreamableHTTPClient for HTTP-based servers
//   - "sse": Creates an SSEClient for Server-Sent Events communication
//
// The returned client is not connected yet; call Initialize.
func NewMCPClientFromType(transport string, cfg MCPClientConfig) (MCPClient, error) {
	switch transport {
	case config.TransportStdio:
		if cfg.Command == "" {
			return nil, fmt.Errorf("command is required for stdio transport")
		}
		return NewStdioClientWithEnv(cfg.Command, cfg.Args, cfg.Env), nil

	case config.TransportStreamableHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for streamable-http transport")
		}
		return NewStreamableHTTPClientWithHeaders(cfg.URL, cfg.Headers), nil

	case config.TransportSSE:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for sse transport")
		}
		return NewSSEClientWithHeaders(cfg.URL, cfg.Headers), nil

	default:
		return nil, fmt.Errorf("unsupported MCP transport: %q (supported: %s, %s, %s)",
			transport, config.TransportStdio, config.TransportStreamableHTTP, config.TransportSSE)
	}
}

// Open acquires a connected client for the named server. On success the
// caller owns the client and must release it with Close; on failure nothing
// is left open.
func Open(ctx context.Context, name string, def config.ServerDefinition) (MCPClient, error) {
	c, err := NewMCPClientFromType(def.Transport, ClientConfigFromDefinition(def))
	if err != nil {
		return nil, err
	}

	logging.Debug("MCPClientFactory", "Opening %s session for server %s", def.Transport, name)

	if err := c.Initialize(ctx); err != nil {
		// Initialize already released whatever it had opened.
		return nil, err
	}

	return c, nil
}
