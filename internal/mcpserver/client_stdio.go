package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mcpool/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
)

// DefaultStdioInitTimeout bounds subprocess start plus handshake when the
// caller's context has no deadline of its own.
const DefaultStdioInitTimeout = 10 * time.Second

// StdioClient talks to a local subprocess over stdin/stdout.
type StdioClient struct {
	baseMCPClient
	command string
	args    []string
	env     map[string]string
}

// NewStdioClientWithEnv creates a stdio client. The subprocess is started by Initialize.
func NewStdioClientWithEnv(command string, args []string, env map[string]string) *StdioClient {
	return &StdioClient{
		command: command,
		args:    args,
		env:     env,
	}
}

// Initialize starts the subprocess and performs the protocol handshake.
func (c *StdioClient) Initialize(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultStdioInitTimeout)
		defer cancel()
	}

	return c.connect(ctx, "StdioClient", c.command, func(context.Context) (*client.Client, error) {
		logging.Debug("StdioClient", "Starting stdio server: %s %v (%d env vars)", c.command, c.args, len(c.env))

		mcpClient, err := client.NewStdioMCPClient(c.command, c.environ(), c.args...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdio client: %w", err)
		}
		return mcpClient, nil
	})
}

// environ renders env as sorted KEY=value pairs.
func (c *StdioClient) environ() []string {
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, c.env[k]))
	}
	return out
}
