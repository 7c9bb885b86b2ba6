package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mcpool/internal/config"
	"mcpool/internal/mcpserver"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeClient is an in-memory MCP session.
type fakeClient struct {
	server   string
	tools    []mcp.Tool
	listErr  error
	closeErr error

	closed atomic.Bool
	calls  atomic.Int32
}

func (f *fakeClient) Initialize(ctx context.Context) error { return nil }

func (f *fakeClient) Close() error {
	f.closed.Store(true)
	return f.closeErr
}

func (f *fakeClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tools, nil
}

func (f *fakeClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if f.closed.Load() {
		return nil, mcpserver.ErrNotConnected
	}
	f.calls.Add(1)
	return mcp.NewToolResultText(fmt.Sprintf("%s/%s:%v", f.server, name, args["q"])), nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

// countingOpener hands out fake clients and counts establishments per server.
type countingOpener struct {
	mu       sync.Mutex
	counts   map[string]int
	clients  map[string][]*fakeClient
	failOpen map[string]error
	failList map[string]error
	closeErr map[string]error
	delay    time.Duration

	// cancelled counts establishments abandoned because ctx was done.
	cancelled int

	// beforeOpen, when set, runs at the start of every Open.
	beforeOpen func(name string)
}

func newCountingOpener() *countingOpener {
	return &countingOpener{
		counts:   make(map[string]int),
		clients:  make(map[string][]*fakeClient),
		failOpen: make(map[string]error),
		failList: make(map[string]error),
		closeErr: make(map[string]error),
	}
}

func (o *countingOpener) Open(ctx context.Context, name string, def config.ServerDefinition) (mcpserver.MCPClient, error) {
	o.mu.Lock()
	delay, hook := o.delay, o.beforeOpen
	o.mu.Unlock()

	if hook != nil {
		hook(name)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			o.mu.Lock()
			o.cancelled++
			o.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.counts[name]++
	if err := o.failOpen[name]; err != nil {
		return nil, err
	}

	c := &fakeClient{
		server: name,
		tools: []mcp.Tool{
			mcp.NewTool(name + "_navigate"),
			mcp.NewTool(name + "_snapshot"),
		},
		listErr:  o.failList[name],
		closeErr: o.closeErr[name],
	}
	o.clients[name] = append(o.clients[name], c)
	return c, nil
}

func (o *countingOpener) count(name string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[name]
}

func (o *countingOpener) cancelledCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func (o *countingOpener) client(name string, i int) *fakeClient {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clients[name][i]
}

var errUnreachable = errors.New("connection refused")

func browserServers() config.ServerSet {
	return config.ServerSet{
		"browser": {Transport: config.TransportStreamableHTTP, URL: "http://localhost:8931/mcp"},
	}
}

func twoServers() config.ServerSet {
	return config.ServerSet{
		"browser": {Transport: config.TransportStreamableHTTP, URL: "http://localhost:8931/mcp"},
		"files": {
			Transport: config.TransportStdio,
			Command:   "npx",
			Args:      []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
			Env:       map[string]string{"A": "1", "B": "2"},
		},
	}
}
