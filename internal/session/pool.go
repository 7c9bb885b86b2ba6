package session

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"time"

	"mcpool/internal/config"
	"mcpool/internal/mcpserver"
	"mcpool/internal/metrics"
	"mcpool/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Opener acquires a connected client for one server. The returned client is
// owned by the caller and released with Close.
type Opener func(ctx context.Context, name string, def config.ServerDefinition) (mcpserver.MCPClient, error)

// DefaultOpener opens sessions over the transports in mcpserver.
var DefaultOpener Opener = mcpserver.Open

// serverSession is one open connection plus the tools it advertised.
type serverSession struct {
	client        mcpserver.MCPClient
	capabilities  []Capability
	establishedAt time.Time
}

// PoolStats is a point-in-time view of a pool.
type PoolStats struct {
	ID           string    `json:"id" yaml:"id"`
	Fingerprint  string    `json:"fingerprint" yaml:"fingerprint"`
	Servers      []string  `json:"servers" yaml:"servers"`
	OpenSessions []string  `json:"openSessions" yaml:"openSessions"`
	ToolCount    int       `json:"toolCount" yaml:"toolCount"`
	Closed       bool      `json:"closed" yaml:"closed"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// Pool keeps at most one open session per server name for a single
// configuration. Sessions are established lazily on the first capability
// request for that server and cached until refreshed or closed.
type Pool struct {
	id          string
	fingerprint string
	servers     config.ServerSet
	opener      Opener
	metrics     metrics.Metrics
	concurrency int
	createdAt   time.Time

	mu       sync.Mutex
	sessions map[string]*serverSession
	pending  map[string]*pendingEstablishment
	closed   bool

	// establish serializes first use of a server name.
	establish singleflight.Group
}

// maxEstablishAttempts bounds how often a caller restarts an establishment
// that was cancelled by the other callers waiting on it.
const maxEstablishAttempts = 3

// pendingEstablishment is the context an in-flight establishment runs on.
// It is detached from the caller that started the flight and cancelled only
// once every caller waiting on it has given up, or the pool closes.
type pendingEstablishment struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewPool creates an empty pool for servers. No connection is opened until
// a capability is requested.
func NewPool(fingerprint string, servers config.ServerSet, opts ...PoolOption) *Pool {
	p := &Pool{
		id:          uuid.New().String(),
		fingerprint: fingerprint,
		servers:     servers,
		opener:      DefaultOpener,
		metrics:     metrics.NewNoopMetrics(),
		concurrency: config.DefaultEstablishConcurrency,
		createdAt:   time.Now(),
		sessions:    make(map[string]*serverSession),
		pending:     make(map[string]*pendingEstablishment),
	}
	for _, opt := range opts {
		opt(p)
	}

	runtime.SetFinalizer(p, warnOnLeak)
	return p
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithOpener replaces the session opener.
func WithOpener(opener Opener) PoolOption {
	return func(p *Pool) {
		if opener != nil {
			p.opener = opener
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.Metrics) PoolOption {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithConcurrency bounds how many sessions GetAllCapabilities establishes at once.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func warnOnLeak(p *Pool) {
	p.mu.Lock()
	open := len(p.sessions)
	closed := p.closed
	p.mu.Unlock()

	if !closed && open > 0 {
		logging.Warn("ConnectionPool", "Pool %s was not properly closed. %d sessions may leak.", p.id, open)
	}
}

// ID returns the pool's unique identifier.
func (p *Pool) ID() string { return p.id }

// Fingerprint returns the configuration fingerprint the pool serves.
func (p *Pool) Fingerprint() string { return p.fingerprint }

// Servers returns the sorted server names of the pool's configuration.
func (p *Pool) Servers() []string { return p.servers.Names() }

// Closed reports whether CloseAll has run.
func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// GetCapabilities returns the tools of one server, establishing its session
// on first use. Later calls return the cached list. Concurrent first callers
// share a single establishment; each of them stops waiting when its own ctx
// is done, and the establishment itself is cancelled only when all have.
func (p *Pool) GetCapabilities(ctx context.Context, server string) ([]Capability, error) {
	def, ok := p.servers[server]
	if !ok {
		if p.Closed() {
			return nil, ErrClientClosed
		}
		return nil, &UnknownServerError{Server: server}
	}

	for attempt := 1; ; attempt++ {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClientClosed
		}
		if s, ok := p.sessions[server]; ok {
			p.mu.Unlock()
			return slices.Clone(s.capabilities), nil
		}
		pe := p.pending[server]
		if pe == nil || pe.ctx.Err() != nil {
			flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			pe = &pendingEstablishment{ctx: flightCtx, cancel: cancel}
			p.pending[server] = pe
		}
		pe.waiters++
		p.mu.Unlock()

		ch := p.establish.DoChan(server, func() (interface{}, error) {
			defer p.finishPending(server, pe)
			return p.establishOnce(pe.ctx, server, def)
		})

		select {
		case res := <-ch:
			p.mu.Lock()
			pe.waiters--
			p.mu.Unlock()

			if res.Err == nil {
				return slices.Clone(res.Val.([]Capability)), nil
			}
			if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				if p.Closed() {
					return nil, ErrClientClosed
				}
				// Everyone else waiting on that flight gave up; start our own.
				if attempt < maxEstablishAttempts {
					continue
				}
			}
			return nil, res.Err
		case <-ctx.Done():
			p.abandonPending(server, pe)
			return nil, ctx.Err()
		}
	}
}

// establishOnce runs inside the flight for server.
func (p *Pool) establishOnce(ctx context.Context, server string, def config.ServerDefinition) ([]Capability, error) {
	// A previous flight may have finished between our check and winning this one.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClientClosed
	}
	if s, ok := p.sessions[server]; ok {
		p.mu.Unlock()
		return s.capabilities, nil
	}
	p.mu.Unlock()

	return p.openSession(ctx, server, def)
}

func (p *Pool) finishPending(server string, pe *pendingEstablishment) {
	p.mu.Lock()
	if p.pending[server] == pe {
		delete(p.pending, server)
	}
	p.mu.Unlock()
	pe.cancel()
}

// abandonPending drops one waiter. The last one to leave cancels the
// establishment and unregisters it so later callers start afresh.
func (p *Pool) abandonPending(server string, pe *pendingEstablishment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pe.waiters--
	if pe.waiters > 0 {
		return
	}
	if p.pending[server] == pe {
		delete(p.pending, server)
	}
	pe.cancel()
}

func (p *Pool) openSession(ctx context.Context, server string, def config.ServerDefinition) ([]Capability, error) {
	logging.Info("ConnectionPool", "Creating persistent session for server: %s", server)

	client, err := p.opener(ctx, server, def)
	if err != nil {
		p.metrics.ObserveEstablishment(server, metrics.ResultFailure)
		logging.Error("ConnectionPool", err, "Failed to create persistent session for %s", server)
		return nil, &EstablishmentError{Server: server, Err: err}
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		p.metrics.ObserveEstablishment(server, metrics.ResultFailure)
		logging.Error("ConnectionPool", err, "Failed to load tools for %s", server)
		if closeErr := client.Close(); closeErr != nil {
			logging.Error("ConnectionPool", &CloseError{Server: server, Err: closeErr}, "Failed to release half-open session")
		}
		return nil, &EstablishmentError{Server: server, Err: err}
	}

	s := &serverSession{
		client:        client,
		capabilities:  newCapabilities(server, client, tools),
		establishedAt: time.Now(),
	}

	p.mu.Lock()
	if p.closed {
		// CloseAll ran while we were connecting.
		p.mu.Unlock()
		if closeErr := client.Close(); closeErr != nil {
			logging.Error("ConnectionPool", &CloseError{Server: server, Err: closeErr}, "Failed to release session opened after close")
		}
		return nil, ErrClientClosed
	}
	p.sessions[server] = s
	p.mu.Unlock()

	p.metrics.ObserveEstablishment(server, metrics.ResultSuccess)
	p.metrics.IncrementOpenSessions()
	logging.Info("ConnectionPool", "Created persistent session for %s with %d tools", server, len(tools))

	return s.capabilities, nil
}

// GetAllCapabilities returns the tools of every configured server, ordered
// by server name. A server whose session cannot be established is logged
// and contributes nothing; only a closed pool fails the call.
func (p *Pool) GetAllCapabilities(ctx context.Context) ([]Capability, error) {
	if p.Closed() {
		return nil, ErrClientClosed
	}

	names := p.servers.Names()
	results := make([][]Capability, len(names))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, name := range names {
		g.Go(func() error {
			caps, err := p.GetCapabilities(ctx, name)
			if err != nil {
				logging.Error("ConnectionPool", err, "Failed to get tools from server %s", name)
				return nil
			}
			results[i] = caps
			return nil
		})
	}
	_ = g.Wait()

	if p.Closed() {
		return nil, ErrClientClosed
	}

	var all []Capability
	for _, caps := range results {
		all = append(all, caps...)
	}
	logging.Info("ConnectionPool", "Total persistent tools loaded: %d", len(all))

	return all, nil
}

// Refresh closes the session for server, if any, discards its cached tools
// and establishes it again.
func (p *Pool) Refresh(ctx context.Context, server string) ([]Capability, error) {
	logging.Info("ConnectionPool", "Refreshing session for server: %s", server)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClientClosed
	}
	s, ok := p.sessions[server]
	if ok {
		delete(p.sessions, server)
	}
	p.mu.Unlock()

	if ok {
		p.closeSession(server, s)
	}

	return p.GetCapabilities(ctx, server)
}

// CloseAll releases every session and marks the pool closed. Per-session
// failures are logged and do not stop the remaining sessions from closing.
// Calling CloseAll again is a no-op.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	sessions := p.sessions
	p.sessions = make(map[string]*serverSession)
	for _, pe := range p.pending {
		pe.cancel()
	}
	p.mu.Unlock()

	logging.Info("ConnectionPool", "Closing all persistent MCP sessions of pool %s...", p.id)

	for _, name := range p.servers.Names() {
		if s, ok := sessions[name]; ok {
			p.closeSession(name, s)
		}
	}

	logging.Info("ConnectionPool", "All MCP sessions of pool %s closed", p.id)
}

func (p *Pool) closeSession(server string, s *serverSession) {
	p.metrics.DecrementOpenSessions()

	if err := s.client.Close(); err != nil {
		p.metrics.ObserveClose(server, metrics.ResultFailure)
		logging.Error("ConnectionPool", &CloseError{Server: server, Err: err}, "Error closing session")
		return
	}

	p.metrics.ObserveClose(server, metrics.ResultSuccess)
	logging.Info("ConnectionPool", "Closed session for %s", server)
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PoolStats{
		ID:           p.id,
		Fingerprint:  p.fingerprint,
		Servers:      p.servers.Names(),
		OpenSessions: []string{},
		Closed:       p.closed,
		CreatedAt:    p.createdAt,
	}
	for _, name := range stats.Servers {
		if s, ok := p.sessions[name]; ok {
			stats.OpenSessions = append(stats.OpenSessions, name)
			stats.ToolCount += len(s.capabilities)
		}
	}
	return stats
}

// findCapability looks up a tool on an established or lazily established session.
func (p *Pool) findCapability(ctx context.Context, server, tool string) (Capability, error) {
	caps, err := p.GetCapabilities(ctx, server)
	if err != nil {
		return Capability{}, err
	}
	for _, c := range caps {
		if c.Name() == tool {
			return c, nil
		}
	}
	return Capability{}, &UnknownToolError{Server: server, Tool: tool}
}
