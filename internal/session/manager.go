package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mcpool/internal/config"
	"mcpool/internal/metrics"
	"mcpool/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// ManagerConfig configures a Manager. Zero values select the defaults.
type ManagerConfig struct {
	// Opener acquires sessions; DefaultOpener when nil.
	Opener Opener
	// Metrics receives pool and session measurements; a no-op sink when nil.
	Metrics metrics.Metrics
	// Teardown is config.TeardownPool or config.TeardownRefCounted.
	Teardown string
	// EstablishConcurrency bounds parallel establishment inside one pool.
	EstablishConcurrency int
	// Now stamps context records; time.Now when nil.
	Now func() time.Time
}

// Manager is the registry of connection pools, one per configuration
// fingerprint, and of the (user, project) pairs they serve.
type Manager struct {
	opener      Opener
	metrics     metrics.Metrics
	teardown    string
	concurrency int
	now         func() time.Time

	// mu is the creation lock. It covers the registry lookups only, never
	// session establishment.
	mu       sync.Mutex
	pools    map[string]*Pool
	contexts map[contextKey]*ContextRecord
}

// NewManager creates an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		opener:      cfg.Opener,
		metrics:     cfg.Metrics,
		teardown:    cfg.Teardown,
		concurrency: cfg.EstablishConcurrency,
		now:         cfg.Now,
		pools:       make(map[string]*Pool),
		contexts:    make(map[contextKey]*ContextRecord),
	}
	if m.opener == nil {
		m.opener = DefaultOpener
	}
	if m.metrics == nil {
		m.metrics = metrics.NewNoopMetrics()
	}
	if m.teardown == "" {
		m.teardown = config.TeardownPool
	}
	if m.concurrency <= 0 {
		m.concurrency = config.DefaultEstablishConcurrency
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// GetPool returns the pool for the configuration, creating it on first
// sight of the fingerprint. A closed pool is never returned: it is replaced
// by a fresh one that will re-establish its sessions on demand.
func (m *Manager) GetPool(servers config.ServerSet) (*Pool, error) {
	fp, err := Fingerprint(servers)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[fp]; ok && !p.Closed() {
		return p, nil
	}

	p := NewPool(fp, servers,
		WithOpener(m.opener),
		WithMetrics(m.metrics),
		WithConcurrency(m.concurrency),
	)
	m.pools[fp] = p
	m.metrics.SetActivePools(len(m.pools))

	logging.Info("SessionManager", "Creating new connection pool %s for config fingerprint %s", p.ID(), ShortFingerprint(fp))
	return p, nil
}

// GetCapabilities returns the tools of every server in the configuration.
// When both userID and projectID are set, the pair's context record is
// created or overwritten to point at the serving pool.
func (m *Manager) GetCapabilities(ctx context.Context, servers config.ServerSet, userID, projectID string) ([]Capability, error) {
	p, err := m.GetPool(servers)
	if err != nil {
		return nil, err
	}

	caps, err := p.GetAllCapabilities(ctx)
	if errors.Is(err, ErrClientClosed) {
		// A cleanup closed the pool after we looked it up; GetPool replaces it.
		logging.Debug("SessionManager", "Pool %s closed while in use, establishing a new one", p.ID())
		if p, err = m.GetPool(servers); err != nil {
			return nil, err
		}
		caps, err = p.GetAllCapabilities(ctx)
	}
	if err != nil {
		return nil, err
	}

	if userID != "" && projectID != "" {
		m.recordContext(userID, projectID, p)
	}

	return caps, nil
}

func (m *Manager) recordContext(userID, projectID string, p *Pool) {
	m.mu.Lock()
	m.contexts[contextKey{userID: userID, projectID: projectID}] = &ContextRecord{
		UserID:      userID,
		ProjectID:   projectID,
		PoolID:      p.ID(),
		Fingerprint: p.Fingerprint(),
		LastUsed:    m.now(),
		Pool:        p,
	}
	count := len(m.contexts)
	m.mu.Unlock()

	m.metrics.SetContextRecords(count)
	logging.Info("SessionManager", "Recorded session context for user %s, project %s", userID, projectID)
}

// GetContext returns the context record for the pair, if any.
func (m *Manager) GetContext(userID, projectID string) (ContextRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.contexts[contextKey{userID: userID, projectID: projectID}]
	if !ok {
		return ContextRecord{}, false
	}
	return *rec, true
}

// CleanupSession removes the pair's context record and closes the pool that
// served it. With the pool teardown policy the pool is closed even if other
// pairs share it; with the refcount policy it is closed only once no record
// references it. An unknown pair is a no-op. The result reports whether a
// record was removed.
func (m *Manager) CleanupSession(userID, projectID string) bool {
	key := contextKey{userID: userID, projectID: projectID}

	m.mu.Lock()
	rec, ok := m.contexts[key]
	if !ok {
		m.mu.Unlock()
		logging.Debug("SessionManager", "No session context for user %s, project %s", userID, projectID)
		return false
	}
	delete(m.contexts, key)

	closePool := true
	if m.teardown == config.TeardownRefCounted {
		for _, other := range m.contexts {
			if other.Pool == rec.Pool {
				closePool = false
				break
			}
		}
	}
	if closePool && m.pools[rec.Fingerprint] == rec.Pool {
		delete(m.pools, rec.Fingerprint)
	}
	pools, contexts := len(m.pools), len(m.contexts)
	m.mu.Unlock()

	m.metrics.SetActivePools(pools)
	m.metrics.SetContextRecords(contexts)

	if closePool {
		rec.Pool.CloseAll()
		logging.Info("SessionManager", "Cleaned up session for user %s, project %s", userID, projectID)
	} else {
		logging.Info("SessionManager", "Removed session context for user %s, project %s; pool %s still in use", userID, projectID, rec.PoolID)
	}
	return true
}

// CleanupAll closes every registered pool and forgets all context records.
// The context is checked between pools; pools not yet closed when it is
// done are left open and ctx.Err() is returned.
func (m *Manager) CleanupAll(ctx context.Context) error {
	logging.Info("SessionManager", "Cleaning up all MCP pools...")

	m.mu.Lock()
	pools := make([]*Pool, 0, len(m.pools))
	for _, p := range m.pools {
		pools = append(pools, p)
	}
	m.pools = make(map[string]*Pool)
	m.contexts = make(map[contextKey]*ContextRecord)
	m.mu.Unlock()

	m.metrics.SetActivePools(0)
	m.metrics.SetContextRecords(0)

	sort.Slice(pools, func(i, j int) bool { return pools[i].Fingerprint() < pools[j].Fingerprint() })
	for i, p := range pools {
		if err := ctx.Err(); err != nil {
			logging.Warn("SessionManager", "Cleanup interrupted, %d pools left open", len(pools)-i)
			return err
		}
		p.CloseAll()
	}

	logging.Info("SessionManager", "All MCP pools and session contexts cleaned up")
	return nil
}

// Shutdown is the graceful shutdown hook of the host process.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.CleanupAll(ctx)
}

// ListContexts returns all context records sorted by user then project.
func (m *Manager) ListContexts() []ContextRecord {
	m.mu.Lock()
	records := make([]ContextRecord, 0, len(m.contexts))
	for _, rec := range m.contexts {
		records = append(records, *rec)
	}
	m.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].UserID != records[j].UserID {
			return records[i].UserID < records[j].UserID
		}
		return records[i].ProjectID < records[j].ProjectID
	})
	return records
}

// ListPools returns stats for every registered pool, oldest first.
func (m *Manager) ListPools() []PoolStats {
	m.mu.Lock()
	pools := make([]*Pool, 0, len(m.pools))
	for _, p := range m.pools {
		pools = append(pools, p)
	}
	m.mu.Unlock()

	stats := make([]PoolStats, 0, len(pools))
	for _, p := range pools {
		stats = append(stats, p.Stats())
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].CreatedAt.Equal(stats[j].CreatedAt) {
			return stats[i].CreatedAt.Before(stats[j].CreatedAt)
		}
		return stats[i].ID < stats[j].ID
	})
	return stats
}

// Refresh re-establishes one server's session in the configuration's pool.
func (m *Manager) Refresh(ctx context.Context, servers config.ServerSet, server string) ([]Capability, error) {
	p, err := m.GetPool(servers)
	if err != nil {
		return nil, err
	}
	return p.Refresh(ctx, server)
}

// CallTool runs a tool of one server in the configuration's pool,
// establishing the session if needed. Failures are returned as is.
func (m *Manager) CallTool(ctx context.Context, servers config.ServerSet, server, tool string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	p, err := m.GetPool(servers)
	if err != nil {
		return nil, err
	}

	c, err := p.findCapability(ctx, server, tool)
	if err != nil {
		return nil, err
	}

	result, err := c.Call(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("tool %s on server %s failed: %w", tool, server, err)
	}
	return result, nil
}
