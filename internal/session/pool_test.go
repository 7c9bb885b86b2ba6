package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"mcpool/internal/config"
	"mcpool/internal/metrics"
	"mcpool/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, servers config.ServerSet, opener *countingOpener) *Pool {
	t.Helper()
	fp, err := Fingerprint(servers)
	require.NoError(t, err)
	return NewPool(fp, servers, WithOpener(opener.Open))
}

func TestPool_GetCapabilitiesEstablishesOnce(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	ctx := context.Background()
	first, err := p.GetCapabilities(ctx, "browser")
	require.NoError(t, err)
	second, err := p.GetCapabilities(ctx, "browser")
	require.NoError(t, err)

	assert.Equal(t, 1, opener.count("browser"))
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "browser", first[0].Server)
	assert.Equal(t, "browser_navigate", first[0].Name())
}

func TestPool_GetCapabilitiesLazy(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, twoServers(), opener)
	defer p.CloseAll()

	_, err := p.GetCapabilities(context.Background(), "browser")
	require.NoError(t, err)

	assert.Equal(t, 1, opener.count("browser"))
	assert.Equal(t, 0, opener.count("files"))
	assert.Equal(t, []string{"browser"}, p.Stats().OpenSessions)
}

func TestPool_ConcurrentFirstUseSharesEstablishment(t *testing.T) {
	opener := newCountingOpener()
	opener.delay = 20 * time.Millisecond
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.GetCapabilities(context.Background(), "browser")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, opener.count("browser"))
}

func TestPool_UnknownServer(t *testing.T) {
	p := newTestPool(t, browserServers(), newCountingOpener())

	_, err := p.GetCapabilities(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsUnknownServer(err))
}

func TestPool_EstablishmentFailure(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(o *countingOpener)
		closed bool
	}{
		{
			name:  "open fails",
			setup: func(o *countingOpener) { o.failOpen["browser"] = errUnreachable },
		},
		{
			name:   "listing tools fails",
			setup:  func(o *countingOpener) { o.failList["browser"] = errUnreachable },
			closed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := newCountingOpener()
			tt.setup(opener)
			p := newTestPool(t, browserServers(), opener)

			_, err := p.GetCapabilities(context.Background(), "browser")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSessionEstablishment)
			assert.ErrorIs(t, err, errUnreachable)

			var estErr *EstablishmentError
			require.ErrorAs(t, err, &estErr)
			assert.Equal(t, "browser", estErr.Server)

			if tt.closed {
				// The half-open session was released.
				assert.True(t, opener.client("browser", 0).closed.Load())
			}
			assert.Empty(t, p.Stats().OpenSessions)

			// Nothing was cached, so the next call tries again.
			_, _ = p.GetCapabilities(context.Background(), "browser")
			assert.Equal(t, 2, opener.count("browser"))
		})
	}
}

func TestPool_GetAllCapabilitiesToleratesPartialFailure(t *testing.T) {
	opener := newCountingOpener()
	opener.failOpen["browser"] = errUnreachable
	p := newTestPool(t, twoServers(), opener)
	defer p.CloseAll()

	caps, err := p.GetAllCapabilities(context.Background())
	require.NoError(t, err)
	require.Len(t, caps, 2)
	for _, c := range caps {
		assert.Equal(t, "files", c.Server)
	}
}

func TestPool_GetAllCapabilitiesOrderedByServer(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, twoServers(), opener)
	defer p.CloseAll()

	caps, err := p.GetAllCapabilities(context.Background())
	require.NoError(t, err)

	var names []string
	for _, c := range caps {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"browser_navigate", "browser_snapshot", "files_navigate", "files_snapshot"}, names)
}

func TestPool_CloseAll(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, twoServers(), opener)

	_, err := p.GetAllCapabilities(context.Background())
	require.NoError(t, err)

	p.CloseAll()
	assert.True(t, p.Closed())
	assert.True(t, opener.client("browser", 0).closed.Load())
	assert.True(t, opener.client("files", 0).closed.Load())

	_, err = p.GetCapabilities(context.Background(), "browser")
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = p.GetAllCapabilities(context.Background())
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = p.Refresh(context.Background(), "browser")
	assert.ErrorIs(t, err, ErrClientClosed)

	// Second close is a no-op.
	assert.NotPanics(t, p.CloseAll)
	assert.Equal(t, 1, opener.count("browser"))
}

func TestPool_CloseAllContinuesPastFailures(t *testing.T) {
	opener := newCountingOpener()
	opener.closeErr["browser"] = errors.New("broken pipe")
	p := newTestPool(t, twoServers(), opener)

	_, err := p.GetAllCapabilities(context.Background())
	require.NoError(t, err)

	p.CloseAll()
	assert.True(t, opener.client("files", 0).closed.Load())
	assert.Empty(t, p.Stats().OpenSessions)
}

func TestPool_Refresh(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	ctx := context.Background()
	before, err := p.GetCapabilities(ctx, "browser")
	require.NoError(t, err)

	after, err := p.Refresh(ctx, "browser")
	require.NoError(t, err)

	assert.Equal(t, 2, opener.count("browser"))
	assert.True(t, opener.client("browser", 0).closed.Load())
	assert.False(t, opener.client("browser", 1).closed.Load())
	require.Len(t, after, len(before))
	assert.NotSame(t, &before[0], &after[0])

	// Capabilities from the old session no longer work.
	_, err = before[0].Call(ctx, nil)
	assert.Error(t, err)
	_, err = after[0].Call(ctx, map[string]interface{}{"q": "x"})
	assert.NoError(t, err)
}

func TestPool_RefreshWithoutSessionEstablishes(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	caps, err := p.Refresh(context.Background(), "browser")
	require.NoError(t, err)
	assert.Len(t, caps, 2)
	assert.Equal(t, 1, opener.count("browser"))
}

func TestPool_RefreshSurvivesCloseFailure(t *testing.T) {
	opener := newCountingOpener()
	opener.closeErr["browser"] = errors.New("already gone")
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	_, err := p.GetCapabilities(context.Background(), "browser")
	require.NoError(t, err)

	_, err = p.Refresh(context.Background(), "browser")
	require.NoError(t, err)
	assert.Equal(t, 2, opener.count("browser"))
}

func TestPool_Stats(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, twoServers(), opener)
	defer p.CloseAll()

	_, err := p.GetCapabilities(context.Background(), "files")
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, p.ID(), stats.ID)
	assert.Equal(t, p.Fingerprint(), stats.Fingerprint)
	assert.Equal(t, []string{"browser", "files"}, stats.Servers)
	assert.Equal(t, []string{"files"}, stats.OpenSessions)
	assert.Equal(t, 2, stats.ToolCount)
	assert.False(t, stats.Closed)
	assert.False(t, stats.CreatedAt.IsZero())
}

func TestPool_Metrics(t *testing.T) {
	opener := newCountingOpener()
	opener.failOpen["browser"] = errUnreachable
	m := metrics.NewMetrics()

	servers := twoServers()
	fp, err := Fingerprint(servers)
	require.NoError(t, err)
	p := NewPool(fp, servers, WithOpener(opener.Open), WithMetrics(m), WithConcurrency(1))

	_, err = p.GetAllCapabilities(context.Background())
	require.NoError(t, err)
	p.CloseAll()

	families, err := m.GetRegistry().Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["mcpool_sessions_establishments_total"])
	assert.True(t, found["mcpool_sessions_closes_total"])
	assert.True(t, found["mcpool_sessions_open"])
}

func TestPool_EstablishmentSurvivesFirstCallerCancelling(t *testing.T) {
	opener := newCountingOpener()
	opener.delay = 100 * time.Millisecond
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := p.GetCapabilities(ctxA, "browser")
		errA <- err
	}()

	// Let A start the establishment before B joins it.
	time.Sleep(20 * time.Millisecond)
	resultB := make(chan error, 1)
	var capsB []Capability
	go func() {
		var err error
		capsB, err = p.GetCapabilities(context.Background(), "browser")
		resultB <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)
	require.NoError(t, <-resultB)
	assert.Len(t, capsB, 2)
	assert.Equal(t, 1, opener.count("browser"))
	assert.Equal(t, 0, opener.cancelledCount())
}

func TestPool_EstablishmentCancelledWhenAllCallersLeave(t *testing.T) {
	opener := newCountingOpener()
	opener.delay = time.Second
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.GetCapabilities(ctx, "browser")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Eventually(t, func() bool { return opener.cancelledCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, p.Stats().OpenSessions)

	// A later caller starts a fresh establishment.
	opener.mu.Lock()
	opener.delay = 0
	opener.mu.Unlock()
	caps, err := p.GetCapabilities(context.Background(), "browser")
	require.NoError(t, err)
	assert.Len(t, caps, 2)
}

func TestPool_GetCapabilitiesReturnsCopy(t *testing.T) {
	opener := newCountingOpener()
	p := newTestPool(t, browserServers(), opener)
	defer p.CloseAll()

	ctx := context.Background()
	first, err := p.GetCapabilities(ctx, "browser")
	require.NoError(t, err)
	first[0] = Capability{Server: "tampered"}

	second, err := p.GetCapabilities(ctx, "browser")
	require.NoError(t, err)
	assert.Equal(t, "browser", second[0].Server)
	assert.Equal(t, "browser_navigate", second[0].Name())
}

// syncBuffer collects log output written from the finalizer goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPool_LeakWarningForUnclosedPool(t *testing.T) {
	var out syncBuffer
	logging.InitForCLI(logging.LevelWarn, &out)
	t.Cleanup(func() { logging.InitForCLI(logging.LevelInfo, os.Stderr) })

	opener := newCountingOpener()
	func() {
		p := newTestPool(t, browserServers(), opener)
		_, err := p.GetCapabilities(context.Background(), "browser")
		require.NoError(t, err)
	}()

	assert.Eventually(t, func() bool {
		runtime.GC()
		return strings.Contains(out.String(), "was not properly closed. 1 sessions may leak")
	}, 2*time.Second, 10*time.Millisecond)

	// The finalizer only warns; the session is left open.
	assert.False(t, opener.client("browser", 0).closed.Load())
}

func TestPool_NoLeakWarningAfterCloseAll(t *testing.T) {
	var out syncBuffer
	logging.InitForCLI(logging.LevelWarn, &out)
	t.Cleanup(func() { logging.InitForCLI(logging.LevelInfo, os.Stderr) })

	func() {
		p := newTestPool(t, browserServers(), newCountingOpener())
		_, err := p.GetCapabilities(context.Background(), "browser")
		require.NoError(t, err)
		p.CloseAll()
	}()

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.NotContains(t, out.String(), "was not properly closed")
}
