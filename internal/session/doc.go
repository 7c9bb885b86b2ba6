// Package session keeps long-lived MCP sessions alive across independent
// requests.
//
// A Pool holds one open session per server name for a single server
// configuration. Sessions are opened lazily, their tools are cached, and
// concurrent first use of a server shares one establishment. A session can
// be refreshed explicitly for error recovery; CloseAll releases everything
// and leaves the pool permanently closed.
//
// A Manager owns the pools, at most one per configuration Fingerprint, and
// records which pool last served each (user, project) pair. Cleanup is
// either targeted at one pair or global at process shutdown:
//
//	m := session.NewManager(session.ManagerConfig{Teardown: config.TeardownPool})
//	caps, err := m.GetCapabilities(ctx, servers, "1", "10")
//	...
//	m.CleanupSession("1", "10")
//	_ = m.Shutdown(ctx)
//
// A server that cannot be reached contributes no capabilities rather than
// failing the whole request. Nothing is retried automatically.
package session
