// Package api is the HTTP admin surface of mcpool.
//
// It serves capability lookups and tool calls against a session.Manager,
// lists context records and pools, exposes targeted and global cleanup,
// and publishes Prometheus metrics. Requests select a configuration either
// by profile name from the config file or by an inline server set.
//
// Errors map to status codes: a closed pool is 409, a failed session
// establishment 502, unknown profiles, servers and tools 404, and
// malformed requests 400.
package api
