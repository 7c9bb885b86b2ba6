package config

import (
	"sort"
	"time"
)

// Transport names accepted in server definitions.
const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// Teardown policies for targeted session cleanup.
const (
	// TeardownPool closes the whole pool that served a (user, project) pair.
	TeardownPool = "pool"
	// TeardownRefCounted closes the pool only once no other pair references it.
	TeardownRefCounted = "refcount"
)

// Config is the top-level configuration structure for mcpool.
type Config struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Sessions SessionsConfig     `yaml:"sessions"`
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// ServerConfig configures the admin HTTP API.
type ServerConfig struct {
	Host            string        `yaml:"host,omitempty"`            // Host to bind to (default: localhost)
	Port            int           `yaml:"port,omitempty"`            // Port to listen on (default: 8095)
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"` // Budget for graceful shutdown (default: 15s)
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn or error
	Format string `yaml:"format,omitempty"` // text or json
}

// SessionsConfig tunes the session manager.
type SessionsConfig struct {
	// Teardown selects how CleanupSession treats pools shared by several
	// (user, project) pairs. See TeardownPool and TeardownRefCounted.
	Teardown string `yaml:"teardown,omitempty"`
	// EstablishConcurrency bounds how many servers of one pool are
	// connected in parallel when all capabilities are requested.
	EstablishConcurrency int `yaml:"establishConcurrency,omitempty"`
}

// Profile is a named set of MCP servers that callers can refer to instead
// of shipping the full server configuration with every request.
type Profile struct {
	Servers ServerSet `yaml:"servers"`
}

// ServerSet maps a server name to its connection parameters.
type ServerSet map[string]ServerDefinition

// ServerDefinition holds the connection parameters of one MCP server.
type ServerDefinition struct {
	Transport string            `yaml:"transport" json:"transport"`
	Command   string            `yaml:"command,omitempty" json:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty" json:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	URL       string            `yaml:"url,omitempty" json:"url,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Disabled  bool              `yaml:"disabled,omitempty" json:"-"`
}

// Names returns the server names in sorted order.
func (s ServerSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled returns a copy of the set without disabled servers.
func (s ServerSet) Enabled() ServerSet {
	out := make(ServerSet, len(s))
	for name, def := range s {
		if def.Disabled {
			continue
		}
		out[name] = def
	}
	return out
}

// ProfileNames returns the configured profile names in sorted order.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
