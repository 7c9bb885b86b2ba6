// Package logging provides subsystem-tagged, level-filtered logging for mcpool
// built on Go's standard slog package.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", path)
//	logging.Debug("ConnectionPool", "Reusing session for %s", server)
//	logging.Warn("SessionManager", "Replacing closed pool %s", id)
//	logging.Error("ConnectionPool", err, "Failed to close session for %s", server)
//
// Every entry carries a "subsystem" attribute and, for Error, an "error"
// attribute. Init selects between the text and JSON slog handlers.
//
// # Subsystems
//
//   - Bootstrap: application initialization and shutdown
//   - Config, ConfigWatcher: configuration loading and hot reload
//   - SessionManager, ConnectionPool: pooled MCP sessions
//   - StdioClient, SSEClient, StreamableHTTPClient: MCP transports
//   - API: admin HTTP API
//   - CLI: command line operations
//
// Logging before Init writes a marked line to stderr instead of panicking.
// All functions are safe for concurrent use.
package logging
