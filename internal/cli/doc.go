// Package cli provides the command-line plumbing shared by the mcpool
// commands that talk to a running server.
//
// # Connection
//
// CommandFlags carries the flags every client command registers: output
// format, quiet mode, colors, and the admin API endpoint. The endpoint is
// taken from --endpoint, then MCPOOL_ENDPOINT, and finally derived from the
// server section of the configuration file by DetectEndpoint.
//
// Failures to reach the server are classified by ClassifyConnectionError so
// that commands can print an actionable hint instead of a raw dial error.
//
// # Progress
//
// RunWithSpinner wraps a blocking call with a terminal spinner unless quiet
// mode is set.
//
// # Console
//
// Console is an interactive readline session against one profile. It lists
// the profile's tools, calls them, refreshes sessions and inspects pools,
// with tab completion of command and tool names and persistent history.
package cli
