// Package client is a small HTTP client for the mcpool admin API, used by
// the sessions and pools commands.
//
// Connection failures are reported as *UnreachableError so the CLI can
// exit with a dedicated status; non-2xx replies become *APIError carrying
// the server's message.
package client
