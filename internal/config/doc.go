// Package config loads and validates the mcpool configuration file.
//
// Configuration lives in a single directory (default ~/.config/mcpool)
// containing config.yaml:
//
//	server:
//	  host: localhost
//	  port: 8095
//	  shutdownTimeout: 15s
//	logging:
//	  level: info
//	  format: text
//	sessions:
//	  teardown: pool
//	  establishConcurrency: 4
//	profiles:
//	  browser:
//	    servers:
//	      playwright:
//	        transport: streamable-http
//	        url: http://localhost:8931/mcp
//	        headers:
//	          Authorization: 'Bearer {{ env "PLAYWRIGHT_TOKEN" }}'
//
// A profile is a named ServerSet. Callers of the admin API may reference a
// profile by name or send an inline ServerSet; both reach the session
// manager as the same map type, so equal configurations share one pool.
//
// # Templates
//
// url, env and header values are rendered once at load time with
// text/template and the sprig function map. The rendered values are what
// the session manager fingerprints.
//
// # Reloading
//
// Watcher reloads config.yaml on change. A reload only swaps the profile
// table seen by new requests; pools created for the previous values stay
// open until they are cleaned up.
package config
