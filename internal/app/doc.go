// Package app bootstraps and runs the mcpool server process.
//
// # Bootstrap
//
// NewApplication loads config.yaml, configures logging from its logging
// section and builds the Services: a Prometheus metrics sink, the session
// manager, the profile table, the gin admin API and an fsnotify watcher
// that reloads profiles when the file changes.
//
// # Run
//
// Run starts the admin API and the watcher, tells systemd the service is
// ready (a no-op when NOTIFY_SOCKET is unset) and blocks until the context
// is cancelled or SIGINT/SIGTERM arrives. The shutdown phase then notifies
// systemd, drains the HTTP server, stops the watcher and closes every pool
// through the session manager, all within server.shutdownTimeout.
//
//	application, err := app.NewApplication(app.NewConfig(false, ""))
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Only the profiles section is applied on reload. Changes to the server,
// logging or sessions sections are logged and take effect after a restart.
package app
