package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"mcpool/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
)

// runServer starts the admin API and the config watcher, then blocks until
// ctx is cancelled or SIGINT/SIGTERM arrives.
//
// Shutdown sequence:
//  1. Notify systemd that the service is stopping
//  2. Stop accepting API requests, draining in-flight ones
//  3. Stop the config watcher
//  4. Close every pool through Manager.Shutdown
//
// Steps 2 and 4 share the ShutdownTimeout budget.
func runServer(ctx context.Context, services *Services) error {
	if err := services.APIServer.Start(); err != nil {
		logging.Error("Server", err, "Failed to start admin API")
		return err
	}

	if services.Watcher != nil {
		if err := services.Watcher.Start(ctx); err != nil {
			// Serving without hot reload is still useful.
			logging.Error("Server", err, "Failed to start config watcher, hot reload disabled")
		}
	}

	notifySystemd(daemon.SdNotifyReady)
	logging.Info("Server", "mcpool is ready. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logging.Info("Server", "Received %s, shutting down", sig)
	case <-ctx.Done():
		logging.Info("Server", "Context cancelled, shutting down")
	}

	return shutdown(services)
}

func shutdown(services *Services) error {
	notifySystemd(daemon.SdNotifyStopping)

	ctx, cancel := context.WithTimeout(context.Background(), services.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := services.APIServer.Stop(ctx); err != nil {
		logging.Error("Server", err, "Admin API did not shut down cleanly")
		errs = append(errs, err)
	}

	if services.Watcher != nil {
		services.Watcher.Stop()
	}

	if err := services.Manager.Shutdown(ctx); err != nil {
		logging.Error("Server", err, "Session cleanup did not finish")
		errs = append(errs, err)
	}

	logging.Info("Server", "Shutdown complete")
	return errors.Join(errs...)
}

// notifySystemd is a no-op outside systemd (NOTIFY_SOCKET unset).
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "Failed to notify systemd (%s): %v", state, err)
		return
	}
	if sent {
		logging.Debug("Server", "Notified systemd: %s", state)
	}
}
