package cmd

import (
	"context"
	"fmt"

	"mcpool/internal/app"

	"github.com/spf13/cobra"
)

var (
	serveDebug      bool
	serveConfigPath string
)

// serveCmd starts the session pool and its admin API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mcpool server",
	Long: `Starts the session manager and its admin API.

MCP sessions are opened lazily, the first time a profile or inline server
set asks for a server's tools, and stay open until they are refreshed,
cleaned up, or the server shuts down.

Configuration:
  mcpool loads config.yaml from ~/.config/mcpool, or from the directory
  given with --config-path. The profiles section is reloaded automatically
  when the file changes.

The process runs until it receives SIGINT or SIGTERM. It then stops the
admin API and closes every open session before exiting. Under systemd
(Type=notify) readiness and stopping are reported to the service manager.`,
	Args: cobra.NoArgs,
	// Logging is configured from the config file by the application.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	RunE:             runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfigPath)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Configuration directory (default: ~/.config/mcpool)")
}
