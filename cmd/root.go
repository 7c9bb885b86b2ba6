package cmd

import (
	"errors"
	"os"

	"mcpool/internal/cli"
	"mcpool/internal/client"
	"mcpool/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeUnreachable indicates that the mcpool server could not be contacted.
	ExitCodeUnreachable = 2
)

// rootCmd represents the base command for the mcpool application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcpool",
	Short: "Persistent MCP session pool",
	Long: `mcpool keeps long-lived sessions to MCP tool servers open across requests.

Sessions are pooled per server configuration and shared by every
(user, project) pair that uses the same configuration. Run 'mcpool serve'
to start the pool and its admin API, then use the other commands to
inspect and manage it.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Client commands only surface warnings; serve re-initializes from config.
		logging.InitForCLI(logging.LevelWarn, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpool version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var connErr *cli.ConnectionError
	if errors.As(err, &connErr) || client.IsUnreachable(err) {
		return ExitCodeUnreachable
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
