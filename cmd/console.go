package cmd

import (
	"errors"

	"mcpool/internal/cli"

	"github.com/spf13/cobra"
)

var (
	consoleFlags     cli.CommandFlags
	consoleProfile   string
	consoleUserID    string
	consoleProjectID string
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"repl"},
	Short:   "Interactive console for one profile",
	Long: `Opens an interactive console against one profile of a running mcpool
server. List tools, call them with JSON arguments, refresh broken sessions
and inspect pools, with TAB completion of commands, servers and tools.

With --user-id and --project-id the console's requests are recorded for
that pair, and the 'cleanup' command closes its sessions.`,
	Example: `  mcpool console --profile browser
  mcpool console --profile browser --user-id 42 --project-id 7`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	if consoleProfile == "" {
		return errors.New("--profile is required")
	}
	formatter, err := newFormatter(&consoleFlags)
	if err != nil {
		return err
	}

	c := newAdminClient(&consoleFlags)
	ctx := commandContext(cmd)
	if err := cli.CheckServerRunning(ctx, c); err != nil {
		return err
	}

	console := cli.NewConsole(c, cli.ConsoleOptions{
		Profile:   consoleProfile,
		UserID:    consoleUserID,
		ProjectID: consoleProjectID,
		Formatter: formatter,
		Out:       cmd.OutOrStdout(),
	})
	return console.Run(ctx)
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	cli.RegisterCommonFlags(consoleCmd, &consoleFlags)
	consoleCmd.Flags().StringVarP(&consoleProfile, "profile", "p", "", "Profile to use")
	consoleCmd.Flags().StringVar(&consoleUserID, "user-id", "", "User to record requests for")
	consoleCmd.Flags().StringVar(&consoleProjectID, "project-id", "", "Project to record requests for")
}
