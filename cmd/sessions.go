package cmd

import (
	"errors"
	"fmt"

	"mcpool/internal/cli"

	"github.com/spf13/cobra"
)

var (
	sessionsFlags cli.CommandFlags

	cleanupUserID    string
	cleanupProjectID string
	cleanupForce     bool
	cleanupAllForce  bool
)

// sessionsCmd groups the (user, project) session commands.
var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect and clean up (user, project) sessions",
	Long: `Inspect and clean up the (user, project) context records of a running
mcpool server.

A context record remembers which connection pool last served a user in a
project. Cleaning it up closes that pool's sessions; pools shared with
other pairs are closed too unless the server runs with the refcount
teardown policy.`,
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List context records with their last-used time",
	Args:    cobra.NoArgs,
	RunE:    runSessionsList,
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Close the sessions of one (user, project) pair",
	Long: `Removes the context record of one (user, project) pair and closes the
pool that served it. An unknown pair is not an error.`,
	Example: `  mcpool sessions cleanup --user-id 42 --project-id 7
  mcpool sessions cleanup --user-id 42 --project-id 7 --force`,
	Args: cobra.NoArgs,
	RunE: runSessionsCleanup,
}

var sessionsCleanupAllCmd = &cobra.Command{
	Use:   "cleanup-all",
	Short: "Close every pool and forget every context record",
	Args:  cobra.NoArgs,
	RunE:  runSessionsCleanupAll,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(&sessionsFlags)
	if err != nil {
		return err
	}

	c := newAdminClient(&sessionsFlags)
	records, err := c.ListSessions(commandContext(cmd))
	if err != nil {
		return describeError(err, c)
	}

	out, err := formatter.FormatSessions(records)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runSessionsCleanup(cmd *cobra.Command, args []string) error {
	if cleanupUserID == "" || cleanupProjectID == "" {
		return errors.New("--user-id and --project-id are required")
	}

	prompt := fmt.Sprintf("Close the sessions of user %s in project %s?", cleanupUserID, cleanupProjectID)
	if !cleanupForce && !cli.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
		printInfo(cmd, &sessionsFlags, "Aborted.")
		return nil
	}

	c := newAdminClient(&sessionsFlags)
	var removed bool
	err := cli.RunWithSpinner(sessionsFlags.Quiet, "Cleaning up sessions...", func() error {
		var err error
		removed, err = c.CleanupSession(commandContext(cmd), cleanupUserID, cleanupProjectID)
		return err
	})
	if err != nil {
		return describeError(err, c)
	}

	if !removed {
		printInfo(cmd, &sessionsFlags, cli.FormatWarning(fmt.Sprintf("No sessions recorded for user %s in project %s", cleanupUserID, cleanupProjectID)))
		return nil
	}
	printInfo(cmd, &sessionsFlags, cli.FormatSuccess(fmt.Sprintf("Cleaned up sessions of user %s in project %s", cleanupUserID, cleanupProjectID)))
	return nil
}

func runSessionsCleanupAll(cmd *cobra.Command, args []string) error {
	if !cleanupAllForce && !cli.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Close every pool on the server?") {
		printInfo(cmd, &sessionsFlags, "Aborted.")
		return nil
	}

	c := newAdminClient(&sessionsFlags)
	err := cli.RunWithSpinner(sessionsFlags.Quiet, "Closing all pools...", func() error {
		return c.CleanupAll(commandContext(cmd))
	})
	if err != nil {
		return describeError(err, c)
	}

	printInfo(cmd, &sessionsFlags, cli.FormatSuccess("All pools closed"))
	return nil
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsCleanupCmd, sessionsCleanupAllCmd)

	cli.RegisterCommonFlags(sessionsCmd, &sessionsFlags)

	sessionsCleanupCmd.Flags().StringVar(&cleanupUserID, "user-id", "", "User whose sessions to close")
	sessionsCleanupCmd.Flags().StringVar(&cleanupProjectID, "project-id", "", "Project whose sessions to close")
	sessionsCleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Do not ask for confirmation")

	sessionsCleanupAllCmd.Flags().BoolVarP(&cleanupAllForce, "force", "f", false, "Do not ask for confirmation")
}
