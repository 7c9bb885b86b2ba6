package cmd

import (
	"fmt"

	"mcpool/internal/cli"

	"github.com/spf13/cobra"
)

var profilesFlags cli.CommandFlags

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Inspect the profiles a running server has loaded",
}

var profilesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles with their fingerprints and servers",
	Args:    cobra.NoArgs,
	RunE:    runProfilesList,
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(&profilesFlags)
	if err != nil {
		return err
	}

	c := newAdminClient(&profilesFlags)
	profiles, err := c.ListProfiles(commandContext(cmd))
	if err != nil {
		return describeError(err, c)
	}

	out, err := formatter.FormatProfiles(profiles)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	cli.RegisterCommonFlags(profilesCmd, &profilesFlags)
}
