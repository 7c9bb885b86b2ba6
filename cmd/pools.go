package cmd

import (
	"fmt"

	"mcpool/internal/cli"

	"github.com/spf13/cobra"
)

var poolsFlags cli.CommandFlags

var poolsCmd = &cobra.Command{
	Use:     "pools",
	Aliases: []string{"pool"},
	Short:   "Inspect connection pools",
}

var poolsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List connection pools with their open sessions",
	Long: `Lists every connection pool of a running server: its configuration
fingerprint, the servers it covers, which of them have an open session and
how many tools those sessions advertise.`,
	Args: cobra.NoArgs,
	RunE: runPoolsList,
}

func runPoolsList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(&poolsFlags)
	if err != nil {
		return err
	}

	c := newAdminClient(&poolsFlags)
	pools, err := c.ListPools(commandContext(cmd))
	if err != nil {
		return describeError(err, c)
	}

	out, err := formatter.FormatPools(pools)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func init() {
	rootCmd.AddCommand(poolsCmd)
	poolsCmd.AddCommand(poolsListCmd)
	cli.RegisterCommonFlags(poolsCmd, &poolsFlags)
}
