package cmd

import (
	"context"
	"fmt"

	"mcpool/internal/cli"
	"mcpool/internal/client"
	"mcpool/internal/formatting"

	"github.com/spf13/cobra"
)

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newAdminClient creates a client for the endpoint selected by flags.
func newAdminClient(flags *cli.CommandFlags) *client.Client {
	return client.New(flags.ResolveEndpoint())
}

// describeError replaces a bare dial failure with a classified one that
// carries a hint.
func describeError(err error, c *client.Client) error {
	if err != nil && client.IsUnreachable(err) {
		return cli.ClassifyConnectionError(err, c.Endpoint())
	}
	return err
}

func newFormatter(flags *cli.CommandFlags) (formatting.Formatter, error) {
	opts, err := flags.FormatOptions()
	if err != nil {
		return nil, err
	}
	return formatting.NewFormatter(opts), nil
}

// printInfo writes non-essential output unless --quiet is set.
func printInfo(cmd *cobra.Command, flags *cli.CommandFlags, msg string) {
	if !flags.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
}
