package cmd

import (
	"errors"
	"fmt"

	"mcpool/internal/api"
	"mcpool/internal/cli"
	"mcpool/internal/config"
	"mcpool/internal/session"

	"github.com/spf13/cobra"
)

var checkFlags cli.CommandFlags

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config.yaml without starting the server",
	Long: `Loads and validates config.yaml the way 'mcpool serve' would, then lists
every profile with the fingerprint its server set will be pooled under.
Profiles sharing a fingerprint share their sessions.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(&checkFlags)
	if err != nil {
		return err
	}

	path := checkFlags.ConfigPath
	if path == "" {
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		var ce config.ConfigurationError
		if errors.As(err, &ce) {
			fmt.Fprintln(cmd.ErrOrStderr(), ce.DetailedError())
		}
		return fmt.Errorf("configuration is invalid")
	}

	table := api.NewProfileTable(cfg)
	profiles := make([]api.ProfileInfo, 0, len(cfg.Profiles))
	for _, name := range table.Names() {
		servers, _ := table.Lookup(name)
		fp, err := session.Fingerprint(servers)
		if err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
		profiles = append(profiles, api.ProfileInfo{Name: name, Fingerprint: fp, Servers: servers.Names()})
	}

	out, err := formatter.FormatProfiles(profiles)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	printInfo(cmd, &checkFlags, cli.FormatSuccess(fmt.Sprintf("Configuration in %s is valid", path)))
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.OutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	checkCmd.Flags().BoolVarP(&checkFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	checkCmd.Flags().BoolVar(&checkFlags.NoColor, "no-color", false, "Disable colored output")
	checkCmd.Flags().StringVar(&checkFlags.ConfigPath, "config-path", "", "Configuration directory (default: ~/.config/mcpool)")
}
