package cli

import (
	"mcpool/internal/formatting"

	"github.com/spf13/cobra"
)

// CommandFlags holds the common flag values used across CLI commands that
// connect to a running mcpool server.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json, yaml)
	OutputFormat string
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// NoColor disables colored table output
	NoColor bool
	// ConfigPath specifies a custom configuration directory path
	ConfigPath string
	// Endpoint overrides the admin API URL
	Endpoint string
}

// RegisterCommonFlags registers the output and connection flags.
//
// The registered flags are:
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --quiet/-q: Suppress non-essential output
//   - --no-color: Disable colored output
//   - --config-path: Configuration directory
//   - --endpoint: Admin API URL (env: MCPOOL_ENDPOINT)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	RegisterConnectionFlags(cmd, flags)
}

// RegisterConnectionFlags registers only the connection-related flags, for
// commands that do not print formatted output.
func RegisterConnectionFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", "", "Configuration directory (default: ~/.config/mcpool)")
	cmd.PersistentFlags().StringVar(&flags.Endpoint, "endpoint", GetDefaultEndpoint(), "Admin API URL (env: "+EndpointEnvVar+")")
}

// FormatOptions converts the output flags into formatter options.
func (f *CommandFlags) FormatOptions() (formatting.Options, error) {
	format, err := formatting.ParseFormat(f.OutputFormat)
	if err != nil {
		return formatting.Options{}, err
	}
	return formatting.Options{Format: format, NoColor: f.NoColor}, nil
}

// ResolveEndpoint returns the explicit endpoint, or the one derived from
// the configuration file.
func (f *CommandFlags) ResolveEndpoint() string {
	if f.Endpoint != "" {
		return f.Endpoint
	}
	return DetectEndpoint(f.ConfigPath)
}
