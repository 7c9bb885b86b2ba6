package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"mcpool/internal/api"
	"mcpool/internal/cli"
	"mcpool/internal/session"

	"github.com/spf13/cobra"
)

var (
	toolsFlags cli.CommandFlags

	toolsProfile     string
	toolsUserID      string
	toolsProjectID   string
	toolsFilter      string
	toolsDescription string
	toolsServer      string
	toolsArgs        string
)

// ToolFilterOptions contains filter criteria for tool listings
type ToolFilterOptions struct {
	// Pattern is a wildcard pattern to match against tool names (* and ? supported)
	Pattern string
	// Description is a case-insensitive substring to match against descriptions
	Description string
	// Server keeps only tools of this server (case-insensitive)
	Server string
}

// IsEmpty returns true if no filters are set
func (o ToolFilterOptions) IsEmpty() bool {
	return o.Pattern == "" && o.Description == "" && o.Server == ""
}

// matchesWildcard checks if a name matches a wildcard pattern.
// Supports * (matches any sequence of characters) and ? (matches any single character).
func matchesWildcard(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	// path.Match uses the same wildcard syntax we want
	matched, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}

// matchesDescription checks if a description contains the given substring (case-insensitive)
func matchesDescription(description, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(filter))
}

// filterTools applies opts to a tool listing
func filterTools(tools []session.Capability, opts ToolFilterOptions) []session.Capability {
	if opts.IsEmpty() {
		return tools
	}
	var filtered []session.Capability
	for _, t := range tools {
		if opts.Server != "" && !strings.EqualFold(t.Server, opts.Server) {
			continue
		}
		if matchesWildcard(t.Name(), opts.Pattern) && matchesDescription(t.Tool.Description, opts.Description) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

var toolsCmd = &cobra.Command{
	Use:     "tools",
	Aliases: []string{"tool"},
	Short:   "List and call the tools of a profile",
	Long: `List and call the tools of a configured profile through a running
mcpool server.

The first request for a profile opens its sessions on the server; later
requests reuse them.`,
}

var toolsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tools a profile exposes",
	Example: `  mcpool tools list --profile browser
  mcpool tools list --profile browser --server playwright --filter 'browser_*'
  mcpool tools list --profile browser --user-id 42 --project-id 7`,
	Args: cobra.NoArgs,
	RunE: runToolsList,
}

var toolsCallCmd = &cobra.Command{
	Use:   "call SERVER TOOL",
	Short: "Call one tool with JSON arguments",
	Example: `  mcpool tools call --profile browser playwright browser_navigate --args '{"url": "https://example.com"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runToolsCall,
}

func runToolsList(cmd *cobra.Command, args []string) error {
	if toolsProfile == "" {
		return errors.New("--profile is required")
	}
	formatter, err := newFormatter(&toolsFlags)
	if err != nil {
		return err
	}

	c := newAdminClient(&toolsFlags)
	var resp *api.CapabilitiesResponse
	err = cli.RunWithSpinner(toolsFlags.Quiet || toolsFlags.OutputFormat != "table", "Loading tools...", func() error {
		var err error
		resp, err = c.GetCapabilities(commandContext(cmd), api.CapabilitiesRequest{
			ServerSelection: api.ServerSelection{Profile: toolsProfile},
			UserID:          toolsUserID,
			ProjectID:       toolsProjectID,
		})
		return err
	})
	if err != nil {
		return describeError(err, c)
	}

	tools := filterTools(resp.Tools, ToolFilterOptions{
		Pattern:     toolsFilter,
		Description: toolsDescription,
		Server:      toolsServer,
	})

	out, err := formatter.FormatTools(tools)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	if toolsProfile == "" {
		return errors.New("--profile is required")
	}

	toolArgs := map[string]interface{}{}
	if toolsArgs != "" {
		if err := json.Unmarshal([]byte(toolsArgs), &toolArgs); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	c := newAdminClient(&toolsFlags)
	result, err := c.CallTool(commandContext(cmd), api.CallToolRequest{
		ServerSelection: api.ServerSelection{Profile: toolsProfile},
		Server:          args[0],
		Tool:            args[1],
		Arguments:       toolArgs,
	})
	if err != nil {
		return describeError(err, c)
	}

	if toolsFlags.OutputFormat == "json" {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	} else {
		cli.PrintToolResult(cmd.OutOrStdout(), result)
	}

	if result.IsError {
		return fmt.Errorf("tool %s on %s returned an error", args[1], args[0])
	}
	return nil
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd)

	cli.RegisterCommonFlags(toolsCmd, &toolsFlags)
	toolsCmd.PersistentFlags().StringVarP(&toolsProfile, "profile", "p", "", "Profile to use")

	toolsListCmd.Flags().StringVar(&toolsUserID, "user-id", "", "Record the request for this user")
	toolsListCmd.Flags().StringVar(&toolsProjectID, "project-id", "", "Record the request for this project")
	toolsListCmd.Flags().StringVar(&toolsFilter, "filter", "", "Wildcard pattern on tool names")
	toolsListCmd.Flags().StringVar(&toolsDescription, "description", "", "Substring to look for in descriptions")
	toolsListCmd.Flags().StringVar(&toolsServer, "server", "", "Only list tools of this server")

	toolsCallCmd.Flags().StringVar(&toolsArgs, "args", "", "Tool arguments as a JSON object")
}
