package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mcpool/internal/api"
	"mcpool/internal/formatting"
	"mcpool/internal/session"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
)

// commandExecutionTimeout bounds a single console command.
const commandExecutionTimeout = 2 * time.Minute

var errExit = errors.New("exit")

// ConsoleClient is the part of the admin API client the console uses.
type ConsoleClient interface {
	GetCapabilities(ctx context.Context, req api.CapabilitiesRequest) (*api.CapabilitiesResponse, error)
	CallTool(ctx context.Context, req api.CallToolRequest) (*mcp.CallToolResult, error)
	Refresh(ctx context.Context, req api.RefreshRequest) (*api.CapabilitiesResponse, error)
	ListSessions(ctx context.Context) ([]session.ContextRecord, error)
	ListPools(ctx context.Context) ([]session.PoolStats, error)
	CleanupSession(ctx context.Context, userID, projectID string) (bool, error)
}

// ConsoleOptions configures a Console.
type ConsoleOptions struct {
	// Profile is the configured profile every command runs against.
	Profile string
	// UserID and ProjectID identify the caller. When both are set the
	// server records the pair and "cleanup" tears its sessions down.
	UserID    string
	ProjectID string
	// Formatter renders listings; defaults to a colored table.
	Formatter formatting.Formatter
	// Out receives command output; defaults to stdout.
	Out io.Writer
	// HistoryFile persists input history between runs.
	HistoryFile string
}

type consoleCommand struct {
	usage       string
	description string
	run         func(ctx context.Context, args []string) error
}

// Console is an interactive session against one profile of a running server.
type Console struct {
	client ConsoleClient
	opts   ConsoleOptions
	out    io.Writer
	rl     *readline.Instance

	commands map[string]*consoleCommand
	aliases  map[string]string

	mu    sync.RWMutex
	tools []session.Capability
}

// NewConsole creates a console. Nothing is fetched until Run or the first command.
func NewConsole(c ConsoleClient, opts ConsoleOptions) *Console {
	if opts.Formatter == nil {
		opts.Formatter = formatting.NewFormatter(formatting.Options{Format: formatting.FormatTable})
	}
	if opts.HistoryFile == "" {
		opts.HistoryFile = filepath.Join(os.TempDir(), ".mcpool_console_history")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	con := &Console{
		client:   c,
		opts:     opts,
		out:      out,
		commands: make(map[string]*consoleCommand),
		aliases:  make(map[string]string),
	}
	con.registerCommands()
	return con
}

func (c *Console) registerCommands() {
	c.register("help", []string{"?", "h"}, "help", "Show available commands", c.cmdHelp)
	c.register("tools", []string{"ls", "list"}, "tools [server]", "List the profile's tools, optionally for one server", c.cmdTools)
	c.register("call", []string{"run"}, "call <server> <tool> [json-arguments]", "Call a tool with JSON arguments", c.cmdCall)
	c.register("refresh", nil, "refresh <server>", "Re-establish a server session and reload its tools", c.cmdRefresh)
	c.register("sessions", nil, "sessions", "List (user, project) context records", c.cmdSessions)
	c.register("pools", nil, "pools", "List connection pools", c.cmdPools)
	c.register("cleanup", nil, "cleanup", "Tear down the sessions of this console's user and project", c.cmdCleanup)
	c.register("exit", []string{"quit", "q"}, "exit", "Leave the console", func(context.Context, []string) error { return errExit })
}

func (c *Console) register(name string, aliases []string, usage, description string, run func(context.Context, []string) error) {
	c.commands[name] = &consoleCommand{usage: usage, description: description, run: run}
	for _, alias := range aliases {
		c.aliases[alias] = name
	}
}

func (c *Console) commandNames() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run loads the profile's tools and reads commands until exit, EOF or ctx
// cancellation.
func (c *Console) Run(ctx context.Context) error {
	if err := c.loadTools(ctx); err != nil {
		fmt.Fprintln(c.out, FormatWarning(fmt.Sprintf("could not load tools: %v", err)))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              c.prompt(),
		HistoryFile:         c.opts.HistoryFile,
		AutoComplete:        c.createCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	c.rl = rl

	fmt.Fprintf(c.out, "Connected to profile %q. Type 'help' for available commands. Use TAB for completion.\n\n", c.opts.Profile)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := c.executeCommand(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(c.out, "Goodbye!")
				return nil
			}
			fmt.Fprintln(c.out, text.FgRed.Sprint(FormatError(err)))
		}
		fmt.Fprintln(c.out)
	}
}

func (c *Console) executeCommand(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(parts[0])
	if primary, ok := c.aliases[name]; ok {
		name = primary
	}
	command, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}

	commandCtx, cancel := context.WithTimeout(ctx, commandExecutionTimeout)
	defer cancel()

	return command.run(commandCtx, parts[1:])
}

func (c *Console) selection() api.ServerSelection {
	return api.ServerSelection{Profile: c.opts.Profile}
}

func (c *Console) prompt() string {
	return text.FgHiCyan.Sprint("mcpool") + text.FgHiBlack.Sprint("["+c.opts.Profile+"]") + "» "
}

func (c *Console) loadTools(ctx context.Context) error {
	resp, err := c.client.GetCapabilities(ctx, api.CapabilitiesRequest{
		ServerSelection: c.selection(),
		UserID:          c.opts.UserID,
		ProjectID:       c.opts.ProjectID,
	})
	if err != nil {
		return err
	}
	c.setTools(resp.Tools)
	return nil
}

func (c *Console) setTools(tools []session.Capability) {
	c.mu.Lock()
	c.tools = tools
	c.mu.Unlock()

	if c.rl != nil {
		c.rl.Config.AutoComplete = c.createCompleter()
	}
}

// replaceServerTools swaps the cached tools of one server after a refresh.
func (c *Console) replaceServerTools(server string, tools []session.Capability) {
	c.mu.RLock()
	merged := make([]session.Capability, 0, len(c.tools)+len(tools))
	for _, t := range c.tools {
		if t.Server != server {
			merged = append(merged, t)
		}
	}
	c.mu.RUnlock()

	merged = append(merged, tools...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Server < merged[j].Server })
	c.setTools(merged)
}

func (c *Console) cachedTools() []session.Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]session.Capability, len(c.tools))
	copy(out, c.tools)
	return out
}

func (c *Console) cmdHelp(context.Context, []string) error {
	fmt.Fprintln(c.out, "Available commands:")
	for _, name := range c.commandNames() {
		cmd := c.commands[name]
		fmt.Fprintf(c.out, "  %-40s %s\n", cmd.usage, cmd.description)
	}
	return nil
}

func (c *Console) cmdTools(ctx context.Context, args []string) error {
	if err := c.loadTools(ctx); err != nil {
		return err
	}

	tools := c.cachedTools()
	if len(args) > 0 {
		filtered := tools[:0]
		for _, t := range tools {
			if t.Server == args[0] {
				filtered = append(filtered, t)
			}
		}
		tools = filtered
	}

	out, err := c.opts.Formatter.FormatTools(tools)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, out)
	return nil
}

func (c *Console) cmdCall(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", c.commands["call"].usage)
	}

	toolArgs := map[string]interface{}{}
	if len(args) > 2 {
		raw := strings.Join(args[2:], " ")
		if err := json.Unmarshal([]byte(raw), &toolArgs); err != nil {
			return fmt.Errorf("arguments must be a JSON object, e.g. call %s %s {\"url\": \"https://example.com\"}", args[0], args[1])
		}
	}

	result, err := c.client.CallTool(ctx, api.CallToolRequest{
		ServerSelection: c.selection(),
		Server:          args[0],
		Tool:            args[1],
		Arguments:       toolArgs,
	})
	if err != nil {
		return err
	}

	PrintToolResult(c.out, result)
	return nil
}

func (c *Console) cmdRefresh(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.commands["refresh"].usage)
	}

	resp, err := c.client.Refresh(ctx, api.RefreshRequest{ServerSelection: c.selection(), Server: args[0]})
	if err != nil {
		return err
	}

	c.replaceServerTools(args[0], resp.Tools)
	fmt.Fprintln(c.out, FormatSuccess(fmt.Sprintf("Refreshed %s (%d tools)", args[0], resp.Count)))
	return nil
}

func (c *Console) cmdSessions(ctx context.Context, _ []string) error {
	records, err := c.client.ListSessions(ctx)
	if err != nil {
		return err
	}
	out, err := c.opts.Formatter.FormatSessions(records)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, out)
	return nil
}

func (c *Console) cmdPools(ctx context.Context, _ []string) error {
	pools, err := c.client.ListPools(ctx)
	if err != nil {
		return err
	}
	out, err := c.opts.Formatter.FormatPools(pools)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, out)
	return nil
}

func (c *Console) cmdCleanup(ctx context.Context, _ []string) error {
	if c.opts.UserID == "" || c.opts.ProjectID == "" {
		return errors.New("cleanup needs --user-id and --project-id")
	}

	removed, err := c.client.CleanupSession(ctx, c.opts.UserID, c.opts.ProjectID)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(c.out, FormatWarning(fmt.Sprintf("No sessions recorded for user %s, project %s", c.opts.UserID, c.opts.ProjectID)))
		return nil
	}

	c.setTools(nil)
	fmt.Fprintln(c.out, FormatSuccess(fmt.Sprintf("Cleaned up sessions for user %s, project %s", c.opts.UserID, c.opts.ProjectID)))
	return nil
}
