package cli

import (
	"sort"

	"github.com/chzyer/readline"
)

// createCompleter builds tab completion from the command table and the
// cached tools: "call <server> <tool>" and "refresh <server>" complete
// from what the profile advertised.
func (c *Console) createCompleter() *readline.PrefixCompleter {
	byServer := make(map[string][]string)
	for _, t := range c.cachedTools() {
		byServer[t.Server] = append(byServer[t.Server], t.Name())
	}
	servers := make([]string, 0, len(byServer))
	for server := range byServer {
		servers = append(servers, server)
	}
	sort.Strings(servers)

	callItems := make([]readline.PrefixCompleterInterface, 0, len(servers))
	serverItems := make([]readline.PrefixCompleterInterface, 0, len(servers))
	for _, server := range servers {
		tools := byServer[server]
		sort.Strings(tools)
		toolItems := make([]readline.PrefixCompleterInterface, len(tools))
		for i, tool := range tools {
			toolItems[i] = readline.PcItem(tool)
		}
		callItems = append(callItems, readline.PcItem(server, toolItems...))
		serverItems = append(serverItems, readline.PcItem(server))
	}

	var items []readline.PrefixCompleterInterface
	for _, name := range c.commandNames() {
		switch name {
		case "call":
			items = append(items, readline.PcItem(name, callItems...))
		case "refresh", "tools":
			items = append(items, readline.PcItem(name, serverItems...))
		default:
			items = append(items, readline.PcItem(name))
		}
	}

	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
