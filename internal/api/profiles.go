package api

import (
	"sort"
	"sync/atomic"

	"mcpool/internal/config"
)

// ProfileTable holds the named server configurations. Replace swaps the
// whole table at once, so readers never see a half-applied reload.
type ProfileTable struct {
	profiles atomic.Pointer[map[string]config.ServerSet]
}

// NewProfileTable creates a table from the configuration's profiles.
func NewProfileTable(cfg config.Config) *ProfileTable {
	t := &ProfileTable{}
	t.Replace(cfg)
	return t
}

// Replace installs the profiles of cfg.
func (t *ProfileTable) Replace(cfg config.Config) {
	next := make(map[string]config.ServerSet, len(cfg.Profiles))
	for name, profile := range cfg.Profiles {
		next[name] = profile.Servers.Enabled()
	}
	t.profiles.Store(&next)
}

// Lookup returns the server set of a profile.
func (t *ProfileTable) Lookup(name string) (config.ServerSet, bool) {
	current := t.profiles.Load()
	if current == nil {
		return nil, false
	}
	set, ok := (*current)[name]
	return set, ok
}

// Names returns the sorted profile names.
func (t *ProfileTable) Names() []string {
	current := t.profiles.Load()
	if current == nil {
		return nil
	}
	names := make([]string, 0, len(*current))
	for name := range *current {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
