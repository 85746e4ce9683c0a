package commands

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// commandName is what Telegram accepts in a bot command menu.
var commandName = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Registry holds registered commands.
// Names and aliases are matched case-insensitively.
type Registry struct {
	mu      sync.RWMutex
	primary map[string]Command // lower-cased name -> command
	lookup  map[string]Command // lower-cased name or alias -> command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		primary: make(map[string]Command),
		lookup:  make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if a name is malformed or already taken.
func (r *Registry) Register(c Command) error {
	keys := make([]string, 0, 1+len(c.Aliases()))
	for _, key := range append([]string{c.Name()}, c.Aliases()...) {
		key = strings.ToLower(key)
		if !commandName.MatchString(key) {
			return fmt.Errorf("invalid command name: %q", key)
		}
		for _, seen := range keys {
			if seen == key {
				return fmt.Errorf("command alias already registered: %s", key)
			}
		}
		keys = append(keys, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range keys {
		if _, exists := r.lookup[key]; exists {
			return fmt.Errorf("command already registered: %s", key)
		}
	}

	r.primary[keys[0]] = c
	for _, key := range keys {
		r.lookup[key] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.lookup[strings.ToLower(name)]
	return cmd, ok
}

// All returns all commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.primary))
	for name := range r.primary {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.primary[name]
	}
	return result
}

// DefaultRegistry holds every built-in command. Commands are stateless, so
// the registry is safe to share once init has run.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
