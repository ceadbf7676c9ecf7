package lint

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/nocycle/pkg/core"
)

// globalRegistry is the single global registry for plugins and their rules.
var globalRegistry = &Registry{
	plugins: make(map[string]*Plugin),
	rules:   make(map[string]Rule),
}

// Plugin groups rules under a shared name prefix.
type Plugin struct {
	Name        string // e.g. "import"
	Description string
	DocsBaseURL string // rule docs live at DocsBaseURL/<rule name>.md
	Rules       []Rule
}

// Registry stores registered plugins for discovery.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin // keyed by plugin name
	rules   map[string]Rule    // keyed by rule ID
}

// RegisterPlugin adds a plugin and its rules to the global registry.
// Call this from init() functions in rule packages.
func RegisterPlugin(p Plugin) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	plugin := p
	globalRegistry.plugins[p.Name] = &plugin
	for _, rule := range p.Rules {
		globalRegistry.rules[rule.ID()] = rule
	}
}

// GetPlugin returns a registered plugin by name.
func GetPlugin(name string) (Plugin, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	p, ok := globalRegistry.plugins[name]
	if !ok {
		return Plugin{}, false
	}
	return *p, true
}

// AllPlugins returns every registered plugin sorted by name.
func AllPlugins() []Plugin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	plugins := make([]Plugin, 0, len(globalRegistry.plugins))
	for _, p := range globalRegistry.plugins {
		plugins = append(plugins, *p)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name < plugins[j].Name
	})
	return plugins
}

// GetRuleByID returns a rule by its ID.
func GetRuleByID(id string) (Rule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// AllRules returns metadata for every registered rule, sorted by ID.
func AllRules() []core.RuleInfo {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	infos := make([]core.RuleInfo, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		infos = append(infos, GetRuleInfo(rule))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// RuleIDs returns every registered rule ID in sorted order.
func RuleIDs() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	ids := make([]string, 0, len(globalRegistry.rules))
	for id := range globalRegistry.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered plugins and rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.plugins = make(map[string]*Plugin)
	globalRegistry.rules = make(map[string]Rule)
}
