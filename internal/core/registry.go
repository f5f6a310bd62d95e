package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]FormDefinition)
	layouts    = make(map[string]Layout)
	registryMu sync.RWMutex
)

// Register adds a form definition to the registry.
// Panics if a form with the same key is already registered or if two
// fields share a header.
func Register(def FormDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("form already registered: %s", def.Info.Key))
	}

	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Header] {
			panic(fmt.Sprintf("form %s: duplicate header %q", def.Info.Key, f.Header))
		}
		seen[f.Header] = true
	}

	if def.Info.Sheet == "" {
		def.Info.Sheet = def.Info.Label
	}

	registry[def.Info.Key] = def
}

// Get returns a form definition by key.
// Returns false if not found.
func Get(key string) (FormDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered form definitions in workbook order.
func All() []FormDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sortDefinitions(result)
	return result
}

// ByAudience returns the form definitions owned by one audience, in workbook order.
func ByAudience(aud Audience) []FormDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []FormDefinition
	for _, def := range registry {
		if def.Info.Audience == aud {
			result = append(result, def)
		}
	}
	sortDefinitions(result)
	return result
}

func sortDefinitions(defs []FormDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Info.Order != defs[j].Info.Order {
			return defs[i].Info.Order < defs[j].Info.Order
		}
		return defs[i].Info.Key < defs[j].Info.Key
	})
}

// FormCount returns the number of registered forms.
func FormCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// RegisterLayout adds an upload layout. Panics on duplicates.
func RegisterLayout(l Layout) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := layouts[l.Name]; exists {
		panic(fmt.Sprintf("layout already registered: %s", l.Name))
	}
	layouts[l.Name] = l
}

// GetLayout returns an upload layout by name.
func GetLayout(name string) (Layout, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	l, ok := layouts[name]
	return l, ok
}

// Clear removes all registered forms and layouts.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]FormDefinition)
	layouts = make(map[string]Layout)
}
