package head

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jeeves-cluster-organization/clusterboard/config"
	"github.com/jeeves-cluster-organization/clusterboard/events"
)

// Deps is what the head hands each module at initialization.
type Deps struct {
	Cfg *config.Config
	Bus *events.Bus
	Log *zap.SugaredLogger
}

// Module is a self-contained dashboard feature. Modules register themselves
// at package init time and are loaded by name.
type Module interface {
	// Name is the registry key, matched against the launch selector.
	Name() string

	// Init wires the module to its dependencies before the server starts.
	Init(ctx context.Context, deps *Deps) error

	// Routes registers the module's HTTP handlers.
	Routes(mux *http.ServeMux)
}

// ModuleFactory builds a fresh module instance per head.
type ModuleFactory func() Module

type registryEntry struct {
	factory  ModuleFactory
	fullOnly bool // skipped in minimal mode
}

var registry = struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}{entries: make(map[string]registryEntry)}

// RegisterModule adds a module to the registry. fullOnly modules require the
// full (non-minimal) install and are skipped when -minimal is set.
// Panics on duplicate names; registration happens in init funcs only.
func RegisterModule(name string, fullOnly bool, f ModuleFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.entries[name]; exists {
		panic(fmt.Sprintf("head: module %q registered twice", name))
	}
	registry.entries[name] = registryEntry{factory: f, fullOnly: fullOnly}
}

// loadModules instantiates the modules selected by the launch configuration.
// A nil selector loads everything registered; a selector naming an unknown
// module is a configuration fault. Results are name-ordered so startup logs
// and tests are deterministic.
func loadModules(selector map[string]struct{}, minimal bool) ([]Module, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for name := range selector {
		if _, ok := registry.entries[name]; !ok {
			return nil, fmt.Errorf("unknown module in selector: %q", name)
		}
	}

	names := make([]string, 0, len(registry.entries))
	for name := range registry.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var modules []Module
	for _, name := range names {
		entry := registry.entries[name]
		if selector != nil {
			if _, ok := selector[name]; !ok {
				continue
			}
		}
		if minimal && entry.fullOnly {
			continue
		}
		modules = append(modules, entry.factory())
	}
	return modules, nil
}
