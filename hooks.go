package peakmap

import (
	"sync"

	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/types"
)

// Hook function types for pipeline events.
type (
	// LinkedHook is called after a source pair is resolved.
	LinkedHook func(target types.SourceID, links linkage.LinkMap, result *linkage.Result)

	// RegionsHook is called once the region set is ready.
	RegionsHook func(set *regions.Set)

	// BuiltHook is called after the catalog is built.
	BuiltHook func(cat *catalog.Catalog)
)

// Hooks provides access to event callback registration.
type Hooks interface {
	// OnLinked registers a callback for resolved source pairs
	OnLinked(LinkedHook)

	// OnRegions registers a callback for the prepared region set
	OnRegions(RegionsHook)

	// OnBuilt registers a callback for built catalogs
	OnBuilt(BuiltHook)
}

// hooks manages event callbacks for pipeline runs.
type hooks struct {
	mu        sync.RWMutex
	onLinked  []LinkedHook
	onRegions []RegionsHook
	onBuilt   []BuiltHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnLinked registers a callback for resolved source pairs.
func (h *hooks) OnLinked(fn LinkedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLinked = append(h.onLinked, fn)
}

// OnRegions registers a callback for the prepared region set.
func (h *hooks) OnRegions(fn RegionsHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRegions = append(h.onRegions, fn)
}

// OnBuilt registers a callback for built catalogs.
func (h *hooks) OnBuilt(fn BuiltHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBuilt = append(h.onBuilt, fn)
}

func (h *hooks) triggerLinked(target types.SourceID, links linkage.LinkMap, result *linkage.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onLinked {
		fn(target, links, result)
	}
}

func (h *hooks) triggerRegions(set *regions.Set) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRegions {
		fn(set)
	}
}

func (h *hooks) triggerBuilt(cat *catalog.Catalog) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onBuilt {
		fn(cat)
	}
}
