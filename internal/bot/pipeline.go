package bot

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
)

// Pipeline keeps modules sorted by ascending priority. Modules with equal
// priority stay in the order they were added.
type Pipeline struct {
	mu      sync.RWMutex
	modules []Module
}

// NewPipeline builds an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{modules: make([]Module, 0)}
}

// Add inserts m unless the same instance is already present and reports whether it was added.
func (p *Pipeline) Add(m Module) bool {
	if m == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.modules {
		if sameModule(existing, m) {
			return false
		}
	}

	p.modules = append(p.modules, m)
	slices.SortStableFunc(p.modules, func(a, b Module) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
	return true
}

// Snapshot returns a copy safe to iterate while modules are being added.
func (p *Pipeline) Snapshot() []Module {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make([]Module, len(p.modules))
	copy(snapshot, p.modules)
	return snapshot
}

// Len returns the number of modules.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.modules)
}

func sameModule(a, b Module) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
