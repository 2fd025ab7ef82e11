package shader_resource

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// entry is a single arena slot. generation is bumped every time the slot's resource is destroyed,
// which invalidates every Ref handed out for the previous occupant.
type entry struct {
	generation uint32
	resource   ShaderResource
}

// registry is the implementation of the Registry interface.
type registry struct {
	mu      *sync.RWMutex
	entries []entry
	free    []uint32
	byName  map[string]uint32
}

// Registry owns the ShaderResources of an engine instance. Containers never hold a resource
// directly; they hold a Ref, which the Registry can invalidate at any time by destroying the
// resource.
type Registry interface {
	// Register stores a resource and returns a Ref to it.
	//
	// Parameters:
	//   - res: the resource to store, must not be nil
	//
	// Returns:
	//   - Ref: the reference to the stored resource
	//   - error: an error if a live resource with the same name is already registered
	Register(res ShaderResource) (Ref, error)

	// Lookup returns a Ref to the live resource with the given name.
	//
	// Parameters:
	//   - name: the effect name
	//
	// Returns:
	//   - Ref: the reference, or the zero Ref if not found
	//   - bool: true if a live resource was found
	Lookup(name string) (Ref, bool)

	// Destroy removes the referenced resource. Every outstanding Ref to it resolves absent afterwards.
	//
	// Parameters:
	//   - ref: the reference to destroy
	//
	// Returns:
	//   - bool: false if the reference was already absent
	Destroy(ref Ref) bool

	// Len returns the number of live resources.
	//
	// Returns:
	//   - int: the live resource count
	Len() int
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - Registry: the new registry
func NewRegistry() Registry {
	return &registry{
		mu:     &sync.RWMutex{},
		byName: make(map[string]uint32),
	}
}

func (g *registry) Register(res ShaderResource) (Ref, error) {
	if res == nil {
		panic("shader_resource: Register requires a non-nil resource")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byName[res.Name()]; exists {
		return Ref{}, fmt.Errorf("shader resource %q is already registered", res.Name())
	}

	var index uint32
	if n := len(g.free); n > 0 {
		index = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		index = uint32(len(g.entries))
		g.entries = append(g.entries, entry{generation: 1})
	}
	g.entries[index].resource = res
	g.byName[res.Name()] = index

	common.Logger().Debug("shader resource registered", "name", res.Name(), "index", index)
	return Ref{registry: g, index: index, generation: g.entries[index].generation}, nil
}

func (g *registry) Lookup(name string) (Ref, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	index, ok := g.byName[name]
	if !ok {
		return Ref{}, false
	}
	return Ref{registry: g, index: index, generation: g.entries[index].generation}, true
}

func (g *registry) Destroy(ref Ref) bool {
	if ref.registry != g {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e := &g.entries[ref.index]
	if e.generation != ref.generation || e.resource == nil {
		return false
	}
	delete(g.byName, e.resource.Name())
	common.Logger().Debug("shader resource destroyed", "name", e.resource.Name(), "index", ref.index)
	e.resource = nil
	e.generation++
	g.free = append(g.free, ref.index)
	return true
}

func (g *registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byName)
}

// resolve returns the resource stored for index if generation still matches.
func (g *registry) resolve(index, generation uint32) (ShaderResource, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(index) >= len(g.entries) {
		return nil, false
	}
	e := g.entries[index]
	if e.generation != generation || e.resource == nil {
		return nil, false
	}
	return e.resource, true
}

// Ref is a non-owning reference to a ShaderResource held by a Registry. It never extends the
// resource's lifetime: once the resource is destroyed, Resolve reports it absent. The zero Ref
// is valid and always absent. Refs are comparable values; two Refs are equal when they name
// the same registration.
type Ref struct {
	registry   *registry
	index      uint32
	generation uint32
}

// Resolve returns the referenced resource if it is still live.
//
// Returns:
//   - ShaderResource: the resource, or nil when absent
//   - bool: true if the resource is live
func (r Ref) Resolve() (ShaderResource, bool) {
	if r.registry == nil {
		return nil, false
	}
	return r.registry.resolve(r.index, r.generation)
}

// IsZero reports whether the Ref was never bound to a registration.
func (r Ref) IsZero() bool {
	return r.registry == nil
}

// Equal reports whether both Refs name the same registration.
func (r Ref) Equal(other Ref) bool {
	return r == other
}
