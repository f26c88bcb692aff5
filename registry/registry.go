// Package registry is the runtime side of the tool bundle: implementations
// register explicitly by resolved name and receive a capability handle back,
// replacing the old load-order-sensitive pattern of announcing into a global
// namespace as a side effect. The UI's lookup-by-id and call-by-id contract
// is served from here, and it depends on the validation report's valid=true
// guarantee before invoking anything.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/petal-labs/bundlecheck/catalog"
)

var (
	// ErrDuplicate rejects a second registration under a name already
	// bound. Silent overwrite is exactly the load-order hazard the
	// explicit model exists to remove.
	ErrDuplicate = errors.New("tool already registered")
	// ErrUnknownTool is returned by lookups and calls for unbound names.
	ErrUnknownTool = errors.New("unknown tool")
)

// Invoker executes a registered tool.
type Invoker func(ctx context.Context, args map[string]any) (any, error)

// Entry pairs the catalog metadata a tool registered with and the name it
// is bound under.
type Entry struct {
	Name string
	Tool catalog.Tool
}

// Registry holds the live tool bindings. Safe for concurrent use;
// registration order is preserved for All.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	invokers map[string]Invoker
	order    []string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		entries:  make(map[string]Entry),
		invokers: make(map[string]Invoker),
	}
}

// Register binds fn under name with its catalog metadata and returns the
// capability handle that owns the binding. Duplicate names and nil invokers
// are rejected.
func (r *Registry) Register(name string, tool catalog.Tool, fn Invoker) (*Handle, error) {
	if name == "" {
		return nil, errors.New("registry: registration name is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("registry: %s: invoker is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return nil, fmt.Errorf("registry: %s: %w", name, ErrDuplicate)
	}
	r.entries[name] = Entry{Name: name, Tool: tool}
	r.invokers[name] = fn
	r.order = append(r.order, name)
	return &Handle{reg: r, name: name}, nil
}

// Get returns the entry bound under name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// All returns every entry in registration order.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Len returns the number of bound tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CallByID invokes the tool bound under name. Unknown names are an error,
// never a panic; the caller is expected to have checked the validation
// verdict first, but the registry still refuses gracefully.
func (r *Registry) CallByID(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.invokers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: %s: %w", name, ErrUnknownTool)
	}
	return fn(ctx, args)
}

// Handle is the capability returned by Register. Holding it is the only way
// to remove the binding it created.
type Handle struct {
	reg  *Registry
	name string
	once sync.Once
}

// Name returns the name this handle's binding lives under.
func (h *Handle) Name() string { return h.name }

// Unregister removes the binding. Idempotent.
func (h *Handle) Unregister() {
	h.once.Do(func() {
		h.reg.mu.Lock()
		defer h.reg.mu.Unlock()
		delete(h.reg.entries, h.name)
		delete(h.reg.invokers, h.name)
		for i, n := range h.reg.order {
			if n == h.name {
				h.reg.order = append(h.reg.order[:i], h.reg.order[i+1:]...)
				break
			}
		}
	})
}
