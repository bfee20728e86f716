package action

import (
	"sync"

	"gamepilot/internal/core"
)

// Registry maps action-type identifiers to handlers. Lookup is by identifier,
// never by order, but registration order is preserved so ActionTypes is
// deterministic for registry introspection. Re-registering an existing type
// silently replaces the handler in place; test doubles rely on this to
// override a single action without rebuilding the registry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Action
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Action)}
}

// Register adds or replaces the handler for a.ActionType().
func (r *Registry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := a.ActionType()
	if _, exists := r.handlers[t]; !exists {
		r.order = append(r.order, t)
	}
	r.handlers[t] = a
}

// Get returns the handler for an action type.
func (r *Registry) Get(actionType string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.handlers[actionType]
	return a, ok
}

// Has reports whether a handler is registered for the type.
func (r *Registry) Has(actionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[actionType]
	return ok
}

// Unregister removes a handler, reporting whether one was present.
func (r *Registry) Unregister(actionType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[actionType]; !ok {
		return false
	}
	delete(r.handlers, actionType)
	for i, t := range r.order {
		if t == actionType {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// ActionTypes returns the registered types in registration order.
func (r *Registry) ActionTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, len(r.order))
	copy(types, r.order)
	return types
}

// Clear removes every handler.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]Action)
	r.order = nil
}

// NewDefaultRegistry builds a registry with the built-in action set in a
// stable, documented order.
func NewDefaultRegistry(capture core.Capture) *Registry {
	r := NewRegistry()
	r.Register(&Wait{})
	r.Register(&Screenshot{Capture: capture})
	r.Register(&Observe{})
	r.Register(&Click{})
	r.Register(&Press{})
	r.Register(&Axis{})
	r.Register(&Agent{})
	return r
}
