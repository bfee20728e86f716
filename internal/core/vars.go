package core

// Variables provides shared state between steps in a run: values captured by
// observe steps and consumed by later click/press/agent steps.
type Variables interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	All() map[string]any
}

// MapVariables is a simple map-based Variables implementation.
// A run owns exactly one instance; steps execute sequentially, so no locking.
type MapVariables struct {
	data map[string]any
}

func NewVariables() *MapVariables {
	return &MapVariables{data: make(map[string]any)}
}

func (v *MapVariables) Get(key string) (any, bool) {
	val, ok := v.data[key]
	return val, ok
}

func (v *MapVariables) Set(key string, value any) {
	v.data[key] = value
}

// All returns the underlying map. Callers must not mutate it; it is exposed
// for expression environments that need the full variable set.
func (v *MapVariables) All() map[string]any {
	return v.data
}
