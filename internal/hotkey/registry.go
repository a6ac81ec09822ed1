package hotkey

import "sort"

// Registry maps combinations to actions. It does no locking: a registry is
// filled by its owner and then published read-only, so lookups from the
// interception path never race with writes.
type Registry[A any] struct {
	entries    map[Combination]A
	generation uint64
}

// NewRegistry creates an empty registry stamped with the scheme-set
// generation it is being built for.
func NewRegistry[A any](generation uint64) *Registry[A] {
	return &Registry[A]{
		entries:    make(map[Combination]A),
		generation: generation,
	}
}

// Register binds action to c. An existing binding is overwritten.
func (r *Registry[A]) Register(c Combination, action A) error {
	if !c.IsSet() {
		return ErrUnsetCombination
	}
	r.entries[c] = action
	return nil
}

// Unregister removes the binding for c, if any.
func (r *Registry[A]) Unregister(c Combination) {
	delete(r.entries, c)
}

// Lookup returns the action bound to c.
func (r *Registry[A]) Lookup(c Combination) (A, bool) {
	a, ok := r.entries[c]
	return a, ok
}

// Clear removes every binding.
func (r *Registry[A]) Clear() {
	clear(r.entries)
}

func (r *Registry[A]) Len() int {
	return len(r.entries)
}

func (r *Registry[A]) Generation() uint64 {
	return r.generation
}

// Combinations returns the bound combinations ordered by key code, then
// modifiers.
func (r *Registry[A]) Combinations() []Combination {
	out := make([]Combination, 0, len(r.entries))
	for c := range r.entries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].KeyCode != out[j].KeyCode {
			return out[i].KeyCode < out[j].KeyCode
		}
		return out[i].Modifiers < out[j].Modifiers
	})
	return out
}
