package environment

import "slices"

// Listener receives event payloads.
type Listener func(payload any)

// On registers a listener for event and returns a function removing it.
func (e *Environment) On(event string, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners[event] = append(e.listeners[event], fn)
	idx := len(e.listeners[event]) - 1

	// Removal leaves a nil slot so later indexes stay valid.
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners[event][idx] = nil
	}
}

// Emit implements generator.Env. Listeners run synchronously in
// registration order.
func (e *Environment) Emit(event string, payload any) {
	e.mu.Lock()
	listeners := slices.Clone(e.listeners[event])
	e.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(payload)
		}
	}
}
