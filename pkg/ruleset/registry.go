// Package ruleset provides a versioned registry for rule tables loaded at
// startup and replaced atomically on reload. Readers always see a complete
// table; the single writer swaps the whole value and bumps the version.
package ruleset

import "sync"

type Registry[T any] struct {
	mu      sync.RWMutex
	version int
	value   T
}

// New creates a registry holding the initial rule table at version 1.
func New[T any](initial T) *Registry[T] {
	return &Registry[T]{version: 1, value: initial}
}

// Current returns the active rule table and its version.
func (r *Registry[T]) Current() (T, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.version
}

// Swap replaces the rule table and returns the new version.
func (r *Registry[T]) Swap(value T) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.version++
	return r.version
}

// Version returns the active version without copying the table.
func (r *Registry[T]) Version() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
