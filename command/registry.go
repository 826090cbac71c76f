package command

import (
	"fmt"
	"strings"
)

// Registry maps command names to handler prototypes. One registry is shared
// by every connection of a server.
//
// Register all handlers before serving: the registry is immutable after
// setup, which is what makes the lock-free concurrent reads safe.
type Registry struct {
	prototypes map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{prototypes: make(map[string]Handler)}
}

// Register adds a handler prototype for name. Names match case-insensitively.
// Registering a name twice fails so a handler is never silently discarded.
func (r *Registry) Register(name string, prototype Handler) error {
	if prototype == nil {
		return ErrNilHandler
	}
	name = strings.ToLower(name)
	if _, ok := r.prototypes[name]; ok {
		return fmt.Errorf("handler for '%s' already registered", name)
	}
	r.prototypes[name] = prototype
	return nil
}

// Handlers returns a snapshot of the name to prototype mapping, taken by the
// connection layer at connection setup for lazy per-connection instantiation.
func (r *Registry) Handlers() map[string]Handler {
	m := make(map[string]Handler, len(r.prototypes))
	for name, prototype := range r.prototypes {
		m[name] = prototype
	}
	return m
}
