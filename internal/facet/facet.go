// Package facet defines the component instances produced by hooks and the
// manager that tracks them per kind. A facet is opaque to the engine beyond
// its kind and a handful of optional capabilities, each expressed as a
// narrow interface the engine probes with a type assertion.
package facet

import "context"

// Facet is a component instance produced by a hook factory.
type Facet interface {
	// Kind is the component family name. It must match the producing
	// hook's kind once the facet is attached.
	Kind() string
}

// Initializer is implemented by facets with startup work. Init runs during
// the transactional execute phase, after registration and in dependency
// order; a returned error rolls back the entire batch.
type Initializer interface {
	Init(ctx context.Context, env *Env) error
}

// Disposer is implemented by facets with teardown work. Dispose runs in
// reverse topological order on container teardown and during rollback.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// Requirer declares facet-level dependencies, distinct from the hook-level
// Required list.
type Requirer interface {
	Requires() []string
}

// Contracted names the contract this facet must satisfy. A facet-declared
// contract takes precedence over the producing hook's contract field.
type Contracted interface {
	Contract() string
}

// Overwriter is implemented by facets that permit a later producer of the
// same kind to replace them, independently of the hook's overwrite flag.
type Overwriter interface {
	AllowOverwrite() bool
}

// MethodProvider exposes the facet's callable bag. Contract enforcement
// checks required method names against it, and Attacher facets have it
// merged into the container's attachment table.
type MethodProvider interface {
	Methods() map[string]any
}

// PropertyProvider exposes the facet's data bag for contract property checks.
type PropertyProvider interface {
	Properties() map[string]any
}

// Attacher opts a facet's methods into being attached onto the container.
type Attacher interface {
	Attach() bool
}

// Host is the view of the owning container a facet sees from Env. It is an
// interface to keep this package free of the engine's types.
type Host interface {
	// Find returns the latest attached facet of a kind, or nil.
	Find(kind string) Facet
	// Name identifies the container for diagnostics.
	Name() string
}

// Env carries everything a hook factory or facet initializer may consult:
// the resolved configuration, the facet lookup table of the current pass,
// and the owning container.
type Env struct {
	Config map[string]any
	Facets *Manager
	Host   Host
}
