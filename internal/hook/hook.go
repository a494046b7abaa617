// Package hook defines the factory descriptors callers register on a
// container and the ordering logic that sequences them. Hooks are ordered as
// hooks, before any facet exists, so that overwrite chains and cross-kind
// requirements execute in a valid sequence.
package hook

import (
	"context"

	"github.com/vk/facetgo/internal/facet"
)

// Fn is a hook's factory function. It may return (nil, nil) to produce no
// facet. A returned error is build-fatal.
type Fn func(ctx context.Context, env *facet.Env) (facet.Facet, error)

// Hook is an immutable factory descriptor. Multiple hooks may share a Kind;
// together they form an overwrite chain in registration order.
type Hook struct {
	// Kind is the component family this hook produces. Required.
	Kind string
	// Version is informational, carried into diagnostics.
	Version string
	// Required lists the facet kinds this hook's product depends on. A
	// hook may list its own kind here when Overwrite is set, meaning it
	// enhances its predecessor in the chain.
	Required []string
	// Overwrite permits this hook's facet to replace an existing facet of
	// the same kind.
	Overwrite bool
	// Source is a provenance string for error messages, typically the
	// registering package.
	Source string
	// Contract optionally names the contract the produced facet must
	// satisfy, unless the facet declares its own.
	Contract string
	// Fn produces the facet.
	Fn Fn
}
