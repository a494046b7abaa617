package engine

import (
	"context"
	"fmt"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/dag"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/faceterr"
	"github.com/vk/facetgo/internal/graphcache"
	"github.com/vk/facetgo/internal/hook"
)

// BuildPlan is the product of the verify phase: everything the execute
// phase needs, computed without touching the container.
type BuildPlan struct {
	// ResolvedCtx is the merged configuration the plan was computed for.
	ResolvedCtx cfgctx.Map
	// OrderedKinds is the topological initialization order.
	OrderedKinds []string
	// Levels partitions OrderedKinds into dependency levels for the
	// level-parallel initialization barrier.
	Levels [][]string
	// Facets holds the candidate facets produced by the hook pass.
	Facets *facet.Manager

	// producers maps each kind to the record of its last producing hook.
	producers map[string]*hook.Record
	// ctxHash and hookCount key the plan memo.
	ctxHash   string
	hookCount int
}

// verify runs the pure planning phase. It mutates nothing on the container
// except the plan memo; every error it returns is side-effect free.
func (c *Container) verify(ctx context.Context, cache *graphcache.Cache) (*BuildPlan, error) {
	logger := ctxlog.FromContext(ctx)

	resolved := c.resolveCtx()
	hash := cfgctx.Hash(resolved)

	c.mu.Lock()
	memo := c.plan
	hooks := make([]*hook.Hook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	if memo != nil && memo.ctxHash == hash && memo.hookCount == len(hooks) {
		logger.Debug("Reusing memoized build plan.", "container", c.name)
		return memo, nil
	}

	set, err := hook.Extract(hooks)
	if err != nil {
		return nil, err
	}
	ordered, err := set.Order(ctx)
	if err != nil {
		return nil, err
	}

	candidates := facet.NewManager()
	env := &facet.Env{Config: resolved, Facets: candidates, Host: c}

	producers := make(map[string]*hook.Record)
	type product struct {
		rec *hook.Record
		f   facet.Facet
	}
	var products []product

	for _, rec := range ordered {
		f, err := rec.Hook.Fn(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("hook %s (source %s) failed: %w", rec.ID, rec.Source(), err)
		}
		if f == nil {
			logger.Debug("Hook produced no facet.", "hook", rec.ID)
			continue
		}
		if f.Kind() == "" {
			return nil, &faceterr.StructuralError{
				Kind:   rec.Hook.Kind,
				Source: rec.Source(),
				Reason: "factory returned a facet with no kind",
			}
		}
		if f.Kind() != rec.Hook.Kind {
			return nil, &faceterr.StructuralError{
				Kind:   rec.Hook.Kind,
				Source: rec.Source(),
				Reason: fmt.Sprintf("factory returned a facet of kind %q", f.Kind()),
			}
		}
		if candidates.Has(f.Kind()) && !overwritePermitted(rec, f) {
			return nil, &faceterr.DuplicateKindError{
				Kind:         f.Kind(),
				FirstSource:  producers[f.Kind()].Source(),
				SecondSource: rec.Source(),
			}
		}

		// Temporary registration: later hooks in this pass can resolve
		// the facet, but nothing is initialized or attached.
		candidates.Add(f)
		producers[f.Kind()] = rec
		products = append(products, product{rec, f})
	}

	// Contract validation happens before any graph work so violations are
	// caught with zero side effects.
	for _, p := range products {
		name := contractNameOf(p.f, p.rec)
		if name == "" {
			continue
		}
		if err := c.contracts.Enforce(ctx, name, env, p.f, p.rec.Source()); err != nil {
			return nil, err
		}
	}

	orderedKinds, levels, err := c.sortFacetGraph(ctx, candidates, producers, cache)
	if err != nil {
		return nil, err
	}

	plan := &BuildPlan{
		ResolvedCtx:  resolved,
		OrderedKinds: orderedKinds,
		Levels:       levels,
		Facets:       candidates,
		producers:    producers,
		ctxHash:      hash,
		hookCount:    len(hooks),
	}

	c.mu.Lock()
	c.plan = plan
	c.mu.Unlock()

	logger.Debug("Build plan computed.", "container", c.name, "kinds", len(orderedKinds))
	return plan, nil
}

// sortFacetGraph builds the facet-level dependency graph and orders it,
// consulting the graph cache before sorting.
func (c *Container) sortFacetGraph(
	ctx context.Context,
	candidates *facet.Manager,
	producers map[string]*hook.Record,
	cache *graphcache.Cache,
) ([]string, [][]string, error) {
	logger := ctxlog.FromContext(ctx)

	g := dag.New()
	kinds := candidates.Kinds()
	for _, kind := range kinds {
		g.AddNode(kind)
	}

	for _, kind := range kinds {
		rec := producers[kind]
		reqs := make([]string, 0, len(rec.Hook.Required))
		reqs = append(reqs, rec.Hook.Required...)
		for _, f := range candidates.GetAll(kind) {
			if rq, ok := f.(facet.Requirer); ok {
				reqs = append(reqs, rq.Requires()...)
			}
		}

		for _, req := range reqs {
			// A kind requiring itself is overwrite-chain bookkeeping,
			// already resolved at the hook level.
			if req == kind {
				continue
			}
			if !candidates.Has(req) {
				return nil, nil, &faceterr.DependencyError{
					Kind:    kind,
					Source:  rec.Source(),
					Missing: req,
				}
			}
			if err := g.AddEdge(req, kind); err != nil {
				return nil, nil, err
			}
		}
	}

	key := graphcache.Key(kinds)
	var orderedKinds []string
	if entry, ok := cache.Get(key); ok {
		logger.Debug("Graph cache hit.", "key", key)
		if entry.Err != nil {
			return nil, nil, entry.Err
		}
		orderedKinds = entry.OrderedKinds
	} else {
		var err error
		orderedKinds, err = g.TopoSort()
		cache.Put(key, &graphcache.Entry{OrderedKinds: orderedKinds, Err: err})
		if err != nil {
			return nil, nil, err
		}
	}

	levels, err := g.Levels()
	if err != nil {
		return nil, nil, err
	}
	return orderedKinds, levels, nil
}

// overwritePermitted reports whether a duplicate-kind production is allowed:
// either the new hook or the new facet must permit overwriting.
func overwritePermitted(rec *hook.Record, f facet.Facet) bool {
	if rec.Hook.Overwrite {
		return true
	}
	if ow, ok := f.(facet.Overwriter); ok {
		return ow.AllowOverwrite()
	}
	return false
}

// contractNameOf resolves the contract a facet must satisfy: the facet's own
// declaration wins over the producing hook's.
func contractNameOf(f facet.Facet, rec *hook.Record) string {
	if ct, ok := f.(facet.Contracted); ok && ct.Contract() != "" {
		return ct.Contract()
	}
	return rec.Hook.Contract
}
