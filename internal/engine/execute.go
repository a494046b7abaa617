package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/faceterr"
	"github.com/vk/facetgo/internal/graphcache"
)

// BuildOption configures a single Build call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	cache *graphcache.Cache
}

// WithGraphCache substitutes the graph cache for this build. The container
// passes its own cache down to children so a shared deployment reuses sorted
// orders across containers.
func WithGraphCache(cache *graphcache.Cache) BuildOption {
	return func(bc *buildConfig) { bc.cache = cache }
}

// Build runs the two-phase protocol: verify produces a plan with no side
// effects, execute applies it transactionally, then children are built
// recursively with the same graph cache. Concurrent or re-entrant Build
// calls on one container are rejected.
func (c *Container) Build(ctx context.Context, opts ...BuildOption) error {
	if !c.building.CompareAndSwap(false, true) {
		return fmt.Errorf("container %q: build already in progress", c.name)
	}
	defer c.building.Store(false)

	cfg := buildConfig{cache: c.cache}
	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	c.diags = nil
	c.mu.Unlock()

	plan, err := c.verify(ctx, cfg.cache)
	if err != nil {
		return err
	}
	if err := c.execute(ctx, plan); err != nil {
		return err
	}

	c.mu.Lock()
	children := make([]*Container, len(c.children))
	copy(children, c.children)
	c.mu.Unlock()

	for _, child := range children {
		if err := child.Build(ctx, WithGraphCache(cfg.cache)); err != nil {
			return fmt.Errorf("building child %q: %w", child.name, err)
		}
	}
	return nil
}

// removal stashes everything execute strips from the container for an
// overwritten kind, so a failed batch can put it all back.
type removal struct {
	kind        string
	chain       []facet.Facet
	attachments map[string]any
	source      string
}

// execute applies a verified plan to the container. It partitions the plan's
// kinds into new, same-instance and overwrite sets, removes superseded
// facets, and hands the combined batch to addMany. If the batch fails, every
// removal is restored before the error is returned.
func (c *Container) execute(ctx context.Context, plan *BuildPlan) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	c.resolvedCtx = plan.ResolvedCtx
	c.mu.Unlock()

	var batch []string
	var removals []removal
	// live tracks, per overwritten kind, the instances that were attached
	// before this execute call. They are already initialized; addMany must
	// neither re-run their Init nor dispose them on rollback.
	live := make(map[string][]facet.Facet)
	for _, kind := range plan.OrderedKinds {
		candChain := plan.Facets.GetAll(kind)
		cand := candChain[len(candChain)-1]

		existing := c.facets.Latest(kind)
		switch {
		case existing == nil:
			batch = append(batch, kind)
		case existing == cand:
			// Same instance from the memoized plan: already initialized
			// and attached, nothing to do.
		default:
			rec := plan.producers[kind]
			if !overwritePermitted(rec, cand) {
				for _, rm := range removals {
					c.restoreRemoval(rm)
				}
				return &faceterr.DuplicateKindError{
					Kind:         kind,
					FirstSource:  c.sourceOf(kind),
					SecondSource: rec.Source(),
				}
			}
			rm := removal{
				kind:        kind,
				chain:       c.facets.RemoveKind(kind),
				attachments: c.detach(kind),
				source:      c.sourceOf(kind),
			}
			removals = append(removals, rm)
			live[kind] = rm.chain
			batch = append(batch, kind)
		}
	}

	logger.Debug("Executing build plan.",
		"container", c.name, "new", len(batch)-len(removals), "overwritten", len(removals))

	if err := c.addMany(ctx, plan, batch, live); err != nil {
		for _, rm := range removals {
			c.restoreRemoval(rm)
		}
		return err
	}

	c.mu.Lock()
	c.orderedKinds = plan.OrderedKinds
	for kind, rec := range plan.producers {
		c.sources[kind] = rec.Source()
	}
	c.mu.Unlock()

	for i, kind := range plan.OrderedKinds {
		c.facets.SetOrderIndex(kind, i)
	}
	return nil
}

// addMany registers, initializes and attaches a batch of kinds as one atomic
// unit. Initialization is level-synchronized: every kind of a dependency
// level starts together, and the next level starts only after all of them
// settled. Instances carried over from before this execute call (live) are
// registered but never re-initialized. On any failure the whole batch is
// rolled back and the first initialization error is returned.
func (c *Container) addMany(ctx context.Context, plan *BuildPlan, batch []string, live map[string][]facet.Facet) error {
	if len(batch) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	inBatch := make(map[string]bool, len(batch))
	for _, kind := range batch {
		inBatch[kind] = true
	}

	topoIndex := make(map[string]int, len(plan.OrderedKinds))
	for i, kind := range plan.OrderedKinds {
		topoIndex[kind] = i
	}

	for _, kind := range batch {
		for _, f := range plan.Facets.GetAll(kind) {
			c.facets.Add(f)
		}
		c.facets.SetOrderIndex(kind, topoIndex[kind])
	}

	env := &facet.Env{Config: plan.ResolvedCtx, Facets: c.facets, Host: c}

	// started tracks kinds whose Init may have run, in start order, so
	// rollback disposes exactly those.
	var started []string
	var initErr error

	for _, level := range plan.Levels {
		// A failing member must not abort its siblings mid-flight; the
		// level settles in full before the batch is judged, so the group
		// deliberately carries no cancellation.
		var g errgroup.Group
		for _, kind := range level {
			if !inBatch[kind] {
				continue
			}
			started = append(started, kind)
			g.Go(func() error {
				for _, f := range plan.Facets.GetAll(kind) {
					if isLive(live[kind], f) {
						continue
					}
					init, ok := f.(facet.Initializer)
					if !ok {
						continue
					}
					if err := init.Init(ctx, env); err != nil {
						return &faceterr.InitializationError{
							Kind:   kind,
							Source: plan.producers[kind].Source(),
							Err:    err,
						}
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			initErr = err
			break
		}
	}

	if initErr != nil {
		logger.Warn("Batch initialization failed, rolling back.",
			"container", c.name, "error", initErr)
		c.rollback(ctx, batch, started, live)
		return initErr
	}

	for _, kind := range batch {
		f := c.facets.Latest(kind)
		at, ok := f.(facet.Attacher)
		if !ok || !at.Attach() {
			continue
		}
		mp, ok := f.(facet.MethodProvider)
		if !ok {
			continue
		}
		for name, fn := range mp.Methods() {
			c.attach(kind, name, fn)
		}
	}
	return nil
}

// rollback undoes a failed batch: every kind whose initialization may have
// started is disposed in reverse start order (chain members reversed, errors
// suppressed into Diagnostics), then every batch kind is deregistered.
// Instances that were live before this execute call are left untouched; they
// are handed back to the container by restoreRemoval.
func (c *Container) rollback(ctx context.Context, batch, started []string, live map[string][]facet.Facet) {
	logger := ctxlog.FromContext(ctx)

	for i := len(started) - 1; i >= 0; i-- {
		kind := started[i]
		chain := c.facets.GetAll(kind)
		for j := len(chain) - 1; j >= 0; j-- {
			if isLive(live[kind], chain[j]) {
				continue
			}
			d, ok := chain[j].(facet.Disposer)
			if !ok {
				continue
			}
			if err := d.Dispose(ctx); err != nil {
				logger.Warn("Disposal during rollback failed, continuing.",
					"kind", kind, "error", err)
				c.recordDiag(fmt.Errorf("rollback disposal of %q: %w", kind, err))
			}
		}
	}

	for _, kind := range batch {
		c.facets.RemoveKind(kind)
	}
}

// restoreRemoval puts an overwritten kind back after a failed batch.
func (c *Container) restoreRemoval(rm removal) {
	for _, f := range rm.chain {
		c.facets.Add(f)
	}
	c.restoreAttachments(rm.kind, rm.attachments)

	c.mu.Lock()
	c.sources[rm.kind] = rm.source
	c.mu.Unlock()

	for i, kind := range c.orderedKinds {
		if kind == rm.kind {
			c.facets.SetOrderIndex(rm.kind, i)
			break
		}
	}
}

// isLive reports whether the facet instance was part of the kind's attached
// chain before the current execute call.
func isLive(chain []facet.Facet, f facet.Facet) bool {
	for _, l := range chain {
		if l == f {
			return true
		}
	}
	return false
}

func (c *Container) sourceOf(kind string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sources[kind]
}
