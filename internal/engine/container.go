package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/contract"
	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/graphcache"
	"github.com/vk/facetgo/internal/hook"
)

// Container owns a resolved configuration, a hook list, the facet registry
// and any child containers. All mutation happens through Use, Build, Reload
// and Dispose; Build is transactional (see package doc).
type Container struct {
	mu   sync.Mutex
	id   string
	name string

	parent   *Container
	children []*Container

	baseCtx     cfgctx.Map
	resolvedCtx cfgctx.Map

	hooks     []*hook.Hook
	facets    *facet.Manager
	contracts *contract.Registry

	// attachments is the container's method table, populated by facets
	// that opt into attachment. attachKeys tracks which keys each kind
	// contributed so overwrites can detach them; attachOwner tracks which
	// kind currently owns each bare method name, since a later attachment
	// may claim a bare name an earlier kind contributed.
	attachments map[string]any
	attachKeys  map[string][]string
	attachOwner map[string]string

	// sources maps attached kinds to the provenance of their producer,
	// for overwrite-conflict error messages.
	sources map[string]string

	// orderedKinds is the topological order of the last successful build,
	// consumed by Dispose.
	orderedKinds []string

	plan  *BuildPlan
	cache *graphcache.Cache

	building atomic.Bool
	diags    []error
}

// API is the multi-facet access surface handed to external collaborators.
type API struct {
	Facets    *facet.Manager
	Contracts *contract.Registry
}

// Option configures a new container.
type Option func(*Container)

// WithCtx seeds the container's own configuration layer.
func WithCtx(m cfgctx.Map) Option {
	return func(c *Container) { c.baseCtx = m.Clone() }
}

// WithContracts substitutes the container's contract registry.
func WithContracts(r *contract.Registry) Option {
	return func(c *Container) { c.contracts = r }
}

// WithCacheSize sizes the container's default graph cache.
func WithCacheSize(n int) Option {
	return func(c *Container) { c.cache = graphcache.New(n) }
}

// New creates an empty container.
func New(name string, opts ...Option) *Container {
	c := &Container{
		id:          uuid.NewString(),
		name:        name,
		baseCtx:     cfgctx.Map{},
		facets:      facet.NewManager(),
		contracts:   contract.NewRegistry(),
		attachments: make(map[string]any),
		attachKeys:  make(map[string][]string),
		attachOwner: make(map[string]string),
		sources:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = graphcache.New(graphcache.DefaultCapacity)
	}
	return c
}

// Name returns the container's name.
func (c *Container) Name() string { return c.name }

// ID returns the container's unique instance identifier.
func (c *Container) ID() string { return c.id }

// Use registers a hook. It is chainable and may be called again after a
// Reload to grow the hook set incrementally.
func (c *Container) Use(h *hook.Hook) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
	return c
}

// Contracts returns the container's contract registry.
func (c *Container) Contracts() *contract.Registry { return c.contracts }

// API returns the multi-facet access surface.
func (c *Container) API() *API {
	return &API{Facets: c.facets, Contracts: c.contracts}
}

// Find returns the latest attached facet of a kind, or nil. It implements
// facet.Host.
func (c *Container) Find(kind string) facet.Facet {
	return c.facets.Latest(kind)
}

// OrderedKinds returns the topological order of the last successful build.
func (c *Container) OrderedKinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.orderedKinds))
	copy(out, c.orderedKinds)
	return out
}

// Attachment returns an attached method by name. Methods are reachable both
// as "<kind>.<method>" and as the bare method name (later attachments win
// the bare name).
func (c *Container) Attachment(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attachments[name]
	return v, ok
}

// NewChild creates a child container. Children share the parent's contract
// registry, inherit its resolved configuration as a base layer, and are
// built and disposed recursively with the parent.
func (c *Container) NewChild(name string, opts ...Option) *Container {
	child := New(name, opts...)
	child.parent = c
	child.contracts = c.contracts

	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = append(c.children, child)
	return child
}

// Reload clears the memoized build plan so a subsequent Use and Build pick
// up hook and configuration changes. It is chainable.
func (c *Container) Reload() *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = nil
	return c
}

// Diagnostics returns errors that were suppressed to let a rollback or
// teardown run to completion. They never mask the primary build error.
func (c *Container) Diagnostics() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.diags))
	copy(out, c.diags)
	return out
}

// Dispose tears the container down: children first, then every facet in
// strict reverse topological order. Disposal errors are suppressed so the
// teardown always completes; they are available via Diagnostics.
func (c *Container) Dispose(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Disposing container.", "container", c.name, "id", c.id)

	c.mu.Lock()
	children := make([]*Container, len(c.children))
	copy(children, c.children)
	c.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Dispose(ctx); err != nil {
			c.recordDiag(fmt.Errorf("disposing child %q: %w", children[i].name, err))
		}
	}

	for i := len(c.orderedKinds) - 1; i >= 0; i-- {
		kind := c.orderedKinds[i]
		chain := c.facets.GetAll(kind)
		for j := len(chain) - 1; j >= 0; j-- {
			d, ok := chain[j].(facet.Disposer)
			if !ok {
				continue
			}
			if err := d.Dispose(ctx); err != nil {
				logger.Warn("Facet disposal failed, continuing teardown.", "kind", kind, "error", err)
				c.recordDiag(fmt.Errorf("disposing facet %q: %w", kind, err))
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.facets = facet.NewManager()
	c.attachments = make(map[string]any)
	c.attachKeys = make(map[string][]string)
	c.attachOwner = make(map[string]string)
	c.sources = make(map[string]string)
	c.orderedKinds = nil
	c.plan = nil
	return nil
}

// resolveCtx merges the parent's resolved configuration (if any) under the
// container's own layer.
func (c *Container) resolveCtx() cfgctx.Map {
	if c.parent != nil && c.parent.resolvedCtx != nil {
		return cfgctx.Merge(c.parent.resolvedCtx, c.baseCtx)
	}
	return c.baseCtx.Clone()
}

func (c *Container) recordDiag(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, err)
}

func (c *Container) attach(kind, name string, fn any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qualified := kind + "." + name
	c.attachments[qualified] = fn
	c.attachments[name] = fn
	c.attachOwner[name] = kind
	c.attachKeys[kind] = append(c.attachKeys[kind], qualified, name)
}

// detach removes a kind's attachments best-effort and returns what was
// removed, keyed for restoration during rollback. A bare method name is only
// removed while the kind still owns it; a name since claimed by a later
// attachment stays put.
func (c *Container) detach(kind string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := make(map[string]any)
	for _, key := range c.attachKeys[kind] {
		if owner, owned := c.attachOwner[key]; owned && owner != kind {
			continue
		}
		if v, ok := c.attachments[key]; ok {
			removed[key] = v
			delete(c.attachments, key)
			delete(c.attachOwner, key)
		}
	}
	delete(c.attachKeys, kind)
	return removed
}

func (c *Container) restoreAttachments(kind string, saved map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, v := range saved {
		c.attachments[key] = v
		if _, isOwned := c.attachOwner[key]; !isOwned && !strings.Contains(key, ".") {
			c.attachOwner[key] = kind
		}
		c.attachKeys[kind] = append(c.attachKeys[kind], key)
	}
}
