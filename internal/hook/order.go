package hook

import (
	"context"

	"github.com/vk/facetgo/internal/ctxlog"
	"github.com/vk/facetgo/internal/dag"
	"github.com/vk/facetgo/internal/faceterr"
)

// Order computes a valid execution sequence for the set's hooks using Kahn's
// algorithm over hook identities.
//
// Edge rules: a hook depends on the producer of each kind it requires,
// resolved to the last registered hook of that kind. The exception is a
// hook requiring its own kind: with Overwrite set that resolves to the
// hook's immediate predecessor in its chain, modeling "enhance what came
// before me"; this self-requirement never reaches the facet-level graph.
// Requirements no hook produces are skipped here and reported later, when
// the facet graph is built against actually-produced facets.
func (s *Set) Order(ctx context.Context) ([]*Record, error) {
	logger := ctxlog.FromContext(ctx)

	g := dag.New()
	for _, rec := range s.records {
		g.AddNode(rec.ID)
	}

	for _, rec := range s.records {
		for _, req := range rec.Hook.Required {
			if req == rec.Hook.Kind {
				if !rec.Hook.Overwrite {
					return nil, &faceterr.DependencyError{
						Kind:   rec.Hook.Kind,
						Source: rec.Source(),
						Reason: "hook requires its own kind but is not an overwrite hook",
					}
				}
				if rec.ChainIndex == 0 {
					return nil, &faceterr.DependencyError{
						Kind:   rec.Hook.Kind,
						Source: rec.Source(),
						Reason: "overwrite hook requires its own kind but has no predecessor to overwrite",
					}
				}
				pred := s.chains[rec.Hook.Kind][rec.ChainIndex-1]
				if err := g.AddEdge(pred.ID, rec.ID); err != nil {
					return nil, err
				}
				continue
			}

			producer, ok := s.LastProducer(req)
			if !ok {
				// No hook produces the kind; the facet-level graph
				// reports missing facets with full context.
				logger.Debug("Hook requirement has no producing hook, deferring to facet graph.",
					"hook", rec.ID, "required", req)
				continue
			}
			if err := g.AddEdge(producer.ID, rec.ID); err != nil {
				return nil, err
			}
		}
	}

	// A hook implicitly follows its chain predecessor even without a
	// self-requirement, so chains always execute in registration order.
	for _, kind := range s.kindOrder {
		chain := s.chains[kind]
		for i := 1; i < len(chain); i++ {
			if err := g.AddEdge(chain[i-1].ID, chain[i].ID); err != nil {
				return nil, err
			}
		}
	}

	orderedIDs, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Record, len(s.records))
	for _, rec := range s.records {
		byID[rec.ID] = rec
	}
	ordered := make([]*Record, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		ordered = append(ordered, byID[id])
	}
	logger.Debug("Hook ordering complete.", "hooks", len(ordered))
	return ordered, nil
}
