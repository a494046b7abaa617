package hook

import (
	"fmt"

	"github.com/vk/facetgo/internal/faceterr"
)

// Record is the normalized metadata of one registered hook: the hook itself,
// its position within its kind's chain, and the synthetic identity
// "<kind>:<index>" used by the hook-level dependency graph.
type Record struct {
	Hook *Hook
	// ChainIndex is the hook's position within its kind's overwrite chain.
	ChainIndex int
	// ID is the synthetic hook identity, "<kind>:<chainIndex>".
	ID string
}

// Source returns the hook's provenance, falling back to its identity.
func (r *Record) Source() string {
	if r.Hook.Source != "" {
		return r.Hook.Source
	}
	return r.ID
}

// Set is the result of metadata extraction: all hooks in registration order
// plus the per-kind chains.
type Set struct {
	records []*Record
	chains  map[string][]*Record
	// kindOrder preserves first-registration order of kinds.
	kindOrder []string
}

// Extract normalizes raw hooks into a Set, grouping them by kind in
// registration order. A hook without a kind or without a factory function is
// rejected with a StructuralError.
func Extract(hooks []*Hook) (*Set, error) {
	s := &Set{chains: make(map[string][]*Record)}
	for i, h := range hooks {
		if h.Kind == "" {
			return nil, &faceterr.StructuralError{
				Source: h.Source,
				Reason: fmt.Sprintf("hook at registration position %d has no kind", i),
			}
		}
		if h.Fn == nil {
			return nil, &faceterr.StructuralError{
				Kind:   h.Kind,
				Source: h.Source,
				Reason: "hook has no factory function",
			}
		}

		chain := s.chains[h.Kind]
		if len(chain) == 0 {
			s.kindOrder = append(s.kindOrder, h.Kind)
		}
		rec := &Record{
			Hook:       h,
			ChainIndex: len(chain),
			ID:         fmt.Sprintf("%s:%d", h.Kind, len(chain)),
		}
		s.chains[h.Kind] = append(chain, rec)
		s.records = append(s.records, rec)
	}
	return s, nil
}

// Records returns all hook records in registration order.
func (s *Set) Records() []*Record {
	return s.records
}

// Chain returns the overwrite chain for a kind in registration order.
func (s *Set) Chain(kind string) []*Record {
	return s.chains[kind]
}

// Kinds returns all hook kinds in first-registration order.
func (s *Set) Kinds() []string {
	return s.kindOrder
}

// LastProducer returns the final hook in a kind's chain: the "most
// enhanced" producer, which later consumers of the kind depend on.
func (s *Set) LastProducer(kind string) (*Record, bool) {
	chain := s.chains[kind]
	if len(chain) == 0 {
		return nil, false
	}
	return chain[len(chain)-1], true
}
