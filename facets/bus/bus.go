// Package bus provides the built-in event bus facet: topic-based
// subscribe/publish between facets. It depends on the logger facet.
package bus

import (
	"context"
	"sync"

	"github.com/vk/facetgo/internal/contract"
	"github.com/vk/facetgo/internal/engine"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/hook"

	"github.com/vk/facetgo/facets/logger"
)

// Kind is the facet kind this package produces.
const Kind = "bus"

// Handler consumes a published payload.
type Handler func(payload any)

// Module implements the engine.Provider interface for this package.
type Module struct{}

// Register wires the bus contract and hook onto the container.
func (m *Module) Register(c *engine.Container) error {
	if !c.Contracts().Has(Kind) {
		err := c.Contracts().Register(&contract.Contract{
			Name:    Kind,
			Methods: []string{"subscribe", "publish"},
		})
		if err != nil {
			return err
		}
	}
	c.Use(&hook.Hook{
		Kind:     Kind,
		Required: []string{logger.Kind},
		Source:   "facets/bus",
		Contract: Kind,
		Fn: func(ctx context.Context, env *facet.Env) (facet.Facet, error) {
			return &Bus{handlers: make(map[string][]Handler)}, nil
		},
	})
	return nil
}

// Bus is the event bus facet.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

func (b *Bus) Kind() string { return Kind }

func (b *Bus) Requires() []string { return []string{logger.Kind} }

// Init resolves the logger facet the bus reports delivery on.
func (b *Bus) Init(ctx context.Context, env *facet.Env) error {
	if l, ok := env.Facets.Latest(logger.Kind).(*logger.Logger); ok {
		b.log = l
	}
	return nil
}

func (b *Bus) Methods() map[string]any {
	return map[string]any{
		"subscribe": b.Subscribe,
		"publish":   b.Publish,
	}
}

// Subscribe registers a handler for a topic and returns its removal func.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], h)
	idx := len(b.handlers[topic]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		chain := b.handlers[topic]
		if idx < len(chain) && chain[idx] != nil {
			chain[idx] = nil
		}
	}
}

// Publish delivers a payload to every live handler of the topic, in
// subscription order, and returns the number of handlers reached.
func (b *Bus) Publish(topic string, payload any) int {
	b.mu.RLock()
	chain := make([]Handler, len(b.handlers[topic]))
	copy(chain, b.handlers[topic])
	b.mu.RUnlock()

	delivered := 0
	for _, h := range chain {
		if h == nil {
			continue
		}
		h(payload)
		delivered++
	}
	if b.log != nil {
		b.log.Debug("Published event.", "topic", topic, "delivered", delivered)
	}
	return delivered
}
