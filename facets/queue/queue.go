// Package queue provides the built-in queue facet: a bounded in-memory FIFO.
// Capacity comes from the resolved configuration key "queue_capacity".
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/facetgo/internal/contract"
	"github.com/vk/facetgo/internal/engine"
	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/hook"
)

// Kind is the facet kind this package produces.
const Kind = "queue"

// DefaultCapacity bounds a queue configured without an explicit capacity.
const DefaultCapacity = 1024

// ErrFull is returned by Push when the queue is at capacity.
var ErrFull = errors.New("queue is full")

// Module implements the engine.Provider interface for this package.
type Module struct{}

// Register wires the queue contract and hook onto the container.
func (m *Module) Register(c *engine.Container) error {
	if !c.Contracts().Has(Kind) {
		err := c.Contracts().Register(&contract.Contract{
			Name:       Kind,
			Methods:    []string{"push", "pop"},
			Properties: []string{"Capacity"},
		})
		if err != nil {
			return err
		}
	}
	c.Use(&hook.Hook{
		Kind:     Kind,
		Source:   "facets/queue",
		Contract: Kind,
		Fn: func(ctx context.Context, env *facet.Env) (facet.Facet, error) {
			return &Queue{Capacity: capacityFrom(env.Config)}, nil
		},
	})
	return nil
}

// capacityFrom reads "queue_capacity" from the resolved configuration. HCL
// numbers arrive as float64, YAML numbers as int.
func capacityFrom(cfg map[string]any) int {
	switch v := cfg["queue_capacity"].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return DefaultCapacity
}

// Queue is the queue facet: a thread-safe bounded FIFO.
type Queue struct {
	Capacity int

	mu    sync.Mutex
	items []any
}

func (q *Queue) Kind() string { return Kind }

func (q *Queue) Methods() map[string]any {
	return map[string]any{
		"push": q.Push,
		"pop":  q.Pop,
	}
}

// Push appends an item, failing with ErrFull at capacity.
func (q *Queue) Push(item any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.Capacity {
		return ErrFull
	}
	q.items = append(q.items, item)
	return nil
}

// Pop removes and returns the oldest item, reporting whether one existed.
func (q *Queue) Pop() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
