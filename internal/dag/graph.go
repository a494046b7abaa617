package dag

import (
	"fmt"
	"sync"

	"github.com/vk/facetgo/internal/faceterr"
)

// Graph is a collection of vertices and directed edges. All operations are
// concurrency-safe. Vertex and edge insertion order is preserved so that
// topological results are deterministic.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
	// order holds vertex IDs in insertion order.
	order []string
}

// node is an un-exported vertex; interaction happens via string IDs.
type node struct {
	id string
	// deps is the set of vertices this vertex depends on (predecessors).
	deps map[string]struct{}
	// depOrder preserves the insertion order of deps.
	depOrder []string
	// dependents is the set of vertices depending on this vertex (successors).
	dependents map[string]struct{}
	// dependentOrder preserves the insertion order of dependents.
	dependentOrder []string
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new vertex with the given ID. Adding an existing ID is a
// no-op, keeping the original insertion position.
func (g *Graph) AddNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]struct{}),
		dependents: make(map[string]struct{}),
	}
	g.order = append(g.order, id)
}

// HasNode reports whether a vertex with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Nodes returns all vertex IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// AddEdge creates a directed edge from `fromID` to `toID`, meaning `toID`
// depends on `fromID`. An error is returned if either vertex does not exist
// or if the edge would be self-referential. Duplicate edges are no-ops.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, exists := toNode.deps[fromID]; exists {
		return nil
	}
	toNode.deps[fromID] = struct{}{}
	toNode.depOrder = append(toNode.depOrder, fromID)
	fromNode.dependents[toID] = struct{}{}
	fromNode.dependentOrder = append(fromNode.dependentOrder, toID)
	return nil
}

// Dependencies returns the IDs the given vertex depends on, in edge
// insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, len(n.depOrder))
	copy(out, n.depOrder)
	return out, nil
}

// Dependents returns the IDs that depend on the given vertex, in edge
// insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, len(n.dependentOrder))
	copy(out, n.dependentOrder)
	return out, nil
}

// TopoSort computes a topological order using Kahn's algorithm: seed a queue
// with every zero-indegree vertex (in insertion order), repeatedly dequeue,
// append to the result, and decrement the indegree of each dependent,
// enqueueing those that reach zero. If any vertices remain unresolved the
// graph has a cycle and a *faceterr.CycleError naming the stuck set is
// returned.
func (g *Graph) TopoSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
	}

	queue := make([]string, 0, len(g.nodes))
	for _, id := range g.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, depID := range g.nodes[id].dependentOrder {
			indegree[depID]--
			if indegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(result) < len(g.nodes) {
		resolved := make(map[string]struct{}, len(result))
		for _, id := range result {
			resolved[id] = struct{}{}
		}
		var stuck []string
		for _, id := range g.order {
			if _, ok := resolved[id]; !ok {
				stuck = append(stuck, id)
			}
		}
		return nil, &faceterr.CycleError{Stuck: stuck}
	}
	return result, nil
}

// Levels partitions the graph into dependency levels: level 0 holds every
// vertex with no dependencies, and each subsequent level holds the vertices
// whose dependencies all sit in earlier levels. Vertices within a level are
// independent of one another. Returns a *faceterr.CycleError if the graph
// cannot be fully levelled.
func (g *Graph) Levels() ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.deps)
	}

	frontier := make([]string, 0)
	for _, id := range g.order {
		if indegree[id] == 0 {
			frontier = append(frontier, id)
		}
	}

	var levels [][]string
	seen := 0
	for len(frontier) > 0 {
		levels = append(levels, frontier)
		seen += len(frontier)

		var next []string
		for _, id := range frontier {
			for _, depID := range g.nodes[id].dependentOrder {
				indegree[depID]--
				if indegree[depID] == 0 {
					next = append(next, depID)
				}
			}
		}
		frontier = next
	}

	if seen < len(g.nodes) {
		levelled := make(map[string]struct{}, seen)
		for _, level := range levels {
			for _, id := range level {
				levelled[id] = struct{}{}
			}
		}
		var stuck []string
		for _, id := range g.order {
			if _, ok := levelled[id]; !ok {
				stuck = append(stuck, id)
			}
		}
		return nil, &faceterr.CycleError{Stuck: stuck}
	}
	return levels, nil
}
