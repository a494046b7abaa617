// Package dag provides a generic, thread-safe directed acyclic graph keyed
// by string identifiers. It is the single topological authority of the
// engine: both the hook-identity graph and the facet-kind graph are built on
// it, and its Kahn-based TopoSort is the only place ordering decisions are
// made.
//
// Determinism: the graph remembers vertex and edge insertion order, and
// TopoSort breaks ties between independent vertices by that order. Callers
// that insert vertices in registration order therefore get registration
// order back for unrelated vertices.
package dag
