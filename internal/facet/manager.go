package facet

import "sync"

// Manager is the registry from kind to its facet chain. When overwrite hooks
// stack several facets onto one kind, the chain keeps all of them in
// production order; Latest is the one Find resolves to. The manager also
// records each kind's topological orderIndex, assigned when the kind is
// registered during the execute phase.
type Manager struct {
	mu sync.RWMutex
	// byKind holds each kind's facet chain in production order.
	byKind map[string][]Facet
	// kindOrder preserves the insertion order of kinds.
	kindOrder []string
	// orderIndex maps kind to its position in the last topological order.
	orderIndex map[string]int
}

// NewManager returns an empty facet manager.
func NewManager() *Manager {
	return &Manager{
		byKind:     make(map[string][]Facet),
		orderIndex: make(map[string]int),
	}
}

// Add appends a facet to its kind's chain, creating the chain on first use.
func (m *Manager) Add(f Facet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind := f.Kind()
	if _, ok := m.byKind[kind]; !ok {
		m.kindOrder = append(m.kindOrder, kind)
	}
	m.byKind[kind] = append(m.byKind[kind], f)
}

// Has reports whether any facet of the kind is registered.
func (m *Manager) Has(kind string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKind[kind]) > 0
}

// GetAll returns a copy of the kind's facet chain in production order.
func (m *Manager) GetAll(kind string) []Facet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.byKind[kind]
	out := make([]Facet, len(chain))
	copy(out, chain)
	return out
}

// GetByIndex returns the i-th facet of the kind's chain.
func (m *Manager) GetByIndex(kind string, i int) (Facet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.byKind[kind]
	if i < 0 || i >= len(chain) {
		return nil, false
	}
	return chain[i], true
}

// Latest returns the most recent facet of the kind, or nil if none exists.
func (m *Manager) Latest(kind string) Facet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.byKind[kind]
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// Kinds returns all registered kinds in insertion order.
func (m *Manager) Kinds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.kindOrder))
	copy(out, m.kindOrder)
	return out
}

// Len returns the number of registered kinds.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.kindOrder)
}

// RemoveKind removes a kind's whole chain and returns it. The kind loses its
// insertion position and orderIndex.
func (m *Manager) RemoveKind(kind string) []Facet {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain, ok := m.byKind[kind]
	if !ok {
		return nil
	}
	delete(m.byKind, kind)
	delete(m.orderIndex, kind)
	for i, k := range m.kindOrder {
		if k == kind {
			m.kindOrder = append(m.kindOrder[:i], m.kindOrder[i+1:]...)
			break
		}
	}
	return chain
}

// SetOrderIndex records the kind's position in the topological order.
func (m *Manager) SetOrderIndex(kind string, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderIndex[kind] = idx
}

// OrderIndex returns the kind's topological position, if one was assigned.
func (m *Manager) OrderIndex(kind string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.orderIndex[kind]
	return idx, ok
}
