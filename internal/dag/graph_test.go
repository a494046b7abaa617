package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/facetgo/internal/faceterr"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.True(t, g.HasNode("a"))
	assert.Equal(t, 1, g.Len())

	g.AddNode("a") // Test idempotency
	assert.Equal(t, 1, g.Len())

	g.AddNode("b")
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // b depends on a
		require.NoError(t, err)

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)
	})

	t.Run("duplicate edge is idempotent", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "b"))

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestTopoSort(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		g := New()
		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("no edges preserves insertion order", func(t *testing.T) {
		g := New()
		g.AddNode("c")
		g.AddNode("a")
		g.AddNode("b")
		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, order)
	})

	t.Run("dependencies precede dependents", func(t *testing.T) {
		g := New()
		// Inserted in reverse dependency order on purpose.
		g.AddNode("top")
		g.AddNode("mid")
		g.AddNode("base")
		require.NoError(t, g.AddEdge("base", "mid"))
		require.NoError(t, g.AddEdge("base", "top"))
		require.NoError(t, g.AddEdge("mid", "top"))

		order, err := g.TopoSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"base", "mid", "top"}, order)
	})

	t.Run("every edge respected in diamond graph", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "d"))
		require.NoError(t, g.AddEdge("c", "d"))

		order, err := g.TopoSort()
		require.NoError(t, err)
		require.Len(t, order, 4)

		pos := make(map[string]int)
		for i, id := range order {
			pos[id] = i
		}
		assert.Less(t, pos["a"], pos["b"])
		assert.Less(t, pos["a"], pos["c"])
		assert.Less(t, pos["b"], pos["d"])
		assert.Less(t, pos["c"], pos["d"])
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopoSort()
		require.Error(t, err)

		var cycleErr *faceterr.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Stuck)
	})

	t.Run("cycle in a disjoint component reports only the stuck set", func(t *testing.T) {
		g := New()
		g.AddNode("ok1")
		g.AddNode("ok2")
		require.NoError(t, g.AddEdge("ok1", "ok2"))

		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y"))

		_, err := g.TopoSort()
		var cycleErr *faceterr.CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.ElementsMatch(t, []string{"y", "z"}, cycleErr.Stuck)
		assert.NotContains(t, cycleErr.Stuck, "ok1")
		assert.NotContains(t, cycleErr.Stuck, "x")
	})
}

func TestLevels(t *testing.T) {
	t.Run("independent nodes share level zero", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		levels, err := g.Levels()
		require.NoError(t, err)
		require.Len(t, levels, 1)
		assert.Equal(t, []string{"a", "b"}, levels[0])
	})

	t.Run("chain produces one level per node", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))

		levels, err := g.Levels()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, levels)
	})

	t.Run("diamond collapses the middle level", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "d"))
		require.NoError(t, g.AddEdge("c", "d"))

		levels, err := g.Levels()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, levels)
	})

	t.Run("cycle is reported", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.Levels()
		var cycleErr *faceterr.CycleError
		require.ErrorAs(t, err, &cycleErr)
	})
}
