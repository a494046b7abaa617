package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/facetgo/internal/facet"
	"github.com/vk/facetgo/internal/faceterr"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Contract{Name: "logger", Methods: []string{"Info"}}))
	require.NoError(t, r.Register(&Contract{Name: "queue"}))

	assert.True(t, r.Has("logger"))
	assert.False(t, r.Has("bus"))
	assert.NotNil(t, r.Get("logger"))
	assert.Nil(t, r.Get("bus"))
	assert.Equal(t, []string{"logger", "queue"}, r.List())

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := r.Register(&Contract{Name: "logger"})
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("unnamed contract rejected", func(t *testing.T) {
		err := r.Register(&Contract{})
		assert.ErrorContains(t, err, "must have a name")
	})

	t.Run("remove", func(t *testing.T) {
		assert.True(t, r.Remove("queue"))
		assert.False(t, r.Has("queue"))
		assert.False(t, r.Remove("queue"))
		assert.Equal(t, []string{"logger"}, r.List())
	})
}

func TestEnforce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := &facet.Env{}

	t.Run("unregistered contract fails with facet context", func(t *testing.T) {
		r := NewRegistry()
		f := &facet.Base{FacetKind: "db"}
		err := r.Enforce(ctx, "ghost", env, f, "facets/db")

		var cErr *faceterr.ContractError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, "ghost", cErr.Contract)
		assert.Equal(t, "db", cErr.Kind)
		assert.Equal(t, "facets/db", cErr.Source)
	})

	t.Run("methods from the method bag", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Contract{Name: "logger", Methods: []string{"info", "error"}}))

		ok := &facet.Base{
			FacetKind: "logger",
			Funcs: map[string]any{
				"info":  func(string) {},
				"error": func(string) {},
			},
		}
		assert.NoError(t, r.Enforce(ctx, "logger", env, ok, "src"))

		missing := &facet.Base{
			FacetKind: "logger",
			Funcs:     map[string]any{"info": func(string) {}},
		}
		err := r.Enforce(ctx, "logger", env, missing, "src")
		var cErr *faceterr.ContractError
		require.ErrorAs(t, err, &cErr)
		assert.Contains(t, cErr.Reason, `"error" is missing`)
	})

	t.Run("non-callable method value fails", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Contract{Name: "c", Methods: []string{"run"}}))

		f := &facet.Base{FacetKind: "k", Funcs: map[string]any{"run": "not a func"}}
		err := r.Enforce(ctx, "c", env, f, "src")
		var cErr *faceterr.ContractError
		require.ErrorAs(t, err, &cErr)
		assert.Contains(t, cErr.Reason, "not callable")
	})

	t.Run("properties must exist and be non-nil", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Contract{Name: "c", Properties: []string{"capacity"}}))

		ok := &facet.Base{FacetKind: "k", Props: map[string]any{"capacity": 10}}
		assert.NoError(t, r.Enforce(ctx, "c", env, ok, "src"))

		nilProp := &facet.Base{FacetKind: "k", Props: map[string]any{"capacity": nil}}
		err := r.Enforce(ctx, "c", env, nilProp, "src")
		var cErr *faceterr.ContractError
		require.ErrorAs(t, err, &cErr)
		assert.Contains(t, cErr.Reason, `"capacity" is missing`)
	})

	t.Run("custom validator failure is wrapped with contract name", func(t *testing.T) {
		r := NewRegistry()
		boom := errors.New("capacity must be positive")
		require.NoError(t, r.Register(&Contract{
			Name: "queue",
			Validate: func(ctx context.Context, env *facet.Env, f facet.Facet) error {
				return boom
			},
		}))

		f := &facet.Base{FacetKind: "queue"}
		err := r.Enforce(ctx, "queue", env, f, "src")
		var cErr *faceterr.ContractError
		require.ErrorAs(t, err, &cErr)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, cErr.Error(), "queue")
	})

	t.Run("reflected methods satisfy the contract", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Contract{Name: "kind", Methods: []string{"Kind"}}))

		f := &facet.Base{FacetKind: "k"}
		assert.NoError(t, r.Enforce(ctx, "kind", env, f, "src"))
	})
}
