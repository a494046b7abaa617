package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/facetgo/internal/cfgctx"
	"github.com/vk/facetgo/internal/engine"
)

func TestClientGet(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := engine.New("app", engine.WithCtx(cfgctx.Map{
		"http_base_url": srv.URL,
		"http_timeout":  "5s",
	}))
	require.NoError(t, (&Module{}).Register(c))
	require.NoError(t, c.Build(ctx))

	client, ok := c.Find(Kind).(*Client)
	require.True(t, ok)
	require.NotNil(t, client.Resty())

	body, err := client.Get(ctx, "/ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", body)

	_, err = client.Get(ctx, "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	require.NoError(t, c.Dispose(ctx))
	assert.Empty(t, c.Diagnostics())
}

func TestInitRejectsBadTimeout(t *testing.T) {
	t.Parallel()

	c := engine.New("app", engine.WithCtx(cfgctx.Map{"http_timeout": "soon"}))
	require.NoError(t, (&Module{}).Register(c))

	err := c.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_timeout")
	assert.Nil(t, c.Find(Kind), "failed init must roll the facet back")
}

func TestDisposeWithoutInit(t *testing.T) {
	t.Parallel()

	client := &Client{}
	assert.NoError(t, client.Dispose(context.Background()))
}
