package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "app.hcl", `
region  = "eu-west-1"
retries = 3
debug   = true
limits = {
  rps   = 100
  burst = 200
}
hosts = ["a.example", "b.example"]
`)

	m, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", m["region"])
	assert.Equal(t, float64(3), m["retries"])
	assert.Equal(t, true, m["debug"])
	assert.Equal(t, map[string]any{"rps": float64(100), "burst": float64(200)}, m["limits"])
	assert.Equal(t, []any{"a.example", "b.example"}, m["hosts"])
}

func TestLoadLaterPathsWin(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := writeFile(t, dir, "base.hcl", `
region = "eu-west-1"
limits = {
  rps   = 100
  burst = 200
}
`)
	override := writeFile(t, dir, "override.hcl", `
limits = {
  rps = 500
}
`)

	m, err := NewLoader().Load(context.Background(), base, override)
	require.NoError(t, err)

	// Nested maps merge; overridden leaves are replaced, untouched leaves
	// survive.
	assert.Equal(t, "eu-west-1", m["region"])
	assert.Equal(t, map[string]any{"rps": float64(500), "burst": float64(200)}, m["limits"])
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `region = "eu"`)
	writeFile(t, dir, "b.hcl", `debug = true`)
	writeFile(t, dir, "ignored.txt", `not hcl`)

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "eu", m["region"])
	assert.Equal(t, true, m["debug"])
}

func TestLoadMissingPathIsSkipped(t *testing.T) {
	t.Parallel()

	m, err := NewLoader().Load(context.Background(), "/does/not/exist.hcl")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadInvalidHCL(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.hcl", `region = `)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hcl")
}
