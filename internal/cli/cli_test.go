package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{"ctx.hcl"}, out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, []string{"ctx.hcl"}, cfg.CtxPaths)
	assert.Equal(t, "hcl", cfg.Format)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.CacheSize)
}

func TestParseRepeatableCtx(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{"-ctx", "base.hcl", "-ctx", "prod.hcl", "extra.hcl"}, out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, []string{"base.hcl", "prod.hcl", "extra.hcl"}, cfg.CtxPaths)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"-format", "toml", "ctx.hcl"}, "invalid format"},
		{"bad log format", []string{"-log-format", "xml", "ctx.hcl"}, "invalid log-format"},
		{"bad log level", []string{"-log-level", "loud", "ctx.hcl"}, "invalid log-level"},
		{"negative cache size", []string{"-cache-size", "-1", "ctx.hcl"}, "invalid cache-size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}
			_, _, err := Parse(tc.args, out)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
