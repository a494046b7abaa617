package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An HCL file with a syntax error causes app.NewApp to panic during the
	// loading phase; run must recover it into an error.
	invalidHCL := `region = `
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out := &bytes.Buffer{}
	runErr := run(out, []string{filePath})

	require.Error(t, runErr)
	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"),
		"the error message should indicate that a panic was recovered")
	require.True(t, strings.Contains(errStr, "failed to load configuration"),
		"the error message should contain the underlying reason for the panic")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "expected help text in the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(`queue_capacity = 8`), 0600)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	runErr := run(out, []string{"-log-level", "error", filePath})

	require.NoError(t, runErr)
	require.Contains(t, out.String(), "Initialization order:")
	require.Contains(t, out.String(), "logger")
	require.Contains(t, out.String(), "bus")
}

func TestRun_YAMLFormat(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.yaml")
	err := os.WriteFile(filePath, []byte("queue_capacity: 8\n"), 0600)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	runErr := run(out, []string{"-format", "yaml", "-log-level", "error", filePath})

	require.NoError(t, runErr)
	require.Contains(t, out.String(), "Initialization order:")
}
