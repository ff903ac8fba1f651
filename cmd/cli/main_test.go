package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"gophi/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

// TestSIACommand verifies JSON output of the standard example
func TestSIACommand(t *testing.T) {
	out := execute(t, "sia", "--network", "basic", "--state", "1,0,0", "--format", "json")

	var report app.SIAReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2.3125, report.Phi)
	assert.Len(t, report.Concepts, 4)
}

// TestComplexesCommand verifies the XLSX side output
func TestComplexesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	out := execute(t, "complexes", "--major", "--xlsx", path)
	assert.Contains(t, out, "1 subsystems (major)")
	assert.FileExists(t, path)
}

// TestExamplesCommand verifies listing and dumping examples
func TestExamplesCommand(t *testing.T) {
	out := execute(t, "examples")
	assert.Contains(t, out, "basic")
	assert.Contains(t, out, "selfloop")

	out = execute(t, "examples", "--dump", "selfloop")
	assert.Contains(t, out, "tpm:")
}

// TestCacheFlushCommand verifies SIAs written through the store are flushed
func TestCacheFlushCommand(t *testing.T) {
	t.Setenv("PHI_CACHE_STORE_ENABLED", "true")
	t.Setenv("PHI_CACHE_SIAS", "true")
	t.Setenv("PHI_CACHE_DRIVER", "sqlite")
	t.Setenv("PHI_CACHE_DSN", "file:"+filepath.Join(t.TempDir(), "cache.db"))

	execute(t, "sia", "--network", "basic")
	assert.Equal(t, "1\n", execute(t, "cache", "count"))
	assert.Contains(t, execute(t, "cache", "flush"), "flushed 1 stored SIAs")
	assert.Equal(t, "0\n", execute(t, "cache", "count"))
}
