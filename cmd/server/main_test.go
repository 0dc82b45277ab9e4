package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Resilience/internal/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCommandPrintsTiers(t *testing.T) {
	out, err := runCommand(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Leadership and Governance")
	assert.Contains(t, out, "Tiers (40-200)")
	assert.Contains(t, out, "160-200 Highly Resilient")
}

func TestCatalogCommandValidate(t *testing.T) {
	out, err := runCommand(t, "catalog", "--validate")
	require.NoError(t, err)
	assert.Contains(t, out, "8 categories, 40 questions, scores 40-200")

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("likert: [\n"), 0o644))
	_, err = runCommand(t, "catalog", "--validate", "--file", broken)
	assert.Error(t, err)
}

func TestMigrateCommandCreatesSQLiteSchema(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("RESILIENCE_STORE", "sqlite")
	t.Setenv("RESILIENCE_SQLITE_PATH", filepath.Join(dir, "data", "r.db"))

	out, err := runCommand(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite store is up to date")
	assert.FileExists(t, filepath.Join(dir, "data", "r.db"))

	// Second run is a no-op.
	_, err = runCommand(t, "migrate")
	require.NoError(t, err)
}

func TestLockPath(t *testing.T) {
	assert.Equal(t, "/var/r.db.lock", lockPath(config.Config{Store: "sqlite", SQLitePath: "/var/r.db"}))
	assert.Empty(t, lockPath(config.Config{Store: "postgres", SQLitePath: "/var/r.db"}))
}
