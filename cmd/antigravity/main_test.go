package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return home
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "antigravity ")
}

func TestDoctorCommand(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	out, err := execute(t, "--no-history", "doctor", root)
	assert.ErrorIs(t, err, errUnhealthy)
	assert.Contains(t, out, "missing")

	out, err = execute(t, "--no-history", "doctor", "--fix", root)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATED")
	assert.FileExists(t, filepath.Join(root, ".agent", "rules", "00_identity.md"))

	_, err = execute(t, "--no-history", "doctor", root)
	assert.NoError(t, err)
}

func TestDoctorCommand_JSON(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	out, err := execute(t, "--no-history", "doctor", "--fix", "--json", root)
	require.NoError(t, err)

	var report struct {
		Healthy bool   `json:"healthy"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Healthy)
	assert.Contains(t, report.Summary, "healthy")
}

func TestInitCommand(t *testing.T) {
	isolate(t)
	parent := t.TempDir()
	dump := filepath.Join(t.TempDir(), "dump.md")
	require.NoError(t, os.WriteFile(dump, []byte("# Deploy steps\n1. build with docker\n2. push"), 0644))

	out, err := execute(t, "--no-history", "init", "demo", "--parent", parent, "--brain-dump", dump, "--stack", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "docker, go")
	assert.FileExists(t, filepath.Join(parent, "demo", ".agent", "workflows", "imported_deploy_steps.md"))
}

func TestInitCommand_DryRun(t *testing.T) {
	isolate(t)
	parent := t.TempDir()

	out, err := execute(t, "--no-history", "init", "preview", "--parent", parent, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "would create")
	assert.NoDirExists(t, filepath.Join(parent, "preview"))
}

func TestAssimilateAndHistory(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	dump := filepath.Join(root, "notes.md")
	require.NoError(t, os.WriteFile(dump, []byte("## Never commit secrets\nAlways use env vars."), 0644))

	out, err := execute(t, "assimilate", "--root", root, dump)
	require.NoError(t, err)
	assert.Contains(t, out, ".agent/rules/imported_never_commit_secrets.md")

	out, err = execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "assimilate")
	assert.Contains(t, out, root)
}

func TestHistoryCommand_Disabled(t *testing.T) {
	isolate(t)

	_, err := execute(t, "--no-history", "history")
	assert.EqualError(t, err, "history is disabled")
}

func TestKeywordsCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--no-history", "keywords", "--json")
	require.NoError(t, err)

	var kw struct {
		Categories map[string][]string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &kw))
	assert.Contains(t, kw.Categories["rules"], "never")
}

func TestServeRegistry(t *testing.T) {
	isolate(t)
	a := &app{}
	a.flags.noHistory = true
	require.NoError(t, a.setup(""))

	names := newRegistry(a.env).Names()
	assert.ElementsMatch(t, []string{"assimilate", "doctor", "init", "keywords", "health"}, names)
}

func TestInitCommand_Presets(t *testing.T) {
	isolate(t)
	parent := t.TempDir()

	out, err := execute(t, "--no-history", "init", "api", "--parent", parent, "--stack", "go",
		"--blueprint", "go-fiber", "--dry-run", "--save-preset", "backend")
	require.NoError(t, err)
	assert.Contains(t, out, "Preset backend saved")
	assert.NoDirExists(t, filepath.Join(parent, "api"))

	out, err = execute(t, "--no-history", "presets")
	require.NoError(t, err)
	assert.Equal(t, "backend\n", out)

	out, err = execute(t, "--no-history", "init", "--preset", "backend")
	require.NoError(t, err)
	assert.Contains(t, out, "blueprint: go-fiber")
	assert.DirExists(t, filepath.Join(parent, "api", "internal", "handlers"))

	out, err = execute(t, "--no-history", "init", "other", "--preset", "backend", "--stack", "docker")
	require.NoError(t, err)
	assert.Contains(t, out, "stack: docker, go")
	assert.DirExists(t, filepath.Join(parent, "other"))
}

func TestInitCommand_PresetErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "--no-history", "init", "--preset", "missing")
	assert.ErrorContains(t, err, "preset not found")

	_, err = execute(t, "--no-history", "init")
	assert.ErrorContains(t, err, "a project name is required")
}

func TestPresetsCommand_Empty(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--no-history", "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "No presets saved")
}

func TestBlueprintsCommand(t *testing.T) {
	out, err := execute(t, "blueprints")
	require.NoError(t, err)
	for _, name := range []string{"fastapi", "go-fiber", "nextjs", "rust-axum"} {
		assert.Contains(t, out, name)
	}
}
