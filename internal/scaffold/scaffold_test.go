package scaffold

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/logger"
)

func options(parent, name string) Options {
	return Options{
		Name:    name,
		Parent:  parent,
		Version: "test",
		Logger:  logger.Discard(),
		Assimilate: assimilate.Options{
			Now: func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) },
		},
	}
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestInit_GeneratesHealthyProject(t *testing.T) {
	parent := t.TempDir()
	opts := options(parent, "My App")
	opts.Stack = []string{"golang, docker"}

	res, err := Init(opts)
	require.NoError(t, err)

	assert.Equal(t, "My_App", res.Name)
	assert.Equal(t, filepath.Join(parent, "My_App"), res.Root)
	assert.Equal(t, []string{"docker", "go"}, res.Stack)
	assert.True(t, res.Report.Healthy())
	assert.Zero(t, res.Report.Counts.Missing)
	assert.Nil(t, res.Assimilation)

	assert.Contains(t, read(t, res.Root, ".agent/rules/01_tech_stack.md"), "Keywords Detected: docker, go")

	var desc doctor.Descriptor
	require.NoError(t, json.Unmarshal([]byte(read(t, res.Root, ".agent/manifest.json")), &desc))
	assert.Equal(t, "My_App", desc.Project)
	assert.Equal(t, []string{"docker", "go"}, desc.Stack)
}

func TestInit_WithBrainDump(t *testing.T) {
	opts := options(t.TempDir(), "kb")
	opts.BrainDump = "## Always validate input\nUse strict typing in our Django app.\n## Deploy steps\n1. build\n2. push"

	res, err := Init(opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"django", "python"}, res.Stack)
	require.NotNil(t, res.Assimilation)
	assert.Len(t, res.Assimilation.Artifacts, 2)
	assert.FileExists(t, filepath.Join(res.Root, ".agent", "rules", "imported_always_validate_input.md"))
	assert.FileExists(t, filepath.Join(res.Root, "context", "raw", "brain_dump_20261017T093000.md"))
	assert.True(t, res.Report.Healthy())
}

func TestInit_RerunKeepsEdits(t *testing.T) {
	parent := t.TempDir()
	res, err := Init(options(parent, "demo"))
	require.NoError(t, err)

	identity := filepath.Join(res.Root, ".agent", "rules", "00_identity.md")
	require.NoError(t, os.WriteFile(identity, []byte("# Edited\n"), 0644))
	require.NoError(t, os.Remove(filepath.Join(res.Root, ".agent", "rules", "03_git.md")))

	again, err := Init(options(parent, "demo"))
	require.NoError(t, err)
	require.Len(t, again.Actions, 1)
	assert.Equal(t, ".agent/rules/03_git.md", again.Actions[0].Entry.Path)
	assert.Equal(t, "# Edited\n", read(t, res.Root, ".agent/rules/00_identity.md"))
}

func TestInit_DryRunWritesNothing(t *testing.T) {
	parent := t.TempDir()
	opts := options(parent, "preview")
	opts.DryRun = true
	opts.BrainDump = "# Notes\nanything"

	res, err := Init(opts)
	require.NoError(t, err)

	assert.Len(t, res.Planned, doctor.DefaultManifest().Len())
	assert.Empty(t, res.Actions)
	assert.Nil(t, res.Assimilation)
	assert.NoDirExists(t, res.Root)
}

func TestInit_UnsafeNameFallsBack(t *testing.T) {
	parent := t.TempDir()

	res, err := Init(options(parent, "/etc/passwd"))
	require.NoError(t, err)
	assert.Equal(t, "antigravity-project", res.Name)
	assert.Equal(t, filepath.Join(parent, "antigravity-project"), res.Root)

	res, err = Init(options(parent, "../../escape"))
	require.NoError(t, err)
	assert.Equal(t, "escape", res.Name)
	assert.DirExists(t, filepath.Join(parent, "escape"))
}

func TestMergeStack(t *testing.T) {
	assert.Equal(t, []string{"node", "python"}, mergeStack([]string{"TypeScript", "python"}, []string{"python"}))
	assert.Nil(t, mergeStack(nil, nil))
}
