package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/antigravity/internal/templates"
)

func mkdirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0755))
	}
}

func TestDiscoverLinks(t *testing.T) {
	parent := t.TempDir()
	mkdirs(t, parent, "api/.git", "web/.agent", "both/.agent", "both/.git", "plain/src", ".hidden/.git", "self/.git")
	require.NoError(t, os.WriteFile(filepath.Join(parent, "notes.txt"), nil, 0644))
	mkdirs(t, parent, "worktree")
	require.NoError(t, os.WriteFile(filepath.Join(parent, "worktree", ".git"), []byte("gitdir: ../api/.git"), 0644))

	links, err := DiscoverLinks(parent, "self")
	require.NoError(t, err)
	assert.Equal(t, []templates.Link{
		{Name: "api", Path: "../api", Kind: templates.LinkGitRepo},
		{Name: "both", Path: "../both", Kind: templates.LinkAgentProject},
		{Name: "web", Path: "../web", Kind: templates.LinkAgentProject},
		{Name: "worktree", Path: "../worktree", Kind: templates.LinkGitRepo},
	}, links)
}

func TestDiscoverLinks_MissingParent(t *testing.T) {
	links, err := DiscoverLinks(filepath.Join(t.TempDir(), "gone"), "self")
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestInit_WritesSiblingLinks(t *testing.T) {
	parent := t.TempDir()
	mkdirs(t, parent, "backend/.git")

	res, err := Init(options(parent, "frontend"))
	require.NoError(t, err)

	assert.Equal(t, []templates.Link{{Name: "backend", Path: "../backend", Kind: templates.LinkGitRepo}}, res.Links)
	assert.Contains(t, read(t, res.Root, ".agent/memory/links.md"), "- [backend](../backend): Git Repository")
}

func TestInit_NoSiblings(t *testing.T) {
	res, err := Init(options(t.TempDir(), "alone"))
	require.NoError(t, err)

	assert.Empty(t, res.Links)
	assert.Contains(t, read(t, res.Root, ".agent/memory/links.md"), "No sibling projects")
}
