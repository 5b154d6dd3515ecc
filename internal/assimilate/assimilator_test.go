package assimilate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/antigravity/internal/logger"
)

const exampleDump = "## Always validate input\nUse strict typing.\n## Deploy steps\n1. build\n2. push"

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

func newTestAssimilator(t *testing.T) *Assimilator {
	t.Helper()
	return New(Options{
		Rules:  exampleRules(t),
		Now:    fixedClock,
		Logger: logger.Discard(),
	})
}

func artifactPaths(r *Result) []string {
	out := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		out = append(out, a.RelativePath)
	}
	return out
}

func TestRun_Example(t *testing.T) {
	root := t.TempDir()

	result, err := newTestAssimilator(t).Run(exampleDump, root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		".agent/rules/imported_always_validate_input.md",
		".agent/workflows/imported_deploy_steps.md",
	}, artifactPaths(result))
	assert.Equal(t, 1, result.Counts[Rules])
	assert.Equal(t, 1, result.Counts[Workflows])
	assert.Zero(t, result.Defaulted)

	assert.Equal(t, "context/raw/brain_dump_20261017T093000.md", result.RawPath)
	assert.Equal(t, exampleDump, readFile(t, root, result.RawPath))
}

func TestRun_TwiceDisambiguates(t *testing.T) {
	root := t.TempDir()
	a := newTestAssimilator(t)

	first, err := a.Run(exampleDump, root)
	require.NoError(t, err)
	second, err := a.Run(exampleDump, root)
	require.NoError(t, err)

	assert.NotEqual(t, first.RawPath, second.RawPath)
	assert.Equal(t, exampleDump, readFile(t, root, second.RawPath))

	require.Len(t, second.Artifacts, 2)
	for _, art := range second.Artifacts {
		assert.True(t, strings.HasSuffix(art.RelativePath, "-2.md"), art.RelativePath)
	}
	for _, art := range first.Artifacts {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(art.RelativePath)))
	}
}

func TestRun_EmptyInputPreservesRawOnly(t *testing.T) {
	for _, raw := range []string{"", "  \n\t\n"} {
		root := t.TempDir()

		result, err := newTestAssimilator(t).Run(raw, root)
		require.NoError(t, err)
		assert.Empty(t, result.Artifacts)
		require.NotEmpty(t, result.RawPath)
		assert.Equal(t, raw, readFile(t, root, result.RawPath))

		_, err = os.Stat(filepath.Join(root, ".agent"))
		assert.True(t, os.IsNotExist(err))
	}
}

func TestRun_UnclassifiableGoesToDocs(t *testing.T) {
	root := t.TempDir()

	result, err := newTestAssimilator(t).Run("Team lunch is on Friday.\n# Parking\nLevel 3.", root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs/imported/imported_section_0.md",
		"docs/imported/imported_parking.md",
	}, artifactPaths(result))
	assert.Equal(t, 2, result.Defaulted)
}

func TestRun_DuplicateTitlesInOneDump(t *testing.T) {
	root := t.TempDir()

	result, err := newTestAssimilator(t).Run("# Deploy\nstep one\n# Deploy\nstep two", root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".agent/workflows/imported_deploy.md",
		".agent/workflows/imported_deploy-2.md",
	}, artifactPaths(result))
}

func TestRun_DetectsStack(t *testing.T) {
	root := t.TempDir()
	result, err := newTestAssimilator(t).Run("# Backend\nA FastAPI service behind Docker.", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"docker", "python"}, result.Stack)

	assert.Equal(t, "docs/imported/imported_tech_stack.md", result.TechDoc)
	assert.Len(t, result.Artifacts, 1)
	doc, err := os.ReadFile(filepath.Join(root, "docs", "imported", "imported_tech_stack.md"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "**Docker**")
	assert.Contains(t, string(doc), "API:")
}

func TestRun_NoStackNoTechDoc(t *testing.T) {
	result, err := newTestAssimilator(t).Run(exampleDump, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.TechDoc)
}

func TestTechDeepDive(t *testing.T) {
	doc := TechDeepDive([]string{"docker", "python", "react"},
		"This project uses FastAPI for the backend and React for the frontend.")

	for _, want := range []string{"Python", "Docker", "React", "API:", "Frontend:", "Backend:"} {
		assert.Contains(t, doc, want)
	}
	assert.NotContains(t, doc, "Standard project structure")
}

func TestTechDeepDive_NothingObserved(t *testing.T) {
	doc := TechDeepDive(nil, "Just some text.")
	assert.Contains(t, doc, "None detected")
	assert.Contains(t, doc, "Standard project structure")
}

func TestRun_PartialSuccessOnFilesystemError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".agent"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".agent", "workflows"), []byte("blocker"), 0644))

	result, err := newTestAssimilator(t).Run(exampleDump+"\n# Never again\nmust not", root)
	require.Error(t, err)

	var fsErr *FSError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, []string{".agent/rules/imported_always_validate_input.md"}, artifactPaths(result))
	assert.FileExists(t, filepath.Join(root, ".agent", "rules", "imported_always_validate_input.md"))
	assert.NoFileExists(t, filepath.Join(root, ".agent", "rules", "imported_never_again.md"))
	assert.NotEmpty(t, result.RawPath)
}

func TestRun_CustomRawDirMustStayInside(t *testing.T) {
	a := New(Options{RawDir: "../outside", Now: fixedClock, Logger: logger.Discard()})
	_, err := a.Run("x", t.TempDir())
	assert.Error(t, err)
}

func TestDetectStack(t *testing.T) {
	assert.Equal(t, []string{"node", "python"}, DetectStack("This is a sveltekit application with fastapi endpoint."))
	assert.Equal(t, []string{"node", "react"}, DetectStack("Frontend in React"))
	assert.Empty(t, DetectStack("This project uses alien-technology-x."))
}

func TestParseStack(t *testing.T) {
	assert.Equal(t, []string{"python", "react", "docker"}, ParseStack("Python, react  docker,python"))
	assert.Empty(t, ParseStack(""))
}

func TestRun_NeverTakesReservedCoreFile(t *testing.T) {
	root := t.TempDir()
	a := New(Options{Prefix: "00_", Now: fixedClock, Logger: logger.Discard()})

	res, err := a.Run("# Identity\nYou must always obey.\n", root)
	require.NoError(t, err)
	assert.Equal(t, []string{".agent/rules/00_identity-2.md"}, artifactPaths(res))
	assert.NoFileExists(t, filepath.Join(root, ".agent", "rules", "00_identity.md"))
}

func TestNameIndex_Reserve(t *testing.T) {
	n := NewNameIndex()
	n.Reserve(".agent/rules/00_identity.md", "docs/imported/imported_overview.md")

	assert.Equal(t, "00_identity-2.md", n.Next(".agent/rules", "00_", "identity"))
	assert.Equal(t, "imported_overview-2.md", n.Next("docs/imported", "imported_", "overview"))
	assert.Equal(t, "imported_identity.md", n.Next(".agent/rules", "imported_", "identity"))
}
