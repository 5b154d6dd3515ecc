package assimilate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/antigravity/internal/pathguard"
)

func newTestWriter(root string) *Writer {
	return NewWriter(root, DefaultLayout(), "", pathguard.Default(), nil)
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestWriter_Materialize(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	c := Classification{
		Section:  Section{Title: "Always validate input", Body: "Use strict typing."},
		Category: Rules,
		Score:    1,
	}
	artifact, skipped, err := w.Materialize(c)
	require.NoError(t, err)
	require.Nil(t, skipped)

	assert.Equal(t, ".agent/rules/imported_always_validate_input.md", artifact.RelativePath)
	assert.Equal(t, Rules, artifact.Category)

	content := readFile(t, root, artifact.RelativePath)
	assert.Contains(t, content, "# Always validate input\n")
	assert.Contains(t, content, "Use strict typing.")
	assert.Contains(t, content, "category=rules")
}

func TestWriter_DisambiguatesWithinRun(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	var paths []string
	for i := 0; i < 3; i++ {
		a, _, err := w.Materialize(Classification{
			Section:  Section{Title: "Notes", Body: "body", Order: i},
			Category: Docs,
		})
		require.NoError(t, err)
		paths = append(paths, a.RelativePath)
	}

	assert.Equal(t, []string{
		"docs/imported/imported_notes.md",
		"docs/imported/imported_notes-2.md",
		"docs/imported/imported_notes-3.md",
	}, paths)
}

func TestWriter_NeverOverwritesExistingFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".agent", "workflows")
	require.NoError(t, os.MkdirAll(dir, 0755))
	existing := filepath.Join(dir, "imported_deploy.md")
	require.NoError(t, os.WriteFile(existing, []byte("hand edited"), 0644))

	w := newTestWriter(root)
	a, _, err := w.Materialize(Classification{
		Section:  Section{Title: "Deploy", Body: "steps"},
		Category: Workflows,
		Score:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, ".agent/workflows/imported_deploy-2.md", a.RelativePath)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "hand edited", string(data))
}

func TestWriter_ExclusiveCreateCatchesUnseenFiles(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	_, _, err := w.Materialize(Classification{Section: Section{Title: "seed", Body: "x"}, Category: Docs})
	require.NoError(t, err)

	// Appears after the directory listing was cached.
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "imported", "imported_late.md"), []byte("late"), 0644))

	a, _, err := w.Materialize(Classification{Section: Section{Title: "Late", Body: "y"}, Category: Docs})
	require.NoError(t, err)
	assert.Equal(t, "docs/imported/imported_late-2.md", a.RelativePath)
	assert.Equal(t, "late", readFile(t, root, "docs/imported/imported_late.md"))
}

func TestWriter_EmptyTitleUsesOrdinal(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	a, _, err := w.Materialize(Classification{
		Section:  Section{Title: "", Body: "preamble text", Order: 0},
		Category: Docs,
	})
	require.NoError(t, err)
	assert.Equal(t, "docs/imported/imported_section_0.md", a.RelativePath)
	assert.NotContains(t, readFile(t, root, a.RelativePath), "\n# ")
}

func TestWriter_TraversalTitleStaysInside(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	a, _, err := w.Materialize(Classification{
		Section:  Section{Title: "../../../etc/passwd", Body: "nope"},
		Category: Rules,
	})
	require.NoError(t, err)
	assert.Equal(t, ".agent/rules/imported_etcpasswd.md", a.RelativePath)

	b, _, err := w.Materialize(Classification{
		Section:  Section{Title: "/etc/shadow", Body: "nope", Order: 7},
		Category: Rules,
	})
	require.NoError(t, err)
	assert.Equal(t, ".agent/rules/imported_section_7.md", b.RelativePath)
}

func TestWriter_SkipsDegenerateSection(t *testing.T) {
	w := newTestWriter(t.TempDir())

	a, skipped, err := w.Materialize(Classification{Section: Section{Order: 3}, Category: Docs})
	require.NoError(t, err)
	assert.Nil(t, a)
	require.NotNil(t, skipped)
	assert.Equal(t, 3, skipped.Order)
}

func TestWriter_EmptyBodyStillWritten(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(root)

	a, skipped, err := w.Materialize(Classification{Section: Section{Title: "Heading only"}, Category: Docs})
	require.NoError(t, err)
	assert.Nil(t, skipped)
	assert.Contains(t, readFile(t, root, a.RelativePath), "# Heading only")
}

func TestWriter_FilesystemErrorIsTyped(t *testing.T) {
	root := t.TempDir()
	// A regular file where the rules directory should be.
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".agent"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".agent", "rules"), []byte("x"), 0644))

	w := newTestWriter(root)
	_, _, err := w.Materialize(Classification{Section: Section{Title: "Must", Body: "x"}, Category: Rules})
	require.Error(t, err)

	var fsErr *FSError
	assert.ErrorAs(t, err, &fsErr)
}
