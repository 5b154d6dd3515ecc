package templates

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasBuiltins(t *testing.T) {
	lib := Default()

	for _, key := range []string{KeyIdentity, KeyTechStack, KeyPlan, KeyGitSkill, KeyScratchpad, KeyBootstrap} {
		content, err := lib.Get(key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, content, key)
	}
	assert.False(t, lib.Has(KeyManifest))
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Default().Get("rules/99_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSet_OverridesEntry(t *testing.T) {
	lib := Empty()
	lib.Set(KeyManifest, `{"project":"demo"}`)

	got, err := lib.Get(KeyManifest)
	require.NoError(t, err)
	assert.Equal(t, `{"project":"demo"}`, got)
	assert.Equal(t, []string{KeyManifest}, lib.Keys())
}

func TestLoadOverridesFS(t *testing.T) {
	fsys := fstest.MapFS{
		"rules/00_identity.md": {Data: []byte("# Custom identity\n")},
		"workflows/triage.md":  {Data: []byte("# Triage\n")},
		"notes.txt":            {Data: []byte("ignored")},
	}

	lib := Default()
	n, err := lib.LoadOverridesFS(fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	identity, err := lib.Get(KeyIdentity)
	require.NoError(t, err)
	assert.Equal(t, "# Custom identity\n", identity)

	triage, err := lib.Get("workflows/triage")
	require.NoError(t, err)
	assert.Equal(t, "# Triage\n", triage)
	assert.False(t, lib.Has("notes"))
}

func TestLoadOverrides_MissingDirectory(t *testing.T) {
	n, err := Default().LoadOverrides(t.TempDir() + "/absent")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTechStackRule(t *testing.T) {
	assert.Contains(t, TechStackRule([]string{"go", "docker"}), "Keywords Detected: go, docker")
	assert.Contains(t, TechStackRule(nil), "none (general purpose)")
}
