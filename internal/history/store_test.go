package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/doctor"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	started := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	id, err := s.Record(Run{
		Kind:      KindAssimilate,
		Root:      "/work/demo",
		StartedAt: started,
		RawPath:   "context/raw/brain_dump_20261017T093000.md",
		Healthy:   true,
		Files: []File{
			{Path: ".agent/rules/imported_x.md", Category: "rules", Action: "created", Score: 3},
			{Path: "docs/imported/imported_y.md", Category: "docs", Action: "created"},
		},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	run, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, KindAssimilate, run.Kind)
	assert.True(t, run.StartedAt.Equal(started))
	assert.True(t, run.Healthy)
	require.Len(t, run.Files, 2)
	assert.Equal(t, 3, run.Files[0].Score)

	byPrefix, err := s.Get(id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, byPrefix.ID)
}

func TestGet_NotFound(t *testing.T) {
	_, err := openStore(t).Get("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestList_NewestFirst(t *testing.T) {
	s := openStore(t)
	for _, kind := range []Kind{KindInit, KindDoctor, KindAssimilate} {
		_, err := s.Record(Run{Kind: kind, Root: "/r"})
		require.NoError(t, err)
	}

	runs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, KindAssimilate, runs[0].Kind)
	assert.Equal(t, KindInit, runs[2].Kind)
	assert.Nil(t, runs[0].Files)

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(Run{Kind: KindDoctor, Root: "/r"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestFromAssimilation(t *testing.T) {
	res := &assimilate.Result{
		RawPath: "context/raw/brain_dump_x.md",
		Artifacts: []assimilate.Artifact{
			{RelativePath: ".agent/workflows/imported_deploy.md", Category: assimilate.Workflows, Score: 2},
		},
		Defaulted: 0,
	}

	run := FromAssimilation("/r", res, nil)
	assert.True(t, run.Healthy)
	assert.Equal(t, "1 artifacts, 0 skipped, 0 defaulted to docs", run.Summary)
	require.Len(t, run.Files, 1)
	assert.Equal(t, "workflows", run.Files[0].Category)

	failed := FromAssimilation("/r", res, errors.New("disk full"))
	assert.False(t, failed.Healthy)
	assert.Equal(t, "disk full", failed.Error)
}

func TestFromDoctor(t *testing.T) {
	root := t.TempDir()
	manifest := doctor.MustManifest(doctor.ManifestEntry{Path: "docs", Kind: doctor.Directory, Required: true})

	res, err := doctor.New(manifest, nil, nil).Run(root, true)
	require.NoError(t, err)

	run := FromDoctor(KindDoctor, root, res, nil)
	assert.True(t, run.Healthy)
	require.Len(t, run.Files, 1)
	assert.Equal(t, "docs", run.Files[0].Path)
	assert.Equal(t, string(doctor.CreatedDir), run.Files[0].Action)
}
