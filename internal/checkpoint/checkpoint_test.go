package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/dataset"
	"github.com/Veraticus/newscheck/internal/detector"
)

func trainModel(t *testing.T, seed uint64) *detector.Model {
	t.Helper()
	articles := dataset.Generate(dataset.GenerateOptions{Samples: 60, Seed: seed})
	m, err := detector.NewTrainer(detector.Options{Seed: seed}).TrainArticles(context.Background(), articles)
	require.NoError(t, err)
	return m
}

func setup(t *testing.T) (*Manager, string, *detector.Model) {
	t.Helper()
	artifact := filepath.Join(t.TempDir(), "model.json.gz")
	m := trainModel(t, 1)
	require.NoError(t, detector.Save(artifact, m))

	mgr, err := NewManager(artifact)
	require.NoError(t, err)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return mgr, artifact, m
}

func TestManager_CreateAndList(t *testing.T) {
	ctx := context.Background()
	mgr, _, m := setup(t)

	first, err := mgr.Create(ctx, "baseline", "first model")
	require.NoError(t, err)
	assert.Equal(t, "baseline", first.ID)
	assert.Equal(t, m.ID, first.ModelID)
	assert.InDelta(t, m.Metrics.Accuracy, first.Accuracy, 1e-12)
	assert.Positive(t, first.FileSize)
	assert.False(t, first.IsAuto)

	second, err := mgr.Create(ctx, "", "generated tag")
	require.NoError(t, err)
	assert.Contains(t, second.ID, "checkpoint-")

	_, err = mgr.Create(ctx, "baseline", "again")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	list, err := mgr.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "baseline", list[1].ID)

	got, err := mgr.Get(ctx, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "first model", got.Description)

	_, err = mgr.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestManager_CreateWithoutArtifact(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "model.json.gz"))
	require.NoError(t, err)

	_, err = mgr.Create(context.Background(), "tag", "")
	assert.ErrorIs(t, err, detector.ErrArtifactNotFound)

	info, err := mgr.AutoCheckpoint(context.Background(), "train")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()
	mgr, artifact, original := setup(t)

	_, err := mgr.Create(ctx, "v1", "")
	require.NoError(t, err)

	replacement := trainModel(t, 2)
	require.NoError(t, detector.Save(artifact, replacement))

	require.NoError(t, mgr.Restore(ctx, "v1"))
	restored, err := detector.Load(artifact)
	require.NoError(t, err)
	assert.Equal(t, original.ID, restored.ID)

	assert.ErrorIs(t, mgr.Restore(ctx, "nope"), ErrCheckpointNotFound)
}

func TestManager_RestoreCorrupted(t *testing.T) {
	ctx := context.Background()
	mgr, artifact, original := setup(t)

	_, err := mgr.Create(ctx, "v1", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mgr.artifactFile("v1"), []byte("garbage"), 0o600))

	assert.ErrorIs(t, mgr.Restore(ctx, "v1"), ErrCheckpointCorrupted)

	current, err := detector.Load(artifact)
	require.NoError(t, err)
	assert.Equal(t, original.ID, current.ID, "artifact untouched")
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	mgr, _, _ := setup(t)

	_, err := mgr.Create(ctx, "v1", "")
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, "v1"))

	list, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, mgr.Delete(ctx, "v1"), ErrCheckpointNotFound)
}

func TestManager_InvalidTags(t *testing.T) {
	ctx := context.Background()
	mgr, _, _ := setup(t)

	for _, tag := range []string{"../escape", "a/b", `a\b`} {
		_, err := mgr.Create(ctx, tag, "")
		assert.ErrorIs(t, err, ErrInvalidTag, tag)
		assert.ErrorIs(t, mgr.Restore(ctx, tag), ErrInvalidTag, tag)
		assert.ErrorIs(t, mgr.Delete(ctx, tag), ErrInvalidTag, tag)
	}
}

func TestManager_AutoCheckpointRetention(t *testing.T) {
	ctx := context.Background()
	mgr, _, _ := setup(t)

	_, err := mgr.Create(ctx, "manual", "")
	require.NoError(t, err)

	for range maxAutoCheckpoints + 3 {
		info, err := mgr.AutoCheckpoint(ctx, "train")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.True(t, info.IsAuto)
	}

	list, err := mgr.List(ctx)
	require.NoError(t, err)

	var auto, manual int
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		} else {
			manual++
		}
	}
	assert.Equal(t, maxAutoCheckpoints, auto)
	assert.Equal(t, 1, manual)
}
