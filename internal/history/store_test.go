package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRecentRuns(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	for i, kind := range []string{"audit", "repair", "optimize"} {
		err := store.RecordRun(ctx, &Run{
			ID:         uuid.New().String(),
			Kind:       kind,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Status:     "completed",
			Success:    i,
			Detail:     map[string]any{"index": float64(i)},
		})
		require.NoError(t, err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// newest first
	assert.Equal(t, "optimize", runs[0].Kind)
	assert.Equal(t, "repair", runs[1].Kind)
	assert.Equal(t, "audit", runs[2].Kind)
	assert.Equal(t, 2, runs[0].Success)
	assert.Equal(t, float64(2), runs[0].Detail["index"])
}

func TestStore_RecentRunsLimit(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, &Run{
			ID:         uuid.New().String(),
			Kind:       "audit",
			StartedAt:  time.Now().Add(time.Duration(i) * time.Second),
			FinishedAt: time.Now(),
			Status:     "completed",
		}))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_EmptyDetailRoundTrips(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.RecordRun(ctx, &Run{
		ID:         uuid.New().String(),
		Kind:       "repair",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Status:     "failed",
	}))

	runs, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Empty(t, runs[0].Detail)
}
