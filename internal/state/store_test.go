package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pulse/internal/paths"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestEnsureFilesSeedsZeroRecord(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureFiles())

	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.Equal(t, 0.0, rec.Progress)
	assert.Nil(t, rec.Error)

	// A second call must not clobber an existing file.
	require.NoError(t, store.UpdateProgress("Task", "step", 0.5, UpdateOptions{}))
	require.NoError(t, store.EnsureFiles())
	rec, err = store.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, "Task", rec.TaskName)
}

func TestUpdateProgressClampsOnWrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpdateProgress("Task", "step", 1.8, UpdateOptions{}))
	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.Progress)

	require.NoError(t, store.UpdateProgress("Task", "step", -0.3, UpdateOptions{}))
	rec, err = store.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.Progress)
}

func TestUpdateProgressPreservesStartedAt(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpdateProgress("Task", "step 1", 0.1, UpdateOptions{}))
	first, err := store.ReadRecord()
	require.NoError(t, err)
	require.NotNil(t, first.StartedAt)

	require.NoError(t, store.UpdateProgress("Task", "step 2", 0.2, UpdateOptions{}))
	second, err := store.ReadRecord()
	require.NoError(t, err)
	require.NotNil(t, second.StartedAt)
	assert.Equal(t, *first.StartedAt, *second.StartedAt)
	assert.True(t, second.Active)
	assert.NotNil(t, second.PID)
	assert.NotNil(t, second.LastUpdate)
}

func TestCompleteTaskResets(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpdateProgress("Task", "step", 0.7, UpdateOptions{}))
	require.NoError(t, store.CompleteTask())

	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.Equal(t, 0.0, rec.Progress)
	assert.Empty(t, rec.TaskName)
	assert.Nil(t, rec.StartedAt)
	assert.Equal(t, PhaseIdle, DerivePhase(rec))
}

func TestFailArmsError(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Fail("Task", "Error occurred", 0.4, "disk full"))
	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.Equal(t, 0.4, rec.Progress)
	require.NotNil(t, rec.Error)
	assert.Equal(t, "disk full", *rec.Error)
	assert.Equal(t, PhaseError, DerivePhase(rec))
}

func TestReadRecordMissingFile(t *testing.T) {
	store := newTestStore(t)
	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, zeroRecord(), rec)
}

func TestClearStale(t *testing.T) {
	store := newTestStore(t)

	old := time.Now().UTC().Add(-10 * time.Minute).Format(time.RFC3339)
	require.NoError(t, store.WriteRecord(Record{
		Active:      true,
		TaskName:    "Task",
		CurrentStep: "step",
		Progress:    0.6,
		LastUpdate:  &old,
		Error:       strPtr("boom"),
	}))

	require.NoError(t, store.ClearStale(5*time.Minute))
	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.Equal(t, 0.6, rec.Progress)
	assert.Equal(t, "Task", rec.TaskName)
	require.NotNil(t, rec.Error, "a dead producer's failure stays visible")
	assert.Equal(t, "boom", *rec.Error)
}

func TestClearStaleLeavesFreshRecord(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpdateProgress("Task", "step", 0.5, UpdateOptions{}))
	require.NoError(t, store.ClearStale(5*time.Minute))

	rec, err := store.ReadRecord()
	require.NoError(t, err)
	assert.True(t, rec.Active)
}

func TestWriteIsAtomicRename(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpdateProgress("Task", "step", 0.5, UpdateOptions{}))

	// No temp file left behind.
	_, err := os.Stat(filepath.Join(store.Dir(), paths.ProgressFile+".tmp"))
	assert.True(t, os.IsNotExist(err))

	// File content is valid JSON with the documented keys.
	data, err := os.ReadFile(filepath.Join(store.Dir(), paths.ProgressFile))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"active", "task_name", "current_step", "progress", "error"} {
		assert.Contains(t, raw, key)
	}
}
