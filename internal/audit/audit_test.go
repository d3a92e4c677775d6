// ABOUTME: Tests for the SQLite audit log
// ABOUTME: Uses a temporary database file per test

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestLog creates a temporary audit log for testing.
func setupTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		log.Close()
	})
	return log
}

func TestLog_RecordAndRecent(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	err := log.Record(ctx, Entry{
		Action:    ActionSetVariable,
		SessionID: "session-1",
		Subject:   "cli",
		Target:    "name",
	})
	require.NoError(t, err)

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, ActionSetVariable, entries[0].Action)
	assert.Equal(t, "session-1", entries[0].SessionID)
	assert.Equal(t, "cli", entries[0].Subject)
	assert.Equal(t, "name", entries[0].Target)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLog_RecentNewestFirst(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, action := range []Action{ActionCreateSession, ActionSetVariable, ActionDestroySession} {
		err := log.Record(ctx, Entry{
			Action:    action,
			SessionID: "session-1",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ActionDestroySession, entries[0].Action)
	assert.Equal(t, ActionCreateSession, entries[2].Action)
}

func TestLog_RecentHonorsLimit(t *testing.T) {
	log := setupTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(ctx, Entry{
			Action:    ActionSetVariable,
			SessionID: "session-1",
		}))
	}

	entries, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLog_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	log, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Record(ctx, Entry{Action: ActionCreateSession, SessionID: "s"}))
	require.NoError(t, log.Close())

	log, err = Open(path)
	require.NoError(t, err)
	defer log.Close()

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
