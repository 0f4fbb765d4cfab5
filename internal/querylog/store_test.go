package querylog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "log.db"), maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t, 0)
	at := time.Date(2024, 5, 1, 10, 0, 0, 250_000_000, time.UTC)

	require.NoError(t, s.Record(models.QueryLogEntry{
		ProjectID: 1, TabName: "Query 1", Query: "select 1", Statement: "dml",
		ExecutedAt: at, Duration: 42 * time.Millisecond, RowCount: 1, Success: true,
	}))
	require.NoError(t, s.Record(models.QueryLogEntry{
		ProjectID: 1, Query: "drop table x", Statement: "ddl", Message: "bad request",
	}))
	require.NoError(t, s.Record(models.QueryLogEntry{ProjectID: 2, Query: "select 2"}))

	entries, err := s.Recent(1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "drop table x", entries[0].Query)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "bad request", entries[0].Message)

	first := entries[1]
	assert.Equal(t, "Query 1", first.TabName)
	assert.Equal(t, 42*time.Millisecond, first.Duration)
	assert.True(t, first.Success)
	assert.True(t, at.Equal(first.ExecutedAt))
}

func TestSearch(t *testing.T) {
	s := newTestStore(t, 0)
	for _, q := range []string{"select * from users", "select * from orders", "vacuum"} {
		require.NoError(t, s.Record(models.QueryLogEntry{ProjectID: 1, Query: q}))
	}

	entries, err := s.Search(1, "from", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = s.Search(1, "from", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "select * from orders", entries[0].Query)
}

func TestRecord_PrunesOldEntries(t *testing.T) {
	s := newTestStore(t, 3)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(models.QueryLogEntry{ProjectID: 1, Query: "q"}))
	}

	entries, err := s.Recent(1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 5, entries[0].ID)
}

func TestLocation(t *testing.T) {
	s := newTestStore(t, 0)

	_, ok, err := s.LoadLocation(1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveLocation(1, "/projects/1?history=1"))
	require.NoError(t, s.SaveLocation(1, "/projects/1?commit=4&history=1"))

	loc, ok, err := s.LoadLocation(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/projects/1?commit=4&history=1", loc)
}
