package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Set(ctx, "SavedTasks", []byte(`[{"id":"a"}]`)))

	got, err := s.Get(ctx, "SavedTasks")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"a"}]`), got)

	// Overwrite replaces the whole blob.
	require.NoError(t, s.Set(ctx, "SavedTasks", []byte(`[]`)))
	got, err = s.Get(ctx, "SavedTasks")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, s.Delete(ctx, "SavedTasks"))
	_, err = s.Get(ctx, "SavedTasks")
	assert.ErrorIs(t, err, ErrNoKey)

	// Deleting an absent key is fine.
	assert.NoError(t, s.Delete(ctx, "SavedTasks"))
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	testStoreRoundTrip(t, s)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	src := []byte("hello")
	require.NoError(t, s.Set(ctx, "k", src))
	src[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got[0] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	testStoreRoundTrip(t, s)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "SavedTasks", []byte("persisted")))
	require.NoError(t, s.Close())

	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := s2.Get(ctx, "SavedTasks")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestFileStore_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "SavedTasks", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SavedTasks.dat", entries[0].Name())
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "../evil/key", []byte("v")))

	got, err := s.Get(ctx, "../evil/key")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// Nothing escaped the store directory.
	_, err = os.Stat(filepath.Join(dir, "..", "evil"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	defer s.Close()

	testStoreRoundTrip(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	ctx := context.Background()

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "SavedTasks", []byte("persisted")))
	require.NoError(t, s.Close())

	s2, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "SavedTasks")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
