package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileKVStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	store, err := NewFileKVStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileKVStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))
	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v))

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":2}`)))
	v, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(v))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestFileKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, path := newTestFileStore(t)
	require.NoError(t, store.Set(ctx, "user", []byte(`{"email":"a@b.co"}`)))

	reopened, err := NewFileKVStore(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.co"}`, string(v))
}

func TestFileKVStoreRejectsInvalidJSON(t *testing.T) {
	store, _ := newTestFileStore(t)
	err := store.Set(context.Background(), "k", []byte("not json"))
	assert.Error(t, err)
}

func TestNewFileKVStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	_, err := NewFileKVStore(path)
	assert.Error(t, err)
}
