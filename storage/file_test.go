package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyToken, "abc.def.ghi"))
	require.NoError(t, store.Set(KeyUser, `{"email":"a@b.c"}`))

	// A fresh instance must see what the first one persisted.
	reopened := NewFileStore(path)
	token, ok, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, reopened.Delete(KeyToken))
	_, ok, err = reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	require.NoError(t, reopened.Delete("no_such_key"))
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	_, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearSessionKeepsTheme(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "tok"))
	require.NoError(t, store.Set(KeyUser, "usr"))
	require.NoError(t, store.Set(KeyTheme, "dark"))

	require.NoError(t, ClearSession(store))

	_, ok, _ := store.Get(KeyToken)
	assert.False(t, ok)
	_, ok, _ = store.Get(KeyUser)
	assert.False(t, ok)

	theme, ok, _ := store.Get(KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", theme)
}
