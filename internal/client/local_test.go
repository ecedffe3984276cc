package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreMissingFileIsEmpty(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "nested", "todos.json"))

	todos, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
	assert.NoError(t, s.Remove())
}

func TestLocalStoreSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todos.json")
	s := NewLocalStore(path)

	require.NoError(t, s.Save([]Todo{{ID: "1718000000000", Text: "Buy milk"}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	todos, err := s.Load()
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy milk", todos[0].Text)

	require.NoError(t, s.Remove())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := NewLocalStore(path).Load()
	assert.Error(t, err)
}
