package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRoundtrip(t *testing.T) {
	storage := NewStorage(t.TempDir())

	handle, err := storage.Store([]byte("payload"), "submissions/1", "report.pdf")
	require.NoError(t, err)
	assert.Contains(t, handle, "submissions/1")
	assert.Contains(t, handle, ".pdf")

	data, err := storage.Fetch(handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, storage.Remove(handle))
	_, err = storage.Fetch(handle)
	assert.Error(t, err)
}

func TestStorageUniqueNames(t *testing.T) {
	storage := NewStorage(t.TempDir())

	first, err := storage.Store([]byte("a"), "dir", "same.txt")
	require.NoError(t, err)
	second, err := storage.Store([]byte("b"), "dir", "same.txt")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStorageRejectsTraversal(t *testing.T) {
	storage := NewStorage(t.TempDir())

	_, err := storage.Fetch("../outside")
	assert.Error(t, err)

	_, err = storage.Fetch("/etc/passwd")
	assert.Error(t, err)
}
