package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGeneratesUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Put("bonne", "facture.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Put("bonne", "facture.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, strings.HasPrefix(first, "bonne_"))
	require.True(t, strings.HasSuffix(first, ".jpg"))

	data, err := os.ReadFile(filepath.Join(store.Root(), first))
	require.NoError(t, err)
	require.Equal(t, "a", string(data))
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put("bonne", "scan.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ref))
	require.NoError(t, store.Delete(ref)) // second delete must not error
	require.NoError(t, store.Delete("never-existed.png"))
}

func TestDeleteRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(dir, "..", "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	require.NoError(t, store.Delete("../victim.txt"))
	_, err = os.Stat(outside)
	require.NoError(t, err, "file outside the root must survive")
}

func TestURL(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080/uploads/x.jpg", store.URL("http://localhost:8080", "x.jpg"))
	require.Equal(t, "http://localhost:8080/uploads/x.jpg", store.URL("http://localhost:8080/", "x.jpg"))
}
