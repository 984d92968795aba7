package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteFileAtomic_CreatesAndReplaces verifies both the new-file and the
// overwrite path, and that no temp files are left behind.
func TestWriteFileAtomic_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.entity.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestWriteFileAtomic_RefusesReadOnly verifies the read-only guard.
func TestWriteFileAtomic_RefusesReadOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.entity.json")
	require.NoError(t, os.WriteFile(path, []byte("orig"), 0o400))

	err := WriteFileAtomic(path, []byte("new"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	got, _ := os.ReadFile(path)
	assert.Equal(t, "orig", string(got))
}

// TestWriteFileAtomic_MissingDirectory verifies that a temp file that cannot
// be created is reported.
func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "x.json"), []byte("x"))

	assert.Error(t, err)
}
