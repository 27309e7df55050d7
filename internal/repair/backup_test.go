package repair

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupStore_CreateAndRestore(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("original content\n"), 0o644))

	store := NewBackupStore(filepath.Join(dir, "backups"))

	backupPath, err := store.Create(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(backupPath), "app_"))
	assert.True(t, strings.HasSuffix(backupPath, ".py"))

	backed, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "original content\n", string(backed))

	// mutate, then roll back
	require.NoError(t, os.WriteFile(file, []byte("clobbered"), 0o644))
	require.NoError(t, store.Restore(file, backupPath))

	restored, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "original content\n", string(restored))
}

func TestBackupStore_CreateMissingSource(t *testing.T) {
	dir := t.TempDir()
	store := NewBackupStore(filepath.Join(dir, "backups"))

	_, err := store.Create(filepath.Join(dir, "nope.py"))
	assert.Error(t, err)
}

func TestBackupStore_RestoreMissingBackup(t *testing.T) {
	dir := t.TempDir()
	store := NewBackupStore(dir)

	err := store.Restore(filepath.Join(dir, "app.py"), filepath.Join(dir, "gone.py"))
	assert.Error(t, err)
}
