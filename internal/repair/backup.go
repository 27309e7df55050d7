package repair

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupStore copies files aside before the executor mutates them.
// Backups are named {stem}_{timestamp}{suffix} and retained
// indefinitely; they are only ever read back for same-run rollback.
type BackupStore struct {
	dir string
}

func NewBackupStore(dir string) *BackupStore {
	return &BackupStore{dir: dir}
}

// Create copies file into the backup directory and returns the backup
// path
func (b *BackupStore) Create(file string) (string, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	base := filepath.Base(file)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	backupPath := filepath.Join(b.dir, name)

	if err := copyFile(file, backupPath); err != nil {
		return "", fmt.Errorf("backing up %s: %w", file, err)
	}
	return backupPath, nil
}

// Restore copies a backup back over the original file. This pair is
// the sole correctness guarantee of the executor: mutations are
// unverified text rewrites, so any failure must leave the file
// byte-identical to its pre-repair content.
func (b *BackupStore) Restore(file, backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup %s missing: %w", backupPath, err)
	}
	// Replace whatever the failed repair left at the path rather than
	// writing through it
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing %s: %w", file, err)
	}
	return copyFile(backupPath, file)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
