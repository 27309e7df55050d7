package codescan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// excludeDirs are skipped during the full-tree walk: build output,
// VCS metadata, virtual environments, and the repair backup directory
var excludeDirs = map[string]bool{
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	".git":         true,
	"node_modules": true,
	"backups":      true,
}

// pythonFiles enumerates the files to analyze. With explicit paths it
// filters to .py files; otherwise it walks the whole tree under root.
func pythonFiles(root string, paths []string) ([]string, error) {
	if len(paths) > 0 {
		var files []string
		for _, p := range paths {
			if strings.HasSuffix(p, ".py") {
				files = append(files, p)
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries don't abort the batch
			return nil
		}
		if d.IsDir() {
			if excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
