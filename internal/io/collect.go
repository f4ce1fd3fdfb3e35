package io

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Collect expands files and directories into an ordered, de-duplicated
// list of supported image paths. Directories are walked recursively.
// Surrounding whitespace and quotes are stripped from each raw path, as
// left behind by drag-and-drop or shell copy/paste; paths that do not
// exist are skipped.
func Collect(paths []string) []string {
	var images []string
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] || !IsSupported(path) {
			return
		}
		seen[path] = true
		images = append(images, path)
	}

	for _, raw := range paths {
		path := strings.Trim(strings.TrimSpace(raw), `"'`)
		if path == "" {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
	}

	return images
}
