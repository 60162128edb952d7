// Package fs provides file system adapters for walking and hashing sources.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/percolate/internal/core/domain"
)

// skippedDirectories are never descended into.
var skippedDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Walker provides source discovery.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkSources yields the paths of all CoffeeScript sources under root, relative to root
// and slash separated. Directories whose absolute path is listed in skip are not entered,
// which keeps the artifact directory out of the walk when it lives under the source root.
func (w *Walker) WalkSources(root string, skip ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are skipped rather than aborting the walk.
				return nil //nolint:nilerr // Intentional
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(path, d.Name(), skip) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(d.Name(), domain.SourceExt) {
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil //nolint:nilerr // Path is always under root
			}

			if !yield(filepath.ToSlash(rel)) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(path, name string, skip []string) bool {
	if skippedDirectories[name] {
		return true
	}
	for _, s := range skip {
		if filepath.Clean(s) == path {
			return true
		}
	}
	return false
}
