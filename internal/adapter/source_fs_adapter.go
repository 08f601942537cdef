// Package adapter contains filesystem and parsing adapters for rulemig.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	m "gooze.dev/pkg/rulemig/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning user projects. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation limits itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// JavaFiles expands path patterns into a sorted list of .java files.
	// A trailing "/..." makes the walk recursive. Paths matching one of
	// the doublestar exclude globs are skipped.
	JavaFiles(ctx context.Context, patterns []m.Path, exclude []string) ([]m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// HashFile returns the xxhash64 fingerprint of the file at path.
	HashFile(path m.Path) (uint64, error)

	// FileInfo returns metadata for a path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Fingerprint returns the content fingerprint used by change units.
func Fingerprint(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// JavaFiles resolves path patterns to .java files.
func (a *LocalSourceFSAdapter) JavaFiles(ctx context.Context, patterns []m.Path, exclude []string) ([]m.Path, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	if len(patterns) == 0 {
		patterns = []m.Path{"./..."}
	}

	seen := make(map[m.Path]struct{})

	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(string(pattern))

		err := a.Walk(m.Path(root), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if excluded(root, path, exclude) {
				if info.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if info.IsDir() || filepath.Ext(path) != ".java" {
				return nil
			}

			seen[m.Path(filepath.Clean(path))] = struct{}{}

			return nil
		})
		if err != nil {
			slog.Error("Failed to walk source path", "path", root, "error", err)
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	files := make([]m.Path, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	return files, nil
}

func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if root, ok := strings.CutSuffix(pattern, "/..."); ok {
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return pattern, false
}

// excluded matches path, both as given and relative to the walk root,
// against the exclude globs.
func excluded(root, path string, patterns []string) bool {
	candidates := []string{filepath.ToSlash(filepath.Clean(path))}
	if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
		candidates = append(candidates, filepath.ToSlash(rel))
	}

	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return true
			}

			// Directories are tried with a trailing separator too so that
			// "**/build/**" prunes the build directory itself.
			if ok, _ := doublestar.Match(pattern, candidate+"/"); ok {
				return true
			}
		}
	}

	return false
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the xxhash64 fingerprint of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (uint64, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return 0, err
	}

	return Fingerprint(content), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}
