package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
)

// JavaFileAdapter encapsulates Java parsing so the domain layer can focus on
// migration rules while delegating syntax details to an infrastructure
// component.
type JavaFileAdapter interface {
	// Parse builds a compilation unit from source bytes.
	Parse(ctx context.Context, path m.Path, src []byte) (*javaast.CompilationUnit, error)

	// Load reads, fingerprints and parses the file at path.
	Load(ctx context.Context, path m.Path) (*javaast.CompilationUnit, m.File, error)
}

// LocalJavaFileAdapter provides a concrete JavaFileAdapter backed by tree-sitter.
type LocalJavaFileAdapter struct {
	fs SourceFSAdapter
}

// NewLocalJavaFileAdapter constructs a LocalJavaFileAdapter reading through fs.
func NewLocalJavaFileAdapter(fs SourceFSAdapter) *LocalJavaFileAdapter {
	return &LocalJavaFileAdapter{fs: fs}
}

// Parse builds a compilation unit for the provided path/source pair.
func (a *LocalJavaFileAdapter) Parse(ctx context.Context, path m.Path, src []byte) (*javaast.CompilationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return javaast.Parse(string(path), src)
}

// Load reads the file, records its fingerprint and parses it.
func (a *LocalJavaFileAdapter) Load(ctx context.Context, path m.Path) (*javaast.CompilationUnit, m.File, error) {
	src, err := a.fs.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read java file", "path", path, "error", err)
		return nil, m.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	file := m.File{Path: path, Hash: Fingerprint(src)}

	unit, err := a.Parse(ctx, path, src)
	if err != nil {
		slog.Warn("Failed to parse java file", "path", path, "error", err)
		return nil, file, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return unit, file, nil
}
