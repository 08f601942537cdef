package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// project is a Java source tree written to a temp dir and indexed.
type project struct {
	root  string
	fs    adapter.SourceFSAdapter
	java  adapter.JavaFileAdapter
	index *adapter.ProjectIndex
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	fs := adapter.NewLocalSourceFSAdapter()
	java := adapter.NewLocalJavaFileAdapter(fs)

	paths, err := fs.JavaFiles(context.Background(), []m.Path{m.Path(root + "/...")}, nil)
	require.NoError(t, err)

	index := adapter.NewProjectIndex(java)
	require.NoError(t, index.Build(context.Background(), paths, 2))

	return &project{root: root, fs: fs, java: java, index: index}
}

func (p *project) path(name string) m.Path {
	return m.Path(filepath.Join(p.root, filepath.FromSlash(name)))
}

func (p *project) load(t *testing.T, name string) *javaast.CompilationUnit {
	t.Helper()

	unit, _, err := p.java.Load(context.Background(), p.path(name))
	require.NoError(t, err)

	return unit
}

func (p *project) read(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(string(p.path(name)))
	require.NoError(t, err)

	return string(data)
}

// migrate runs find and apply over one file and returns the rewritten
// primary text with the secondary units.
func (p *project) migrate(t *testing.T, name string, opts ...Option) (string, []m.ChangeUnit) {
	t.Helper()

	unit := p.load(t, name)
	session := rewrite.NewSession(unit)
	orchestrator := NewOrchestrator(p.index, p.fs, opts...)

	var units []m.ChangeUnit

	for _, match := range NewFinder(p.index).Find(unit) {
		out, err := orchestrator.Apply(context.Background(), session, match)
		require.NoError(t, err)

		units = append(units, out...)
	}

	text, err := session.Bytes()
	require.NoError(t, err)

	return string(text), units
}

// applyUnit applies a change unit to the file it targets.
func (p *project) applyUnit(t *testing.T, unit m.ChangeUnit) string {
	t.Helper()

	base, err := os.ReadFile(string(unit.File))
	require.NoError(t, err)

	out, err := rewrite.Apply(base, unit.Edits)
	require.NoError(t, err)

	return string(out)
}

func parseText(t *testing.T, name, src string) *javaast.CompilationUnit {
	t.Helper()

	unit, err := javaast.Parse(name, []byte(src))
	require.NoError(t, err)

	return unit
}

func countOf(text, sub string) int {
	return strings.Count(text, sub)
}

func interfaceNames(decl *javaast.TypeDecl) []string {
	names := make([]string, 0, len(decl.Interfaces))
	for _, ref := range decl.Interfaces {
		names = append(names, ref.Name)
	}

	return names
}

func paramTypes(method *javaast.MethodDecl) []string {
	types := make([]string, 0, len(method.Params.Params))
	for _, param := range method.Params.Params {
		types = append(types, param.Type)
	}

	return types
}
