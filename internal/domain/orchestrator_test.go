package domain

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/rulemig/internal/adapter"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

const fooTestSource = `package p;

import org.junit.Rule;
import org.junit.Test;
import org.junit.rules.ExternalResource;

public class FooTest {
    @Rule
    public ExternalResource er = new ExternalResource() {
        @Override
        protected void before() throws Throwable {
            start();
        }

        @Override
        protected void after() {
            stop();
        }
    };

    @Test
    public void test() {
    }
}
`

const fooTestMigrated = `package p;

import org.junit.Test;
import org.junit.jupiter.api.extension.AfterEachCallback;
import org.junit.jupiter.api.extension.BeforeEachCallback;
import org.junit.jupiter.api.extension.ExtensionContext;
import org.junit.jupiter.api.extension.RegisterExtension;

public class FooTest {
    @RegisterExtension
    public %[1]s er = new %[1]s();

    @Test
    public void test() {
    }

    class %[1]s implements BeforeEachCallback, AfterEachCallback {
        public void beforeEach(ExtensionContext context) {
            start();
        }

        public void afterEach(ExtensionContext context) {
            stop();
        }
    }
}
`

func TestOrchestrator_AnonymousField(t *testing.T) {
	p := newProject(t, map[string]string{"p/FooTest.java": fooTestSource})
	unit := p.load(t, "p/FooTest.java")
	name := LiftedName("er", unit.Text(unit.Types[0].Fields[0].Creation.Body.Span))

	text, units := p.migrate(t, "p/FooTest.java")

	assert.Empty(t, units, "an anonymous subclass of the base touches no other file")
	assert.Equal(t, fmt.Sprintf(fooTestMigrated, name), text)
}

func TestOrchestrator_HierarchyAcrossFiles(t *testing.T) {
	p := newProject(t, chainFixture)

	text, units := p.migrate(t, "app/AppTest.java")

	assert.Contains(t, text, "@RegisterExtension\n    public Leaf leaf = new Leaf();")
	assert.Contains(t, text, "import org.junit.jupiter.api.extension.RegisterExtension;")
	assert.NotContains(t, text, "import org.junit.Rule;")

	require.Len(t, units, 3)
	assert.Equal(t, []m.Path{p.path("leaf/Leaf.java"), p.path("mid/Mid.java"), p.path("base/Base.java")},
		[]m.Path{units[0].File, units[1].File, units[2].File})

	for _, unit := range units {
		assert.False(t, unit.Primary)
		assert.Equal(t, "Migrate ExternalResource in "+filepath.Base(string(unit.File)), unit.Label)
	}

	leaf := p.applyUnit(t, units[0])
	assert.Contains(t, leaf, "public void afterEach(ExtensionContext context) {")
	assert.Contains(t, leaf, "super.afterEach(context);")
	assert.Contains(t, leaf, "class Leaf extends Mid {")

	mid := p.applyUnit(t, units[1])
	assert.Contains(t, mid, "public void beforeEach(ExtensionContext context) {")
	assert.Contains(t, mid, "super.beforeEach(context);")
	assert.NotContains(t, mid, "Throwable")

	base := p.applyUnit(t, units[2])
	assert.Contains(t, base, "public class Base implements BeforeEachCallback, AfterEachCallback {")
	assert.NotContains(t, base, "ExternalResource")
	assert.NotContains(t, base, "super.")
	assert.Contains(t, base, "public void beforeEach(ExtensionContext context) {")
	assert.Contains(t, base, "public void afterEach(ExtensionContext context) {")

	decl := parseText(t, "Base.java", base).Types[0]
	assert.Nil(t, decl.Superclass)
	assert.Equal(t, []string{"BeforeEachCallback", "AfterEachCallback"}, interfaceNames(decl))
}

func TestOrchestrator_CrossFileIsolation(t *testing.T) {
	p := newProject(t, chainFixture)

	before := map[string]string{}
	for name := range chainFixture {
		before[name] = p.read(t, name)
	}

	_, units := p.migrate(t, "app/AppTest.java")
	_, other := p.migrate(t, "app/OtherTest.java")

	for name, text := range before {
		assert.Equal(t, text, p.read(t, name), "%s is only changed through change units", name)
	}

	for _, unit := range append(units, other...) {
		assert.NotEqual(t, p.path("app/AppTest.java"), unit.File)
		assert.NotEqual(t, p.path("app/OtherTest.java"), unit.File)
	}

	require.Len(t, other, 2)

	// Both invocations computed the same edits for Mid and Base; the change
	// set folds them into one.
	changes, err := NewChangeSet(p.fs, t.TempDir(), nil)
	require.NoError(t, err)

	defer func() { _ = changes.Close() }()

	require.NoError(t, changes.Enqueue(units...))
	require.NoError(t, changes.Enqueue(other...))

	merged, err := changes.Merge()
	require.NoError(t, err)
	require.Len(t, merged, 3)

	for _, change := range merged {
		assert.Empty(t, change.Rejected, string(change.File))
	}

	out, err := merged[1].Result()
	require.NoError(t, err)
	assert.Equal(t, p.applyUnit(t, units[1]), string(out))
}

func TestOrchestrator_ClassRuleScope(t *testing.T) {
	p := newProject(t, map[string]string{
		"p/Server.java": `package p;

import org.junit.rules.ExternalResource;

public class Server extends ExternalResource {
    @Override
    protected void before() throws Throwable {
        boot();
    }
}
`,
		"p/ServerTest.java": `package p;

import org.junit.ClassRule;

public class ServerTest {
    @ClassRule
    public static Server server = new Server();
}
`,
	})

	text, units := p.migrate(t, "p/ServerTest.java")
	assert.Contains(t, text, "@RegisterExtension\n    public static Server server")
	assert.NotContains(t, text, "ClassRule")

	require.Len(t, units, 1)

	server := p.applyUnit(t, units[0])
	assert.Contains(t, server, "public class Server implements BeforeAllCallback, AfterAllCallback {")
	assert.Contains(t, server, "public void beforeAll(ExtensionContext context) {")
	assert.Contains(t, server, "public void afterAll(ExtensionContext context) {")
	assert.NotContains(t, server, "beforeEach")
}

func TestOrchestrator_NamedFieldRetype(t *testing.T) {
	p := newProject(t, map[string]string{
		"p/DbTest.java": `package p;

import org.junit.Rule;
import org.junit.rules.ExternalResource;

public class DbTest {
    @Rule
    public ExternalResource db = new Db();

    static class Db extends ExternalResource {
        @Override
        protected void after() {
            drop();
        }
    }
}
`,
	})

	text, units := p.migrate(t, "p/DbTest.java")
	assert.Empty(t, units)

	assert.Contains(t, text, "@RegisterExtension\n    public Db db = new Db();")
	assert.Contains(t, text, "static class Db implements BeforeEachCallback, AfterEachCallback {")
	assert.Contains(t, text, "public void afterEach(ExtensionContext context) {")
	assert.NotContains(t, text, "ExternalResource")

	decl := parseText(t, "DbTest.java", text).Types[0].MemberType("Db")
	require.NotNil(t, decl)
	assert.Len(t, decl.MethodsNamed("beforeEach"), 1)
}

func TestOrchestrator_ApplyIsIdempotentPerMatch(t *testing.T) {
	p := newProject(t, map[string]string{"p/FooTest.java": fooTestSource})
	unit := p.load(t, "p/FooTest.java")
	session := rewrite.NewSession(unit)
	orchestrator := NewOrchestrator(p.index, p.fs)

	matches := NewFinder(p.index).Find(unit)
	require.Len(t, matches, 1)

	_, err := orchestrator.Apply(context.Background(), session, matches[0])
	require.NoError(t, err)

	once, err := session.Bytes()
	require.NoError(t, err)

	_, err = orchestrator.Apply(context.Background(), session, matches[0])
	require.NoError(t, err)

	twice, err := session.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

func TestOrchestrator_UnresolvedBinding(t *testing.T) {
	p := newProject(t, map[string]string{"p/FooTest.java": fooTestSource})
	unit := p.load(t, "p/FooTest.java")
	session := rewrite.NewSession(unit)

	match := m.Match{File: p.path("p/FooTest.java"), Shape: m.ShapeNamedField, Name: "er", Field: unit.Types[0].Fields[0]}

	units, err := NewOrchestrator(p.index, p.fs).Apply(context.Background(), session, match)
	require.ErrorIs(t, err, ErrUnresolvedBinding)
	assert.Empty(t, units)

	edits, err := session.Edits()
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestOrchestrator_Cancelled(t *testing.T) {
	p := newProject(t, map[string]string{"p/FooTest.java": fooTestSource})
	unit := p.load(t, "p/FooTest.java")
	matches := NewFinder(p.index).Find(unit)
	require.Len(t, matches, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOrchestrator(p.index, p.fs).Apply(ctx, rewrite.NewSession(unit), matches[0])
	require.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_CollisionFailSkipsMatch(t *testing.T) {
	src := `package p;

import org.junit.Rule;
import org.junit.rules.ExternalResource;

public class FooTest {
    @Rule
    public ExternalResource er = new ExternalResource() {
        protected void before() {
            start();
        }
    };

    @Rule
    public ExternalResource Er = new ExternalResource() {
        protected void before() {
            start();
        }
    };
}
`
	p := newProject(t, map[string]string{"p/FooTest.java": src})
	unit := p.load(t, "p/FooTest.java")
	session := rewrite.NewSession(unit)
	orchestrator := NewOrchestrator(p.index, p.fs, WithCollisionPolicy(CollisionFail))

	matches := NewFinder(p.index).Find(unit)
	require.Len(t, matches, 2)

	_, err := orchestrator.Apply(context.Background(), session, matches[0])
	require.NoError(t, err)

	_, err = orchestrator.Apply(context.Background(), session, matches[1])
	require.ErrorIs(t, err, ErrNameCollision)

	suffixed, _ := p.migrate(t, "p/FooTest.java")
	name := LiftedName("er", unit.Text(unit.Types[0].Fields[0].Creation.Body.Span))
	assert.Contains(t, suffixed, "class "+name+" implements")
	assert.Contains(t, suffixed, "class "+name+"_2 implements")
}

func TestOrchestrator_SkipsUnresolvedMiddleLevel(t *testing.T) {
	p := newProject(t, chainFixture)
	require.NoError(t, os.Remove(string(p.path("mid/Mid.java"))))

	_, units := p.migrate(t, "app/AppTest.java")

	require.Len(t, units, 2)
	assert.Equal(t, []m.Path{p.path("leaf/Leaf.java"), p.path("base/Base.java")},
		[]m.Path{units[0].File, units[1].File})

	leaf := p.applyUnit(t, units[0])
	assert.Contains(t, leaf, "public void afterEach(ExtensionContext context) {")
	assert.Contains(t, leaf, "super.afterEach(context);")

	base := p.applyUnit(t, units[1])
	assert.Contains(t, base, "public class Base implements BeforeEachCallback, AfterEachCallback {")
}

// unreadableFS fails to read the file named deny.
type unreadableFS struct {
	adapter.SourceFSAdapter
	deny string
}

func (u unreadableFS) ReadFile(path m.Path) ([]byte, error) {
	if filepath.Base(string(path)) == u.deny {
		return nil, fs.ErrPermission
	}

	return u.SourceFSAdapter.ReadFile(path)
}

func TestOrchestrator_FlushSkipsUnreadableFile(t *testing.T) {
	p := newProject(t, chainFixture)
	p.fs = unreadableFS{SourceFSAdapter: p.fs, deny: "Mid.java"}

	text, units := p.migrate(t, "app/AppTest.java")
	assert.Contains(t, text, "@RegisterExtension\n    public Leaf leaf = new Leaf();")

	require.Len(t, units, 2)
	assert.Equal(t, []m.Path{p.path("leaf/Leaf.java"), p.path("base/Base.java")},
		[]m.Path{units[0].File, units[1].File})
}
