package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/rulemig/internal/model"
)

var chainFixture = map[string]string{
	"base/Base.java": `package base;

import org.junit.rules.ExternalResource;

public class Base extends ExternalResource {
    @Override
    protected void before() throws Throwable {
        open();
    }

    @Override
    protected void after() {
        close();
    }
}
`,
	"mid/Mid.java": `package mid;

import base.Base;

public class Mid extends Base {
    @Override
    protected void before() throws Throwable {
        super.before();
        seed();
    }
}
`,
	"leaf/Leaf.java": `package leaf;

import mid.Mid;

public class Leaf extends Mid {
    @Override
    protected void after() {
        drop();
        super.after();
    }
}
`,
	"app/AppTest.java": `package app;

import leaf.Leaf;
import org.junit.Rule;
import org.junit.Test;

public class AppTest {
    @Rule
    public Leaf leaf = new Leaf();

    @Test
    public void works() {
    }
}
`,
	"app/OtherTest.java": `package app;

import mid.Mid;
import org.junit.Rule;

public class OtherTest {
    @Rule
    public Mid mid = new Mid();
}
`,
}

func TestHierarchyWalker_Walk(t *testing.T) {
	p := newProject(t, chainFixture)
	unit := p.load(t, "app/AppTest.java")
	walker := NewHierarchyWalker(p.index, unit, nil)

	leaf, ok := p.index.ResolveType(unit, unit.Types[0], unit.Types[0].Fields[0].Type)
	require.True(t, ok)

	entries := walker.Walk(context.Background(), leaf)
	require.Len(t, entries, 3)

	names := []string{}
	for _, entry := range entries {
		require.True(t, entry.Resolved(), entry.Binding.QualifiedName)
		names = append(names, entry.Decl.QualifiedName())
	}

	assert.Equal(t, []string{"leaf.Leaf", "mid.Mid", "base.Base"}, names)
	assert.Same(t, entries[1], entries[0].Parent)
	assert.Same(t, entries[2], entries[1].Parent)
	assert.Nil(t, entries[2].Parent)
	assert.False(t, entries[0].DirectlyExtendsBase())
	assert.True(t, entries[2].DirectlyExtendsBase())
	assert.Equal(t, string(p.path("base/Base.java")), entries[2].Unit.Path)

	again := walker.Walk(context.Background(), leaf)
	require.Len(t, again, 3)
	assert.Same(t, entries[1].Decl, again[1].Decl, "lookups are memoized per walker")
}

func TestHierarchyWalker_Boundaries(t *testing.T) {
	p := newProject(t, map[string]string{
		"LoopA.java": "package p;\n\npublic class LoopA extends LoopB {\n}\n",
		"LoopB.java": "package p;\n\npublic class LoopB extends LoopA {\n}\n",
	})
	unit := p.load(t, "LoopA.java")
	walker := NewHierarchyWalker(p.index, unit, nil)

	t.Run("base yields nothing", func(t *testing.T) {
		assert.Empty(t, walker.Walk(context.Background(), m.TypeBinding{QualifiedName: m.ExternalResource}))
		assert.Empty(t, walker.Walk(context.Background(), m.TypeBinding{}))
	})

	t.Run("library type is unresolved", func(t *testing.T) {
		entries := walker.Walk(context.Background(), m.TypeBinding{QualifiedName: m.TemporaryFolder, Superclass: m.ExternalResource})
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Resolved())
	})

	t.Run("cycle terminates", func(t *testing.T) {
		start, ok := NewSyntaxFacts(p.index).SelfBinding(unit, unit.Types[0])
		require.True(t, ok)

		entries := walker.Walk(context.Background(), start)
		assert.Len(t, entries, 2)
	})
}
