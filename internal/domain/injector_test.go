package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

func TestInterfaceAnnotationInjector_AddInterface(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "no implements clause",
			src:  "class A {}",
			want: []string{"BeforeEachCallback"},
		},
		{
			name: "existing clause",
			src:  "class A implements Closeable {}",
			want: []string{"Closeable", "BeforeEachCallback"},
		},
		{
			name: "already implemented",
			src:  "class A implements BeforeEachCallback {}",
			want: []string{"BeforeEachCallback"},
		},
		{
			name: "already implemented, fully qualified",
			src:  "class A implements org.junit.jupiter.api.extension.BeforeEachCallback {}",
			want: []string{"org.junit.jupiter.api.extension.BeforeEachCallback"},
		},
	}

	qn := m.ExtensionPackage + ".BeforeEachCallback"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := parseText(t, "A.java", tt.src)
			session := rewrite.NewSession(unit)
			injector := NewInterfaceAnnotationInjector()

			injector.AddInterface(session, unit.Types[0], qn)
			assert.False(t, injector.AddInterface(session, unit.Types[0], qn), "second injection is a no-op")

			out, err := session.Bytes()
			require.NoError(t, err)

			decl := parseText(t, "A.java", string(out)).Types[0]
			assert.Equal(t, tt.want, interfaceNames(decl))
		})
	}
}

func TestInterfaceAnnotationInjector_AddAnnotation(t *testing.T) {
	src := `import org.junit.jupiter.api.extension.RegisterExtension;

class A {
    @RegisterExtension
    public Server server = new Server();

    public Server other = new Server();
}
`
	unit := parseText(t, "A.java", src)
	session := rewrite.NewSession(unit)
	injector := NewInterfaceAnnotationInjector()
	fields := unit.Types[0].Fields

	assert.False(t, injector.AddAnnotation(session, fields[0].Modifiers, m.RegisterExtension))
	assert.True(t, injector.AddAnnotation(session, fields[1].Modifiers, m.RegisterExtension))
	assert.False(t, injector.AddAnnotation(session, fields[1].Modifiers, m.RegisterExtension))

	out, err := session.Bytes()
	require.NoError(t, err)

	text := string(out)
	assert.Equal(t, 2, countOf(text, "@RegisterExtension"))
	assert.Equal(t, 1, countOf(text, "import org.junit.jupiter.api.extension.RegisterExtension;"))
	assert.Contains(t, text, "@RegisterExtension public Server other")
}
