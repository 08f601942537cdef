package domain_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	controllermocks "gooze.dev/pkg/rulemig/internal/controller/mocks"
	domain "gooze.dev/pkg/rulemig/internal/domain"
	m "gooze.dev/pkg/rulemig/internal/model"
)

const examplesDir = "../../examples"

// copyExample copies an example project to a temp dir.
func copyExample(t *testing.T, name string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.CopyFS(root, os.DirFS(filepath.Join(examplesDir, name))))

	return root
}

// migrateInPlace runs a writing migration over root.
func migrateInPlace(t *testing.T, root string) m.RunReport {
	t.Helper()

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplayIndexInfo(mock.Anything, mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	report, err := newWorkflow(ui).Run(context.Background(), domain.RunArgs{
		Paths:    []m.Path{m.Path(root + "/...")},
		Jobs:     2,
		Write:    true,
		SpillDir: t.TempDir(),
	})
	require.NoError(t, err)

	for _, file := range report.Files {
		assert.NotEqual(t, m.StatusFailed, file.Status, "%s: %s", file.File, file.Error)
		assert.NotEqual(t, m.StatusRejected, file.Status, string(file.File))
	}

	return report
}

func readExample(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)

	return string(data)
}

func TestExamples(t *testing.T) {
	tests := []struct {
		name    string
		changed int
		check   func(t *testing.T, root string)
	}{
		{
			name:    "anonymous",
			changed: 1,
			check: func(t *testing.T, root string) {
				text := readExample(t, root, "src/test/java/demo/CacheTest.java")

				assert.NotContains(t, text, "ExternalResource")
				assert.NotContains(t, text, "import org.junit.Rule;")
				assert.Contains(t, text, "@RegisterExtension\n    public Warmup_")
				assert.Contains(t, text, "implements BeforeEachCallback, AfterEachCallback {")
				assert.Contains(t, text, "cache.load();")
				assert.Contains(t, text, "import static org.junit.Assert.assertTrue;")
			},
		},
		{
			name:    "named",
			changed: 1,
			check: func(t *testing.T, root string) {
				text := readExample(t, root, "src/test/java/demo/DatabaseTest.java")

				assert.Contains(t, text, "@RegisterExtension\n    public Schema schema = new Schema();")
				assert.Contains(t, text, "static class Schema implements BeforeEachCallback, AfterEachCallback {")
				assert.Contains(t, text, "public void afterEach(ExtensionContext context) {")
			},
		},
		{
			name:    "classrule",
			changed: 2,
			check: func(t *testing.T, root string) {
				test := readExample(t, root, "src/test/java/demo/ServerTest.java")
				assert.Contains(t, test, "@RegisterExtension\n    public static ServerResource server")

				resource := readExample(t, root, "src/main/java/demo/ServerResource.java")
				assert.Contains(t, resource, "public class ServerResource implements BeforeAllCallback, AfterAllCallback {")
				assert.Contains(t, resource, "public void beforeAll(ExtensionContext context) {")
				assert.Contains(t, resource, "public int port() {")
			},
		},
		{
			name:    "hierarchy",
			changed: 4,
			check: func(t *testing.T, root string) {
				base := readExample(t, root, "src/test/java/demo/rules/TempDirResource.java")
				assert.Contains(t, base, "public class TempDirResource implements BeforeEachCallback, AfterEachCallback {")

				mid := readExample(t, root, "src/test/java/demo/rules/FixtureResource.java")
				assert.Contains(t, mid, "super.beforeEach(context);")

				leaf := readExample(t, root, "src/test/java/demo/rules/RepositoryResource.java")
				assert.Contains(t, leaf, "super.afterEach(context);")
				assert.Contains(t, leaf, "extends FixtureResource {")
			},
		},
		{
			name:    "excluded",
			changed: 0,
			check: func(t *testing.T, root string) {
				text := readExample(t, root, "src/test/java/demo/FolderTest.java")
				assert.Contains(t, text, "@Rule\n    public TemporaryFolder folder")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := copyExample(t, tt.name)

			report := migrateInPlace(t, root)
			assert.Equal(t, tt.changed, report.Changed())
			tt.check(t, root)

			again := migrateInPlace(t, root)
			assert.Zero(t, again.Changed(), "migrated sources have nothing left to rewrite")
		})
	}
}
