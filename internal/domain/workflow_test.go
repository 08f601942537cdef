package domain_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gooze.dev/pkg/rulemig/internal/adapter"
	controllermocks "gooze.dev/pkg/rulemig/internal/controller/mocks"
	domain "gooze.dev/pkg/rulemig/internal/domain"
	m "gooze.dev/pkg/rulemig/internal/model"
)

var workflowFixture = map[string]string{
	"src/Server.java": `package p;

import org.junit.rules.ExternalResource;

public class Server extends ExternalResource {
    @Override
    protected void before() throws Throwable {
        boot();
    }

    @Override
    protected void after() {
        halt();
    }
}
`,
	"src/ServerTest.java": `package p;

import org.junit.Rule;

public class ServerTest {
    @Rule
    public Server server = new Server();
}
`,
	"src/Util.java": `package p;

public class Util {
}
`,
	"build/Generated.java": `package gen;

import org.junit.rules.ExternalResource;

public class Generated extends ExternalResource {
}
`,
}

func writeWorkflowFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range workflowFixture {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func newWorkflow(ui *controllermocks.MockUI) domain.Workflow {
	fs := adapter.NewLocalSourceFSAdapter()

	return domain.NewWorkflow(fs, adapter.NewLocalJavaFileAdapter(fs), adapter.NewYAMLReportStore(fs), ui, nil)
}

func runArgs(t *testing.T, root string) domain.RunArgs {
	t.Helper()

	return domain.RunArgs{
		Paths:    []m.Path{m.Path(root + "/...")},
		Exclude:  []string{"**/build/**"},
		Jobs:     2,
		SpillDir: t.TempDir(),
	}
}

func TestWorkflow_Run_DryRun(t *testing.T) {
	root := writeWorkflowFixture(t)
	server := m.Path(filepath.Join(root, "src", "Server.java"))
	serverTest := m.Path(filepath.Join(root, "src", "ServerTest.java"))

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplayIndexInfo(mock.Anything, 3, 2).Return().Once()
	ui.EXPECT().DisplayDiff(mock.Anything, server, mock.MatchedBy(func(diff string) bool {
		return strings.Contains(diff, "+public class Server implements BeforeEachCallback, AfterEachCallback {")
	})).Return().Once()
	ui.EXPECT().DisplayDiff(mock.Anything, serverTest, mock.MatchedBy(func(diff string) bool {
		return strings.Contains(diff, "+    @RegisterExtension")
	})).Return().Once()
	ui.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	report, err := newWorkflow(ui).Run(context.Background(), runArgs(t, root))
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.Write)
	require.Len(t, report.Files, 3)

	assert.Equal(t, server, report.Files[0].File)
	assert.Equal(t, m.StatusChanged, report.Files[0].Status)
	assert.Zero(t, report.Files[0].Matches, "Server is reached through the ServerTest rule field")
	assert.Equal(t, 1, report.Files[0].Units)
	assert.Zero(t, report.Files[0].Rejected)

	assert.Equal(t, serverTest, report.Files[1].File)
	assert.Equal(t, m.StatusChanged, report.Files[1].Status)

	assert.Equal(t, m.StatusUnchanged, report.Files[2].Status)
	assert.Equal(t, 2, report.Changed())

	data, err := os.ReadFile(string(server))
	require.NoError(t, err)
	assert.Equal(t, workflowFixture["src/Server.java"], string(data), "dry run leaves files alone")
}

func TestWorkflow_Run_Write(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := writeWorkflowFixture(t)
	reportPath := m.Path(filepath.Join(t.TempDir(), "report.yaml"))

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplayIndexInfo(mock.Anything, 3, 2).Return().Once()
	ui.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	args := runArgs(t, root)
	args.Write = true
	args.Report = reportPath

	report, err := newWorkflow(ui).Run(context.Background(), args)
	require.NoError(t, err)
	assert.True(t, report.Write)

	server, err := os.ReadFile(filepath.Join(root, "src", "Server.java"))
	require.NoError(t, err)
	assert.Contains(t, string(server), "public class Server implements BeforeEachCallback, AfterEachCallback {")
	assert.Contains(t, string(server), "public void beforeEach(ExtensionContext context) {")
	assert.NotContains(t, string(server), "ExternalResource")

	serverTest, err := os.ReadFile(filepath.Join(root, "src", "ServerTest.java"))
	require.NoError(t, err)
	assert.Contains(t, string(serverTest), "@RegisterExtension\n    public Server server = new Server();")

	generated, err := os.ReadFile(filepath.Join(root, "build", "Generated.java"))
	require.NoError(t, err)
	assert.Equal(t, workflowFixture["build/Generated.java"], string(generated), "excluded paths are not migrated")

	saved, err := adapter.NewYAMLReportStore(adapter.NewLocalSourceFSAdapter()).LoadReport(reportPath)
	require.NoError(t, err)
	assert.Equal(t, report.ID, saved.ID)
	assert.Equal(t, 2, saved.Changed())
}

func TestWorkflow_List(t *testing.T) {
	root := writeWorkflowFixture(t)

	var shown []m.Match

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplayIndexInfo(mock.Anything, 3, 1).Return().Once()
	ui.EXPECT().DisplayMatches(mock.Anything, mock.Anything, nil).
		Run(func(_ context.Context, matches []m.Match, _ error) { shown = matches }).
		Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	matches, err := newWorkflow(ui).List(context.Background(), domain.ListArgs{
		Paths:   []m.Path{m.Path(root + "/...")},
		Exclude: []string{"**/build/**"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, matches, shown)

	assert.Equal(t, m.ShapeNamedField, matches[0].Shape)
	assert.Equal(t, "server", matches[0].Name)
	assert.Equal(t, "p.Server", matches[0].Start.QualifiedName)
}

func TestWorkflow_Run_Cancelled(t *testing.T) {
	root := writeWorkflowFixture(t)

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newWorkflow(ui).Run(ctx, runArgs(t, root))
	require.ErrorIs(t, err, context.Canceled)
}

func TestUnifiedDiff(t *testing.T) {
	diff := domain.UnifiedDiff("A.java", []byte("a\nb\n"), []byte("a\nc\n"))

	assert.Contains(t, diff, "--- a/A.java")
	assert.Contains(t, diff, "+++ b/A.java")
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+c")
}

func TestWorkflow_View(t *testing.T) {
	fs := adapter.NewLocalSourceFSAdapter()
	path := m.Path(filepath.Join(t.TempDir(), "report.yaml"))
	saved := m.RunReport{
		ID:    "run-1",
		Write: true,
		Files: []m.FileReport{{File: "A.java", Status: m.StatusChanged, Matches: 1, Units: 1, Edits: 4}},
	}
	require.NoError(t, adapter.NewYAMLReportStore(fs).SaveReport(path, saved))

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplaySummary(mock.Anything, mock.MatchedBy(func(report m.RunReport) bool {
		return report.ID == "run-1" && report.Changed() == 1
	})).Return().Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	report, err := newWorkflow(ui).View(context.Background(), domain.ViewArgs{Report: path})
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.ID)
}

func TestWorkflow_View_MissingReport(t *testing.T) {
	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	_, err := newWorkflow(ui).View(context.Background(), domain.ViewArgs{Report: m.Path(filepath.Join(t.TempDir(), "none.yaml"))})
	require.Error(t, err)
}

func TestWorkflow_Run_WarnsOnRejectedDependency(t *testing.T) {
	root := t.TempDir()

	files := map[string]string{
		"p/Mid.java": `package p;

import org.junit.rules.ExternalResource;

public class Mid extends ExternalResource {
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
		"p/T.java": `package p;

import org.junit.ClassRule;
import org.junit.Rule;
import org.junit.rules.ExternalResource;

public class T {
    @ClassRule
    public static Mid shared = new Mid();

    @Rule
    public ExternalResource each = new Mid() {
        @Override
        protected void after() {
            super.after();
        }
    };
}
`,
	}

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	ui := controllermocks.NewMockUI(t)
	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	ui.EXPECT().DisplayIndexInfo(mock.Anything, 2, 2).Return().Once()
	ui.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return().Once()
	ui.EXPECT().Close(mock.Anything).Return().Once()

	args := runArgs(t, root)
	args.Write = true

	report, err := newWorkflow(ui).Run(context.Background(), args)
	require.NoError(t, err)

	byName := map[string]m.FileReport{}
	for _, file := range report.Files {
		byName[filepath.Base(string(file.File))] = file
	}

	mid := byName["Mid.java"]
	assert.Equal(t, m.StatusRejected, mid.Status)
	assert.Equal(t, 1, mid.Rejected)
	assert.Empty(t, mid.Warnings)

	test := byName["T.java"]
	require.Len(t, test.Warnings, 1)
	assert.Contains(t, test.Warnings[0], "depend on a rejected change to "+filepath.Join(root, "p", "Mid.java"))
}
