package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/rulemig/internal/model"
)

// footerHeight is the number of lines the pager reserves below the viewport.
const footerHeight = 2

// TUI implements UI for interactive terminals. Output is collected while
// the command runs and shown in a scrollable pager on Close when it does not
// fit the screen.
type TUI struct {
	output io.Writer
	buffer bytes.Buffer
	inner  *SimpleUI
	width  int
	height int
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	t := &TUI{output: output}
	t.inner = &SimpleUI{out: &t.buffer}

	if f, ok := output.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			t.width = width
			t.height = height
		}
	}

	return t
}

// NewUI picks the TUI for terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(f.Fd())
}

// Start initializes the UI.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	t.buffer.Reset()

	return t.inner.Start(ctx, options...)
}

// Close flushes collected output, paging it when it is taller than the screen.
func (t *TUI) Close(ctx context.Context) {
	defer t.buffer.Reset()

	content := t.buffer.String()
	if content == "" {
		return
	}

	if ctx.Err() != nil || !t.needsPager(content) {
		_, _ = io.WriteString(t.output, content)
		return
	}

	title := "rulemig migrate"
	if t.inner.config.mode == ModeList {
		title = "rulemig list"
	}

	program := tea.NewProgram(
		newPagerModel(title, content, t.width, t.height),
		tea.WithOutput(t.output),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		_, _ = io.WriteString(t.output, content)
	}
}

func (t *TUI) needsPager(content string) bool {
	if t.height <= footerHeight {
		return false
	}

	return strings.Count(content, "\n") > t.height-footerHeight
}

// DisplayMatches collects the match table.
func (t *TUI) DisplayMatches(ctx context.Context, matches []m.Match, err error) error {
	return t.inner.DisplayMatches(ctx, matches, err)
}

// DisplayIndexInfo collects the indexing line.
func (t *TUI) DisplayIndexInfo(ctx context.Context, files int, jobs int) {
	t.inner.DisplayIndexInfo(ctx, files, jobs)
}

// DisplayDiff collects one file's diff.
func (t *TUI) DisplayDiff(ctx context.Context, file m.Path, diff string) {
	t.inner.DisplayDiff(ctx, file, diff)
}

// DisplaySummary collects the run summary.
func (t *TUI) DisplaySummary(ctx context.Context, report m.RunReport) {
	t.inner.DisplaySummary(ctx, report)
}

// pagerModel is the Bubble Tea model scrolling over collected output.
type pagerModel struct {
	title    string
	viewport viewport.Model
	quitting bool
}

func newPagerModel(title, content string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-footerHeight, 1))
	vp.SetContent(content)

	return pagerModel{title: title, viewport: vp}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-footerHeight, 1)

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	footer := mutedStyle.Render(fmt.Sprintf("%s  %3.f%%  ↑/↓ scroll  q quit", pm.title, pm.viewport.ScrollPercent()*100))

	return pm.viewport.View() + "\n\n" + footer
}
