package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/rulemig/internal/model"
)

func TestTUI_CloseFlushesShortOutput(t *testing.T) {
	out := &bytes.Buffer{}
	ui := NewTUI(out)

	require.NoError(t, ui.Start(context.Background(), WithMigrateMode()))
	ui.DisplayIndexInfo(context.Background(), 4, 2)
	ui.DisplayDiff(context.Background(), "A.java", "--- a/A.java\n+++ b/A.java\n-x\n+y\n")

	assert.Empty(t, out.String(), "output is held until Close")

	ui.Close(context.Background())

	assert.Contains(t, out.String(), "Indexing 4 file(s) with 2 worker(s)")
	assert.Contains(t, out.String(), "File: A.java")
	assert.Contains(t, out.String(), "+y")
}

func TestTUI_NeedsPager(t *testing.T) {
	ui := NewTUI(&bytes.Buffer{})
	content := strings.Repeat("line\n", 30)

	assert.False(t, ui.needsPager(content), "unknown terminal size never pages")

	ui.height = 40
	assert.False(t, ui.needsPager(content))

	ui.height = 20
	assert.True(t, ui.needsPager(content))
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestPagerModel(t *testing.T) {
	content := strings.Repeat("row\n", 50)
	model := newPagerModel("rulemig list", content, 80, 12)

	assert.Equal(t, 10, model.viewport.Height)
	assert.Contains(t, model.View(), "rulemig list")

	next, cmd := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)
	assert.Equal(t, 28, next.(pagerModel).viewport.Height)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.True(t, next.(pagerModel).viewport.AtBottom())

	next, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestSimpleUI_DisplayMatches(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	ui := NewSimpleUI(cmd)
	require.NoError(t, ui.Start(context.Background(), WithListMode()))

	err := ui.DisplayMatches(context.Background(), []m.Match{
		{File: "a/FooTest.java", Line: 7, Shape: m.ShapeAnonymousField, Name: "er"},
		{File: "a/Server.java", Line: 3, Shape: m.ShapeClass, Name: "Server"},
	}, nil)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "FooTest.java")
	assert.Contains(t, text, "Server")
	assert.Contains(t, strings.ToUpper(text), "TOTAL FILES 2")
}

func TestSimpleUI_DisplaySummary(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	ui := NewSimpleUI(cmd)
	require.NoError(t, ui.Start(context.Background(), WithMigrateMode()))

	ui.DisplaySummary(context.Background(), m.RunReport{
		ID: "r1",
		Files: []m.FileReport{
			{File: "A.java", Status: m.StatusChanged, Matches: 1, Units: 1, Edits: 3,
				Warnings: []string{"edits from A.java depend on a rejected change to C.java"}},
			{File: "B.java", Status: m.StatusUnchanged},
		},
	})

	assert.Contains(t, out.String(), "Run r1: 1 file(s) changed (dry run, nothing written)")
	assert.Contains(t, out.String(), "warning: edits from A.java depend on a rejected change to C.java")
}

func TestSimpleUI_ColorDiff(t *testing.T) {
	ui := NewSimpleUI(&cobra.Command{})
	diff := "+added\n-removed"

	assert.Equal(t, diff, ui.colorDiff(diff), "plain output without color")

	require.NoError(t, ui.Start(context.Background(), WithColor(true)))
	assert.Contains(t, ui.colorDiff(diff), "added")
}
