package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/rulemig/internal/model"
)

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#228B22"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC3333"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4682B4"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7A700"))
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd    *cobra.Command
	out    io.Writer
	config StartConfig
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, opt := range options {
		opt(&s.config)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayMatches prints the find stage result or error.
func (s *SimpleUI) DisplayMatches(ctx context.Context, matches []m.Match, err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("find error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderMatchTable(matches))

	return nil
}

func renderMatchTable(matches []m.Match) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Line", "Shape", "Scope", "Name"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	files := make(map[m.Path]bool)

	for _, match := range matches {
		files[match.File] = true
		table.Append([]string{
			string(match.File),
			fmt.Sprintf("%d", match.Line),
			string(match.Shape),
			match.Scope().Name,
			match.Name,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(files)),
		"", "", "",
		fmt.Sprintf("%d", len(matches)),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayIndexInfo shows how the project index is built.
func (s *SimpleUI) DisplayIndexInfo(ctx context.Context, files int, jobs int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Indexing %d file(s) with %d worker(s)\n", files, jobs)
}

// DisplayDiff prints the unified diff of one file.
func (s *SimpleUI) DisplayDiff(ctx context.Context, file m.Path, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if diff == "" {
		return
	}

	s.printf("%s\n", s.style(headerStyle, "File: "+string(file)))
	s.printf("%s\n", s.colorDiff(diff))
}

func (s *SimpleUI) colorDiff(diff string) string {
	if !s.config.color {
		return diff
	}

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = headerStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

// DisplaySummary prints the per-file outcome of a run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report m.RunReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("\n%s", renderSummaryTable(report))

	for _, file := range report.Files {
		for _, warning := range file.Warnings {
			s.printf("%s\n", s.style(warningStyle, "warning: "+warning))
		}
	}

	mode := "dry run, nothing written"
	if report.Write {
		mode = "files written"
	}

	s.printf("%s\n", s.style(mutedStyle, fmt.Sprintf("Run %s: %d file(s) changed (%s)", report.ID, report.Changed(), mode)))
}

func renderSummaryTable(report m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Status", "Matches", "Units", "Edits", "Rejected"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	matches, edits := 0, 0

	for _, file := range report.Files {
		matches += file.Matches
		edits += file.Edits

		table.Append([]string{
			string(file.File),
			string(file.Status),
			fmt.Sprintf("%d", file.Matches),
			fmt.Sprintf("%d", file.Units),
			fmt.Sprintf("%d", file.Edits),
			fmt.Sprintf("%d", file.Rejected),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(report.Files)),
		fmt.Sprintf("%d changed", report.Changed()),
		fmt.Sprintf("%d", matches),
		"",
		fmt.Sprintf("%d", edits),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) style(style lipgloss.Style, text string) string {
	if !s.config.color {
		return text
	}

	return style.Render(text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	out := s.out
	if out == nil {
		out = s.cmd.OutOrStdout()
	}

	_, _ = fmt.Fprintf(out, format, args...)
}
