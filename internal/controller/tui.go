package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

// Header and footer lines around the pager viewport.
const pagerChromeLines = 2

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	problemStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	diffHunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// TUI implements UI with styled output, paging long reports with Bubble Tea.
type TUI struct {
	output io.Writer
	width  int
	height int
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	t := &TUI{output: output}

	if f, ok := output.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			t.width = width
			t.height = height
		}
	}

	return t
}

// DisplayBuild shows the written artifacts.
func (t *TUI) DisplayBuild(ctx context.Context, reports []m.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	for _, report := range reports {
		fmt.Fprintf(&b, "  %s %s\n", okStyle.Render("✓"), buildSummary(report))
	}

	return t.show("amalgam build", b.String())
}

// DisplayList shows the per-file statistics of each pass.
func (t *TUI) DisplayList(ctx context.Context, reports []m.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	for _, report := range reports {
		fmt.Fprintf(&b, "\n%s\n\n", titleStyle.Render(passTitle(report)))
		b.WriteString(renderFileTable(report))

		if !report.BannerEmitted {
			b.WriteString(mutedStyle.Render("  no banner emitted") + "\n")
		}
	}

	return t.show("amalgam list", b.String())
}

// DisplayCheck shows the freshness of each artifact with colored diffs.
func (t *TUI) DisplayCheck(ctx context.Context, results []m.CheckResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	for _, result := range results {
		if result.Status == m.UpToDate {
			fmt.Fprintf(&b, "  %s %s\n", okStyle.Render("✓"), checkSummary(result))
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", problemStyle.Render("✗"), checkSummary(result))

		if result.Diff != "" {
			b.WriteString(colorDiff(result.Diff))
			b.WriteString("\n")
		}
	}

	return t.show("amalgam check", b.String())
}

// show prints content directly when it fits the terminal and opens a pager otherwise.
func (t *TUI) show(title, content string) error {
	if !t.needsPagination(content) {
		_, err := fmt.Fprintf(t.output, "%s\n%s", titleStyle.Render(title), content)
		return err
	}

	program := tea.NewProgram(newPagerModel(title, content, t.width, t.height), tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (t *TUI) needsPagination(content string) bool {
	if t.height == 0 {
		return false
	}

	return strings.Count(content, "\n") > t.height-pagerChromeLines
}

func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var b strings.Builder

	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		newline := line[len(body):]

		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(mutedStyle.Render(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(diffHunkStyle.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(diffAddStyle.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(diffDelStyle.Render(body))
		default:
			b.WriteString(body)
		}

		b.WriteString(newline)
	}

	return b.String()
}

// pagerModel is the Bubble Tea model scrolling a report that does not fit the screen.
type pagerModel struct {
	title    string
	viewport viewport.Model
	quitting bool
}

func newPagerModel(title, content string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-pagerChromeLines, 1))
	vp.SetContent(content)

	return pagerModel{
		title:    title,
		viewport: vp,
	}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-pagerChromeLines, 1)

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	footer := mutedStyle.Render(fmt.Sprintf("  %3.f%% | ↑/k: up | ↓/j: down | q: quit", pm.viewport.ScrollPercent()*100))

	return titleStyle.Render(pm.title) + "\n" + pm.viewport.View() + "\n" + footer
}
