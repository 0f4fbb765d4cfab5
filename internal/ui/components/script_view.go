package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// ScriptView is a read-only, highlighted viewer for a commit's up or down script
type ScriptView struct {
	Width  int
	Height int
	Theme  theme.Theme
	Title  string

	lines       []string
	scrollY     int
	highlighter *sqlHighlighter
}

// NewScriptView creates a new script viewer
func NewScriptView(th theme.Theme) *ScriptView {
	return &ScriptView{
		Theme:       th,
		lines:       []string{""},
		highlighter: newSQLHighlighter(th.SQLStyle),
	}
}

// SetContent replaces the script and scrolls to the top when it changed
func (sv *ScriptView) SetContent(content, title string) {
	next := strings.Split(content, "\n")
	if title == sv.Title && strings.Join(sv.lines, "\n") == content {
		return
	}
	sv.lines = next
	sv.Title = title
	sv.scrollY = 0
}

// Content returns the script text
func (sv *ScriptView) Content() string {
	return strings.Join(sv.lines, "\n")
}

// CopyContent copies the script and returns a status message
func (sv *ScriptView) CopyContent() string {
	content := sv.Content()
	if strings.TrimSpace(content) == "" {
		return ""
	}
	return CopyToClipboard(content)
}

func (sv *ScriptView) viewportHeight() int {
	// Title, separator, separator, status bar
	return max(sv.Height-4, 1)
}

// Update handles scrolling keys
func (sv *ScriptView) Update(msg tea.KeyMsg) {
	page := sv.viewportHeight()
	switch msg.String() {
	case "up", "k":
		sv.scrollY--
	case "down", "j":
		sv.scrollY++
	case "pgup", "ctrl+u":
		sv.scrollY -= page
	case "pgdown", "ctrl+d":
		sv.scrollY += page
	case "g":
		sv.scrollY = 0
	case "G":
		sv.scrollY = len(sv.lines)
	}
	sv.clampScroll()
}

func (sv *ScriptView) clampScroll() {
	maxScroll := max(len(sv.lines)-sv.viewportHeight(), 0)
	sv.scrollY = min(max(sv.scrollY, 0), maxScroll)
}

// View renders the script
func (sv *ScriptView) View() string {
	if sv.Width <= 0 || sv.Height <= 0 {
		return ""
	}

	width := max(sv.Width, 20)
	height := sv.viewportHeight()
	sv.clampScroll()

	separator := lipgloss.NewStyle().Foreground(sv.Theme.Border).Render(strings.Repeat("─", width))
	title := lipgloss.NewStyle().Foreground(sv.Theme.Info).Bold(true).
		Render(runewidth.Truncate(sv.Title, width, "…"))

	numberWidth := len(fmt.Sprintf("%d", len(sv.lines)))
	numberStyle := lipgloss.NewStyle().Foreground(sv.Theme.Muted)

	out := []string{title, separator}
	end := min(sv.scrollY+height, len(sv.lines))
	for i := sv.scrollY; i < end; i++ {
		num := numberStyle.Render(fmt.Sprintf("%*d │ ", numberWidth, i+1))
		out = append(out, num+sv.highlighter.Line(sv.lines[i]))
	}
	for len(out) < height+2 {
		out = append(out, numberStyle.Render(strings.Repeat(" ", numberWidth)+" │"))
	}

	out = append(out, separator, sv.renderStatusBar(width))
	return strings.Join(out, "\n")
}

func (sv *ScriptView) renderStatusBar(width int) string {
	style := lipgloss.NewStyle().Foreground(sv.Theme.Muted).Italic(true)

	helpText := "j/k:scroll  d:up/down  y:copy  esc:back"

	total := len(sv.lines)
	percent := 100
	if maxScroll := total - sv.viewportHeight(); maxScroll > 0 {
		percent = min(sv.scrollY*100/maxScroll, 100)
	}
	posInfo := fmt.Sprintf("Line %d/%d  %d%%", sv.scrollY+1, total, percent)

	padding := max(width-runewidth.StringWidth(helpText)-runewidth.StringWidth(posInfo), 1)
	return style.Render(helpText) + strings.Repeat(" ", padding) + style.Render(posInfo)
}
