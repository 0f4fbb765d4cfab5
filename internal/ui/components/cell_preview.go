package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/jsonb"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// CellPreview shows the full value of the selected result cell below the grid.
// JSON documents are indented, or listed path by path in paths mode.
type CellPreview struct {
	Width     int
	MaxHeight int
	Visible   bool
	Theme     theme.Theme

	content   string
	title     string
	showPaths bool

	// Wrapped lines, rebuilt lazily after content or width changes
	lines      []string
	linesWidth int
	scrollY    int

	style lipgloss.Style
}

// NewCellPreview creates a hidden cell preview
func NewCellPreview(th theme.Theme) *CellPreview {
	return &CellPreview{
		Width:     80,
		MaxHeight: 10,
		Theme:     th,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// SetContent shows value under title. Scroll resets only when either changes.
func (p *CellPreview) SetContent(value, title string) {
	if p.content == value && p.title == title {
		return
	}
	p.content = value
	p.title = title
	p.scrollY = 0
	p.lines = nil
}

// Content returns the raw value
func (p *CellPreview) Content() string {
	return p.content
}

// Toggle shows or hides the preview
func (p *CellPreview) Toggle() {
	p.Visible = !p.Visible
	p.scrollY = 0
}

// TogglePaths switches a JSON value between indented and path listing.
// It reports false when the value is not a JSON document.
func (p *CellPreview) TogglePaths() bool {
	if !jsonb.IsDocument(p.content) {
		return false
	}
	p.showPaths = !p.showPaths
	p.scrollY = 0
	p.lines = nil
	return true
}

// Height returns the rendered height, 0 when hidden
func (p *CellPreview) Height() int {
	if !p.Visible {
		return 0
	}
	return p.MaxHeight
}

func (p *CellPreview) innerWidth() int {
	return max(p.Width-p.style.GetHorizontalFrameSize(), 10)
}

// bodyHeight is the number of value lines shown: frame, title and footer excluded
func (p *CellPreview) bodyHeight() int {
	return max(p.MaxHeight-p.style.GetVerticalFrameSize()-2, 1)
}

func (p *CellPreview) layout() {
	width := p.innerWidth()
	if p.lines != nil && p.linesWidth == width {
		return
	}
	p.linesWidth = width

	text := jsonb.Pretty(p.content)
	if p.showPaths {
		leaves := jsonb.Leaves(p.content)
		rows := make([]string, len(leaves))
		for i, leaf := range leaves {
			rows[i] = leaf.Path.String() + " = " + leaf.Value
		}
		text = strings.Join(rows, "\n")
	}
	p.lines = wrapLines(text, width)
}

// ScrollUp scrolls one line up
func (p *CellPreview) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls one line down
func (p *CellPreview) ScrollDown() {
	p.layout()
	if p.scrollY < max(len(p.lines)-p.bodyHeight(), 0) {
		p.scrollY++
	}
}

// View renders the preview
func (p *CellPreview) View() string {
	if !p.Visible {
		return ""
	}
	p.layout()
	width := p.innerWidth()

	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	title := "Preview"
	if p.title != "" {
		title += ": " + p.title
	}
	if p.showPaths {
		title += " (paths)"
	}
	parts := []string{titleStyle.Render(runewidth.Truncate(title, width, "…"))}

	body := p.bodyHeight()
	end := min(p.scrollY+body, len(p.lines))
	valueStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	for i := p.scrollY; i < end; i++ {
		parts = append(parts, valueStyle.Render(p.lines[i]))
	}
	for i := end - p.scrollY; i < body; i++ {
		parts = append(parts, "")
	}

	hints := []string{"v: close"}
	if len(p.lines) > body {
		hints = append([]string{"J/K: scroll"}, hints...)
	}
	if jsonb.IsDocument(p.content) {
		hints = append(hints, "P: paths")
	}
	hint := strings.Join(hints, " │ ")
	footer := lipgloss.NewStyle().Foreground(p.Theme.Muted).Italic(true).
		Render(strings.Repeat(" ", max(width-runewidth.StringWidth(hint), 0)) + hint)
	parts = append(parts, footer)

	return p.style.Width(p.Width - p.style.GetHorizontalBorderSize()).Render(strings.Join(parts, "\n"))
}

// wrapLines splits text into lines no wider than width
func wrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}
		var b strings.Builder
		w := 0
		for _, r := range line {
			rw := runewidth.RuneWidth(r)
			if w+rw > width {
				out = append(out, b.String())
				b.Reset()
				w = 0
			}
			b.WriteRune(r)
			w += rw
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}
