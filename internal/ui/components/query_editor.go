package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// EditorHeightPreset defines the height presets for the editor
type EditorHeightPreset int

const (
	EditorSmall  EditorHeightPreset = iota // 20% of available height
	EditorMedium                           // 35% of available height
	EditorLarge                            // 50% of available height
)

// QueryEditor is the SQL input of a query tab
type QueryEditor struct {
	input        textarea.Model
	highlighter  *sqlHighlighter
	heightPreset EditorHeightPreset

	Width  int
	Height int
	Theme  theme.Theme
}

// NewQueryEditor creates a new query editor
func NewQueryEditor(th theme.Theme) *QueryEditor {
	ta := textarea.New()
	ta.Placeholder = "SELECT ... (Ctrl+R to run)"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0

	return &QueryEditor{
		input:        ta,
		highlighter:  newSQLHighlighter(th.SQLStyle),
		heightPreset: EditorMedium,
		Theme:        th,
	}
}

// Focus gives the editor keyboard focus
func (e *QueryEditor) Focus() tea.Cmd {
	return e.input.Focus()
}

// Blur removes keyboard focus
func (e *QueryEditor) Blur() {
	e.input.Blur()
}

// Focused reports whether the editor has focus
func (e *QueryEditor) Focused() bool {
	return e.input.Focused()
}

// Value returns the editor text
func (e *QueryEditor) Value() string {
	return e.input.Value()
}

// SetValue replaces the editor text
func (e *QueryEditor) SetValue(text string) {
	if e.input.Value() != text {
		e.input.SetValue(text)
	}
}

// IncreaseHeight increases the height preset
func (e *QueryEditor) IncreaseHeight() {
	if e.heightPreset < EditorLarge {
		e.heightPreset++
	}
}

// DecreaseHeight decreases the height preset
func (e *QueryEditor) DecreaseHeight() {
	if e.heightPreset > EditorSmall {
		e.heightPreset--
	}
}

// HeightRatio returns the share of the content area the editor takes
func (e *QueryEditor) HeightRatio() float64 {
	switch e.heightPreset {
	case EditorSmall:
		return 0.20
	case EditorLarge:
		return 0.50
	default:
		return 0.35
	}
}

// Update forwards input to the textarea while focused
func (e *QueryEditor) Update(msg tea.Msg) tea.Cmd {
	if !e.input.Focused() {
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

// View renders the editor. A blurred editor shows highlighted SQL.
func (e *QueryEditor) View() string {
	contentHeight := max(e.Height-2, 1)

	borderColor := e.Theme.Border
	var content string
	if e.input.Focused() {
		borderColor = e.Theme.BorderFocused
		e.input.SetWidth(max(e.Width-2, 10))
		e.input.SetHeight(contentHeight)
		content = e.input.View()
	} else {
		content = e.highlighted(contentHeight)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(e.Width-2, 1)).
		Height(contentHeight).
		Render(content)
}

func (e *QueryEditor) highlighted(height int) string {
	text := e.input.Value()
	if strings.TrimSpace(text) == "" {
		return lipgloss.NewStyle().
			Foreground(e.Theme.Muted).
			Italic(true).
			Render("Press i to edit the query")
	}

	lines := strings.Split(text, "\n")
	width := len(fmt.Sprintf("%d", len(lines)))
	numberStyle := lipgloss.NewStyle().Foreground(e.Theme.Muted)

	out := make([]string, 0, min(len(lines), height))
	for i, line := range lines {
		if i >= height {
			break
		}
		num := numberStyle.Render(fmt.Sprintf("%*d │ ", width, i+1))
		out = append(out, num+e.highlighter.Line(line))
	}
	return strings.Join(out, "\n")
}
