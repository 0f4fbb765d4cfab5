package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// ReuseQueryMsg is sent when a logged query should be opened in a new tab
type ReuseQueryMsg struct {
	Query string
}

// QueryLogSearchMsg asks for the log to be searched
type QueryLogSearchMsg struct {
	Text string
}

// CloseQueryLogMsg is sent when the dialog should close
type CloseQueryLogMsg struct{}

// QueryLogDialog lists recently executed queries
type QueryLogDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	entries  []models.QueryLogEntry
	selected int
	offset   int
	search   textinput.Model
}

// NewQueryLogDialog creates a new query log dialog
func NewQueryLogDialog(th theme.Theme) *QueryLogDialog {
	ti := textinput.New()
	ti.Placeholder = "search executed queries"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	return &QueryLogDialog{
		Width:  80,
		Height: 24,
		Theme:  th,
		search: ti,
	}
}

// SetEntries updates the list
func (d *QueryLogDialog) SetEntries(entries []models.QueryLogEntry) {
	d.entries = entries
	d.selected = 0
	d.offset = 0
}

// Reset clears the search box
func (d *QueryLogDialog) Reset() {
	d.search.SetValue("")
	d.search.Blur()
}

func (d *QueryLogDialog) visibleHeight() int {
	// Title, help, search, blank, two lines per entry
	return max((d.Height-6)/2, 1)
}

// Update handles keyboard input
func (d *QueryLogDialog) Update(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyMsg)

	if d.search.Focused() {
		if isKey && (key.String() == "esc" || key.String() == "enter") {
			d.search.Blur()
			return nil
		}
		before := d.search.Value()
		var cmd tea.Cmd
		d.search, cmd = d.search.Update(msg)
		if text := d.search.Value(); text != before {
			return tea.Batch(cmd, emit(QueryLogSearchMsg{Text: text}))
		}
		return cmd
	}

	if !isKey {
		return nil
	}

	switch key.String() {
	case "esc", "q":
		return emit(CloseQueryLogMsg{})
	case "/":
		return d.search.Focus()
	case "up", "k":
		if d.selected > 0 {
			d.selected--
			if d.selected < d.offset {
				d.offset = d.selected
			}
		}
	case "down", "j":
		if d.selected < len(d.entries)-1 {
			d.selected++
			if d.selected >= d.offset+d.visibleHeight() {
				d.offset = d.selected - d.visibleHeight() + 1
			}
		}
	case "enter":
		if d.selected < len(d.entries) {
			return emit(ReuseQueryMsg{Query: d.entries[d.selected].Query})
		}
	}
	return nil
}

// View renders the dialog
func (d *QueryLogDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Background).
		Background(d.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Query Log"))

	instrStyle := lipgloss.NewStyle().
		Foreground(d.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render("↑↓: Navigate  Enter: Open in new tab  /: Search  Esc: Close"))
	sections = append(sections, d.search.View())

	if len(d.entries) == 0 {
		sections = append(sections, "\nNo queries recorded yet.")
	} else {
		sections = append(sections, "")
		end := min(d.offset+d.visibleHeight(), len(d.entries))
		for i := d.offset; i < end; i++ {
			sections = append(sections, d.renderEntry(i))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.Border).
		Width(d.Width).
		Height(d.Height).
		Padding(0, 1).
		Render(strings.Join(sections, "\n"))
}

func (d *QueryLogDialog) renderEntry(i int) string {
	e := d.entries[i]
	width := max(d.Width-6, 20)

	status := lipgloss.NewStyle().Foreground(d.Theme.Success).Render("✓")
	if !e.Success {
		status = lipgloss.NewStyle().Foreground(d.Theme.Error).Render("✗")
	}

	query := strings.Join(strings.Fields(e.Query), " ")
	meta := fmt.Sprintf("%s · %s · %d rows · %s", e.ExecutedAt.Local().Format("2006-01-02 15:04"),
		e.TabName, e.RowCount, e.Duration.Round(time.Millisecond))
	if e.Statement != "" {
		meta += " · " + e.Statement
	}
	if !e.Success && e.Message != "" {
		meta += " · " + e.Message
	}

	line := status + " " + runewidth.Truncate(query, width-2, "…") + "\n  " +
		lipgloss.NewStyle().Foreground(d.Theme.Muted).Render(runewidth.Truncate(meta, width-2, "…"))

	style := lipgloss.NewStyle()
	if i == d.selected {
		style = style.Background(d.Theme.Selection)
	}
	return style.Render(line)
}
