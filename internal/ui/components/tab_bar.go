package components

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// Zone ID prefix for tab bar mouse clicks
const ZoneTabPrefix = "tab-"

const maxTabLabelWidth = 24

// TabBarItem is a tab as shown in the bar
type TabBarItem struct {
	Tab     models.Tab
	Running bool
	Rows    int // -1 when the tab has no result yet
}

// TabBar renders the session's tabs in order, highlighting the active one
type TabBar struct {
	Theme theme.Theme
}

// NewTabBar creates a new tab bar
func NewTabBar(th theme.Theme) *TabBar {
	return &TabBar{Theme: th}
}

// Label returns the text shown for a tab
func (tb *TabBar) Label(index int, item TabBarItem) string {
	icon := "⌕"
	if item.Tab.Kind == models.TabKindOverview {
		icon = "▦"
	}

	label := fmt.Sprintf("[%d] %s %s", index+1, icon, item.Tab.Name)
	switch {
	case item.Running:
		label += " …"
	case item.Rows == 1:
		label += " (1 row)"
	case item.Rows >= 0:
		label += fmt.Sprintf(" (%d rows)", item.Rows)
	}

	return runewidth.Truncate(label, maxTabLabelWidth, "…")
}

// View renders the tab bar. active is the index of the active tab, or -1.
func (tb *TabBar) View(items []TabBarItem, active int) string {
	if len(items) == 0 {
		return lipgloss.NewStyle().
			Foreground(tb.Theme.Muted).
			Italic(true).
			Render("No open tabs. Press Enter on a table or Ctrl+N for a new query.")
	}

	var parts []string
	for i, item := range items {
		var style lipgloss.Style
		if i == active {
			style = lipgloss.NewStyle().
				Foreground(tb.Theme.Background).
				Background(tb.Theme.Info).
				Bold(true).
				Padding(0, 1)
		} else {
			style = lipgloss.NewStyle().
				Foreground(tb.Theme.Foreground).
				Background(tb.Theme.Selection).
				Padding(0, 1)
		}

		zoneID := ZoneTabPrefix + strconv.Itoa(item.Tab.ID)
		parts = append(parts, zone.Mark(zoneID, style.Render(tb.Label(i, item))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// HandleMouseClick returns the ID of the clicked tab
func (tb *TabBar) HandleMouseClick(msg tea.MouseMsg, items []TabBarItem) (int, bool) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return 0, false
	}

	for _, item := range items {
		if zone.Get(ZoneTabPrefix + strconv.Itoa(item.Tab.ID)).InBounds(msg) {
			return item.Tab.ID, true
		}
	}
	return 0, false
}
