package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab", "Switch panel focus"},
		{"R", "Reload database structure"},
		{"H", "Toggle commit history"},
		{"<, >", "Location back / forward"},
	}
}

// GetTabKeys returns tab key bindings
func GetTabKeys() []KeyBinding {
	return []KeyBinding{
		{"Ctrl+N", "New query tab"},
		{"x, Ctrl+W", "Close active tab"},
		{"[, ]", "Previous / next tab"},
		{"1-9", "Activate tab by position"},
	}
}

// GetNavigationKeys returns schema tree key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"←/h", "Collapse or go to parent"},
		{"→/l, Space", "Expand"},
		{"Enter", "Open table overview"},
		{"f", "Toggle favourite"},
		{"/", "Filter tables (schema:, column:, !)"},
		{"s", "Cycle scope: all, favourites, recent"},
	}
}

// GetQueryKeys returns query tab key bindings
func GetQueryKeys() []KeyBinding {
	return []KeyBinding{
		{"i", "Edit query"},
		{"Esc", "Stop editing"},
		{"Ctrl+R, F5", "Run query"},
		{"Ctrl+↑/↓", "Resize editor"},
	}
}

// GetDataViewKeys returns result grid key bindings
func GetDataViewKeys() []KeyBinding {
	return []KeyBinding{
		{"h/j/k/l", "Move selection"},
		{"0, $", "First / last column"},
		{"t", "Data / Columns (overview)"},
		{"y", "Copy cell"},
		{"Y", "Copy row"},
		{"v", "Toggle cell preview"},
		{"P", "JSON paths in preview"},
		{"J / K", "Scroll preview"},
		{"e, E", "Export CSV / JSON"},
	}
}

// GetHistoryKeys returns commit history key bindings
func GetHistoryKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter", "Open commit / load more"},
		{"m", "Load more"},
		{"n", "Newest first"},
		{"/", "Filter loaded commits"},
		{"d", "Up / down script"},
		{"y", "Copy script"},
		{"Esc", "Back / close"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Tabs", GetTabKeys()},
		{"Schema Tree", GetNavigationKeys()},
		{"Query", GetQueryKeys()},
		{"Results", GetDataViewKeys()},
		{"History", GetHistoryKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(0, 0, 1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(14)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	renderSection := func(s Section) string {
		var b strings.Builder
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		return b.String()
	}

	// Two columns when there is room
	sections := Sections()
	var body string
	if width >= 100 {
		var left, right []string
		for i, s := range sections {
			if i%2 == 0 {
				left = append(left, renderSection(s))
			} else {
				right = append(right, renderSection(s))
			}
		}
		colStyle := lipgloss.NewStyle().Width((width - 10) / 2)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			colStyle.Render(strings.Join(left, "\n")),
			colStyle.Render(strings.Join(right, "\n")),
		)
	} else {
		parts := make([]string, 0, len(sections))
		for _, s := range sections {
			parts = append(parts, renderSection(s))
		}
		body = strings.Join(parts, "\n")
	}

	content := titleStyle.Render("lazybrowse - Keyboard Shortcuts") + "\n" + body + "\n" +
		lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		MaxHeight(max(height, 5))

	return boxStyle.Render(content)
}
