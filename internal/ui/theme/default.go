package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the 256-color dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),
		Muted:      lipgloss.Color("244"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		Favorite:   lipgloss.Color("220"),
		ColumnType: lipgloss.Color("109"),

		ActionInitial:     lipgloss.Color("75"),
		ActionFull:        lipgloss.Color("214"),
		ActionIncremental: lipgloss.Color("42"),

		GridHeader:      lipgloss.Color("62"),
		GridSelectedRow: lipgloss.Color("237"),

		SQLStyle: "monokai",
	}
}
