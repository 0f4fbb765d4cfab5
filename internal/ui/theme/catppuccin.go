package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha palette (https://github.com/catppuccin/catppuccin)
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text
		Muted:      lipgloss.Color("#7f849c"), // Overlay1

		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		Favorite:   lipgloss.Color("#f9e2af"), // Yellow
		ColumnType: lipgloss.Color("#94e2d5"), // Teal

		ActionInitial:     lipgloss.Color("#cba6f7"), // Mauve
		ActionFull:        lipgloss.Color("#fab387"), // Peach
		ActionIncremental: lipgloss.Color("#a6e3a1"), // Green

		GridHeader:      lipgloss.Color("#89b4fa"), // Blue
		GridSelectedRow: lipgloss.Color("#313244"), // Surface0

		SQLStyle: "catppuccin-mocha",
	}
}
