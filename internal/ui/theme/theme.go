package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of every view
type Theme struct {
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color

	// Panels and selection
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color

	// Status line and messages
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Schema tree
	Favorite   lipgloss.Color
	ColumnType lipgloss.Color

	// Commit action badges
	ActionInitial     lipgloss.Color
	ActionFull        lipgloss.Color
	ActionIncremental lipgloss.Color

	// Result grid
	GridHeader      lipgloss.Color
	GridSelectedRow lipgloss.Color

	// SQLStyle names the chroma style used for SQL text
	SQLStyle string
}

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
