package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// ProjectSelectedMsg is sent when a project is picked
type ProjectSelectedMsg struct {
	ProjectID int
}

// CloseProjectDialogMsg is sent when the dialog is dismissed
type CloseProjectDialogMsg struct{}

// ProjectDialog lists the user's projects
type ProjectDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	Projects      []models.ProjectWithUsers
	SelectedIndex int
	Loading       bool
	Err           error
	Spinner       string
}

// NewProjectDialog creates a new project dialog
func NewProjectDialog(th theme.Theme) *ProjectDialog {
	return &ProjectDialog{Theme: th, Width: 60, Height: 20}
}

// SetProjects replaces the list and keeps the selection in range
func (d *ProjectDialog) SetProjects(projects []models.ProjectWithUsers, err error) {
	d.Projects = projects
	d.Err = err
	d.Loading = false
	d.SelectedIndex = min(d.SelectedIndex, max(len(projects)-1, 0))
}

// Update handles keyboard input
func (d *ProjectDialog) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if d.SelectedIndex > 0 {
			d.SelectedIndex--
		}
	case "down", "j":
		if d.SelectedIndex < len(d.Projects)-1 {
			d.SelectedIndex++
		}
	case "enter":
		if d.SelectedIndex < len(d.Projects) {
			id := d.Projects[d.SelectedIndex].Project.ID
			return emit(ProjectSelectedMsg{ProjectID: id})
		}
	case "esc":
		return emit(CloseProjectDialogMsg{})
	}
	return nil
}

// View renders the project dialog
func (d *ProjectDialog) View() string {
	if d.Width <= 0 || d.Height <= 0 {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(d.Theme.BorderFocused)
	b.WriteString(titleStyle.Render("Select a project"))
	b.WriteString("\n\n")

	switch {
	case d.Loading:
		b.WriteString(d.Spinner + " Loading projects...\n")
	case d.Err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(d.Theme.Error).Render("Failed to load projects: " + d.Err.Error()))
		b.WriteString("\n")
	case len(d.Projects) == 0:
		b.WriteString("No projects yet. Create one with `lazybrowse projects create`.\n")
	default:
		visible := max(d.Height-6, 1)
		start := max(d.SelectedIndex-visible+1, 0)
		end := min(start+visible, len(d.Projects))
		for i := start; i < end; i++ {
			b.WriteString(d.renderProject(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(d.Theme.Muted).
		Render("↑/↓: Select | Enter: Open | Esc: Cancel"))

	return lipgloss.NewStyle().
		Width(d.Width).
		Height(d.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.BorderFocused).
		Padding(0, 1).
		Render(b.String())
}

func (d *ProjectDialog) renderProject(i int) string {
	p := d.Projects[i]

	prefix := "  "
	if i == d.SelectedIndex {
		prefix = "> "
	}

	users := ""
	if n := p.Users.TotalCount; n > 0 {
		users = fmt.Sprintf(" · %d users", n)
	}
	line := fmt.Sprintf("%s#%d %s (%s%s)", prefix, p.Project.ID, p.Project.Name, p.Project.Visibility, users)
	line = runewidth.Truncate(line, max(d.Width-4, 10), "…")

	if i == d.SelectedIndex {
		return lipgloss.NewStyle().Background(d.Theme.Selection).Bold(true).Render(line)
	}
	return line
}
