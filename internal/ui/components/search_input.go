package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// SearchInputMsg is sent whenever the filter text changes
type SearchInputMsg struct {
	Query string
}

// SearchScopeMsg asks for the navigator scope to advance
type SearchScopeMsg struct{}

// CloseSearchMsg is sent when search should be closed. Clear drops the filter too.
type CloseSearchMsg struct {
	Clear bool
}

// SearchInput is the schema tree filter box
type SearchInput struct {
	Input textinput.Model
	Scope string // shown as [all], [favourites] or [recent]
	Theme theme.Theme
	Width int
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "table, schema:, column:, !negate"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Scope: "all",
		Theme: th,
	}
}

// Focus gives the input keyboard focus
func (s *SearchInput) Focus() tea.Cmd {
	return s.Input.Focus()
}

// Focused reports whether the input has focus
func (s *SearchInput) Focused() bool {
	return s.Input.Focused()
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
	s.Input.Blur()
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			return s, func() tea.Msg { return SearchScopeMsg{} }
		case "enter":
			s.Input.Blur()
			return s, func() tea.Msg { return CloseSearchMsg{} }
		case "esc":
			s.Reset()
			return s, func() tea.Msg { return CloseSearchMsg{Clear: true} }
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	if query := s.Input.Value(); query != before {
		return s, tea.Batch(cmd, func() tea.Msg { return SearchInputMsg{Query: query} })
	}
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	scopeColor := s.Theme.Success
	if s.Scope != "all" {
		scopeColor = s.Theme.Info
	}
	scopeStyle := lipgloss.NewStyle().
		Foreground(scopeColor).
		Bold(true)

	s.Input.Width = max(s.Width-len(s.Scope)-6, 8)

	border := s.Theme.Border
	if s.Input.Focused() {
		border = s.Theme.BorderFocused
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(max(s.Width-2, 1))

	content := scopeStyle.Render("["+s.Scope+"]") + " " + s.Input.View()
	if !s.Input.Focused() {
		return boxStyle.Render(content)
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Muted).
		Italic(true)
	return boxStyle.Render(content + "\n" + helpStyle.Render("Tab: scope │ Enter: keep │ Esc: clear"))
}
