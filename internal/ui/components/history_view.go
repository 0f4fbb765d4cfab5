package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

const loadMoreLabel = "Load more"

// HistorySelectMsg asks for a commit to be selected
type HistorySelectMsg struct {
	Key string
}

// HistoryBackMsg asks for the commit selection to be cleared
type HistoryBackMsg struct{}

// HistoryCloseMsg asks for the history view to be closed
type HistoryCloseMsg struct{}

// HistoryLoadMoreMsg asks for the next page of commits
type HistoryLoadMoreMsg struct{}

// HistoryRefreshMsg asks for the history to restart from the newest commit
type HistoryRefreshMsg struct{}

// HistorySearchMsg carries the current search box text
type HistorySearchMsg struct {
	Text string
}

// HistorySnapshot is the browser state the view renders
type HistorySnapshot struct {
	Commits  []models.Commit
	Total    int
	Loading  bool
	HasMore  bool
	Err      error
	Selected *models.Commit
}

// HistoryView renders the commit list, or the selected commit's details
type HistoryView struct {
	Width   int
	Height  int
	Theme   theme.Theme
	Spinner string // current spinner frame, set by the owner

	cursor     int
	scroll     int
	search     textinput.Model
	showDown   bool
	script     *ScriptView
	lastSelect string
}

// NewHistoryView creates a new history view
func NewHistoryView(th theme.Theme) *HistoryView {
	ti := textinput.New()
	ti.Placeholder = "Filter commits..."
	ti.Prompt = "/ "
	ti.CharLimit = 256

	return &HistoryView{
		Theme:  th,
		search: ti,
		script: NewScriptView(th),
	}
}

// Searching reports whether the search box has focus
func (hv *HistoryView) Searching() bool {
	return hv.search.Focused()
}

// SetSearch sets the search box text without emitting a message
func (hv *HistoryView) SetSearch(text string) {
	if hv.search.Value() != text {
		hv.search.SetValue(text)
	}
}

// Reset clears the cursor and search box
func (hv *HistoryView) Reset() {
	hv.cursor = 0
	hv.scroll = 0
	hv.showDown = false
	hv.search.Blur()
	hv.search.SetValue("")
}

// rowCount is the number of selectable rows: commits plus the load more row
func rowCount(snap HistorySnapshot) int {
	n := len(snap.Commits)
	if snap.HasMore {
		n++
	}
	return n
}

// Update handles input and returns the intent as a command
func (hv *HistoryView) Update(msg tea.Msg, snap HistorySnapshot) tea.Cmd {
	key, isKey := msg.(tea.KeyMsg)

	if hv.search.Focused() {
		if isKey {
			switch key.String() {
			case "esc", "enter":
				hv.search.Blur()
				return nil
			}
		}
		before := hv.search.Value()
		var cmd tea.Cmd
		hv.search, cmd = hv.search.Update(msg)
		if text := hv.search.Value(); text != before {
			hv.cursor = 0
			hv.scroll = 0
			return tea.Batch(cmd, func() tea.Msg { return HistorySearchMsg{Text: text} })
		}
		return cmd
	}

	if !isKey {
		return nil
	}

	if snap.Selected != nil {
		return hv.updateDetail(key, snap)
	}
	return hv.updateList(key, snap)
}

func (hv *HistoryView) updateList(key tea.KeyMsg, snap HistorySnapshot) tea.Cmd {
	rows := rowCount(snap)

	switch key.String() {
	case "up", "k":
		if hv.cursor > 0 {
			hv.cursor--
		}
	case "down", "j":
		if hv.cursor < rows-1 {
			hv.cursor++
		}
	case "g":
		hv.cursor = 0
	case "G":
		hv.cursor = max(rows-1, 0)
	case "/":
		return hv.search.Focus()
	case "m":
		if snap.HasMore && !snap.Loading {
			return emit(HistoryLoadMoreMsg{})
		}
	case "n", "r":
		hv.cursor = 0
		return emit(HistoryRefreshMsg{})
	case "enter":
		if hv.cursor < len(snap.Commits) {
			return emit(HistorySelectMsg{Key: snap.Commits[hv.cursor].Key()})
		}
		if snap.HasMore && !snap.Loading {
			return emit(HistoryLoadMoreMsg{})
		}
	case "esc", "q", "H":
		return emit(HistoryCloseMsg{})
	}
	return nil
}

func (hv *HistoryView) updateDetail(key tea.KeyMsg, snap HistorySnapshot) tea.Cmd {
	switch key.String() {
	case "esc", "backspace":
		return emit(HistoryBackMsg{})
	case "q", "H":
		return emit(HistoryCloseMsg{})
	case "d":
		hv.showDown = !hv.showDown
	default:
		hv.syncScript(snap.Selected)
		hv.script.Update(key)
	}
	return nil
}

// CopyScript copies the visible script of the selected commit
func (hv *HistoryView) CopyScript(snap HistorySnapshot) string {
	if snap.Selected == nil {
		return ""
	}
	hv.syncScript(snap.Selected)
	return hv.script.CopyContent()
}

func (hv *HistoryView) syncScript(c *models.Commit) {
	if c.Key() != hv.lastSelect {
		hv.lastSelect = c.Key()
		hv.showDown = false
	}
	if hv.showDown {
		hv.script.SetContent(c.DownScript, "down script")
	} else {
		hv.script.SetContent(c.UpScript, "up script")
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the history view
func (hv *HistoryView) View(snap HistorySnapshot) string {
	if snap.Selected != nil {
		return hv.detailView(snap.Selected)
	}
	return hv.listView(snap)
}

func (hv *HistoryView) listView(snap HistorySnapshot) string {
	dim := lipgloss.NewStyle().Foreground(hv.Theme.Muted)

	header := lipgloss.NewStyle().Bold(true).Foreground(hv.Theme.Info).Render("Commit history")
	count := fmt.Sprintf("  %d of %d", len(snap.Commits), snap.Total)
	if snap.Loading {
		count += "  " + hv.Spinner + " loading"
	}
	lines := []string{header + dim.Render(count), hv.search.View()}

	if snap.Err != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(hv.Theme.Error).
			Render("Failed to load commits: "+snap.Err.Error()))
	}

	// Header, search, error, footer
	listHeight := max(hv.Height-len(lines)-1, 1)

	rows := rowCount(snap)
	hv.cursor = min(hv.cursor, max(rows-1, 0))
	if hv.cursor < hv.scroll {
		hv.scroll = hv.cursor
	}
	if hv.cursor >= hv.scroll+listHeight {
		hv.scroll = hv.cursor - listHeight + 1
	}

	if rows == 0 && !snap.Loading {
		lines = append(lines, dim.Italic(true).Render("No commits"))
	}

	end := min(hv.scroll+listHeight, rows)
	for i := hv.scroll; i < end; i++ {
		var line string
		if i < len(snap.Commits) {
			line = hv.renderCommit(snap.Commits[i])
		} else {
			line = "  " + loadMoreLabel
			if snap.Loading {
				line = "  " + hv.Spinner + " " + loadMoreLabel
			}
		}
		style := lipgloss.NewStyle().Width(max(hv.Width, 1))
		if i == hv.cursor {
			style = style.Background(hv.Theme.Selection).Bold(true)
		}
		lines = append(lines, style.Render(line))
	}

	lines = append(lines, dim.Italic(true).Render("enter:open  m:load more  n:newest first  /:filter  esc:close"))
	return strings.Join(lines, "\n")
}

func (hv *HistoryView) renderCommit(c models.Commit) string {
	checksum := c.Checksum
	if len(checksum) > 8 {
		checksum = checksum[:8]
	}

	action := lipgloss.NewStyle().Foreground(hv.actionColor(c.ActionType)).Render(fmt.Sprintf("%-11s", c.ActionType))
	when := c.CreatedAt.Local().Format("2006-01-02 15:04")
	title := c.Title
	if c.IsDeleted() {
		title += " (deleted)"
	}

	prefix := fmt.Sprintf("  %-8s ", checksum)
	rest := fmt.Sprintf(" %s  ", when)
	room := max(hv.Width-runewidth.StringWidth(prefix)-11-runewidth.StringWidth(rest), 8)

	return prefix + action + rest + runewidth.Truncate(title, room, "…")
}

func (hv *HistoryView) actionColor(a models.ActionType) lipgloss.Color {
	switch a {
	case models.ActionInitial:
		return hv.Theme.ActionInitial
	case models.ActionFull:
		return hv.Theme.ActionFull
	default:
		return hv.Theme.ActionIncremental
	}
}

func (hv *HistoryView) detailView(c *models.Commit) string {
	hv.syncScript(c)

	label := lipgloss.NewStyle().Foreground(hv.Theme.Muted)
	value := lipgloss.NewStyle().Foreground(hv.Theme.Foreground)

	field := func(name, v string) string {
		return label.Render(fmt.Sprintf("%-9s", name)) + value.Render(v)
	}

	parent := "none"
	if c.ParentChecksum != nil {
		parent = *c.ParentChecksum
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(hv.Theme.Info).Render(c.Title),
		field("commit", c.Key()),
		field("checksum", c.Checksum),
		field("parent", parent),
		field("action", string(c.ActionType)),
		field("created", c.CreatedAt.Local().Format("2006-01-02 15:04:05")),
	}
	if c.DeletedAt != nil {
		lines = append(lines, field("deleted", c.DeletedAt.Local().Format("2006-01-02 15:04:05")))
	}
	if strings.TrimSpace(c.Message) != "" {
		lines = append(lines, "", value.Render(c.Message))
	}
	lines = append(lines, "")

	hv.script.Width = hv.Width
	hv.script.Height = max(hv.Height-len(lines), 5)
	lines = append(lines, hv.script.View())

	return strings.Join(lines, "\n")
}
