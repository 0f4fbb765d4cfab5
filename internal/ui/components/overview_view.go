package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// Zone ID prefix for overview sub-tab mouse clicks
const ZoneOverviewTabPrefix = "overview-tab-"

// Overview sub-tabs
const (
	OverviewData = iota
	OverviewColumns
)

var overviewTabs = []string{"Data", "Columns"}

// OverviewView shows a table's rows and its column list
type OverviewView struct {
	Width  int
	Height int
	Theme  theme.Theme

	activeTab int

	dataTable    *TableView
	columnsTable *TableView
	columns      []models.Column
	ref          models.TableRef
}

// NewOverviewView creates a new overview view
func NewOverviewView(th theme.Theme) *OverviewView {
	return &OverviewView{
		Theme:        th,
		dataTable:    NewTableView(th),
		columnsTable: NewTableView(th),
	}
}

// SetTable sets the table and its columns. Switching tables resets the sub-tab.
func (ov *OverviewView) SetTable(ref models.TableRef, table *models.Table) {
	if ref != ov.ref {
		ov.activeTab = OverviewData
	}
	ov.ref = ref
	ov.columns = nil
	if table != nil {
		ov.columns = table.Columns
	}

	rows := make([][]string, len(ov.columns))
	for i, col := range ov.columns {
		rows[i] = []string{col.Name, col.DataType}
	}
	ov.columnsTable.SetData([]string{"Name", "Type"}, rows)
	ov.columnsTable.EmptyText = "No columns"
}

// SetResult shows the default query result in the Data sub-tab
func (ov *OverviewView) SetResult(result *models.QueryResult) {
	ov.dataTable.SetResult(result)
}

// Ref returns the table shown
func (ov *OverviewView) Ref() models.TableRef {
	return ov.ref
}

// ActiveTab returns the active sub-tab
func (ov *OverviewView) ActiveTab() int {
	return ov.activeTab
}

// SwitchTab switches to a specific sub-tab
func (ov *OverviewView) SwitchTab(tabIndex int) {
	if tabIndex >= 0 && tabIndex < len(overviewTabs) {
		ov.activeTab = tabIndex
	}
}

// NextTab cycles the sub-tabs
func (ov *OverviewView) NextTab() {
	ov.activeTab = (ov.activeTab + 1) % len(overviewTabs)
}

// HandleMouseClick handles mouse clicks on the sub-tab bar
func (ov *OverviewView) HandleMouseClick(msg tea.MouseMsg) bool {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return false
	}

	for i := range overviewTabs {
		if zone.Get(fmt.Sprintf("%s%d", ZoneOverviewTabPrefix, i)).InBounds(msg) {
			ov.SwitchTab(i)
			return true
		}
	}
	return false
}

// ActiveTable returns the table view of the active sub-tab
func (ov *OverviewView) ActiveTable() *TableView {
	if ov.activeTab == OverviewColumns {
		return ov.columnsTable
	}
	return ov.dataTable
}

// Update handles keyboard navigation inside the active sub-tab
func (ov *OverviewView) Update(msg tea.KeyMsg) {
	table := ov.ActiveTable()

	switch msg.String() {
	case "up", "k":
		table.MoveSelection(-1)
	case "down", "j":
		table.MoveSelection(1)
	case "left", "h":
		table.MoveSelectionHorizontal(-1)
	case "right", "l":
		table.MoveSelectionHorizontal(1)
	case "pgup", "ctrl+u":
		table.PageUp()
	case "pgdown", "ctrl+d":
		table.PageDown()
	case "0":
		table.JumpToFirstColumn()
	case "$":
		table.JumpToLastColumn()
	case "t":
		ov.NextTab()
	}
}

// View renders the overview
func (ov *OverviewView) View() string {
	var b strings.Builder

	b.WriteString(ov.renderTabBar())
	b.WriteString("\n")

	table := ov.ActiveTable()
	table.Width = ov.Width
	table.Height = max(ov.Height-2, 1)
	b.WriteString(table.View())

	return b.String()
}

func (ov *OverviewView) renderTabBar() string {
	var parts []string

	for i, label := range overviewTabs {
		var tabContent string
		if i == ov.activeTab {
			indicator := lipgloss.NewStyle().
				Foreground(ov.Theme.BorderFocused).
				Bold(true)
			tabStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(ov.Theme.Foreground).
				Background(ov.Theme.Selection).
				Padding(0, 1)
			tabContent = indicator.Render("▌") + tabStyle.Render(label)
		} else {
			tabContent = lipgloss.NewStyle().
				Foreground(ov.Theme.Muted).
				Padding(0, 1).
				Render(label)
		}

		parts = append(parts, zone.Mark(fmt.Sprintf("%s%d", ZoneOverviewTabPrefix, i), tabContent))

		if i < len(overviewTabs)-1 {
			parts = append(parts, lipgloss.NewStyle().Foreground(ov.Theme.Border).Render(" │ "))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// CopyCurrentValue copies the selected cell, or the selected column name on the Columns sub-tab.
// It returns a status message, or "" when nothing was copied.
func (ov *OverviewView) CopyCurrentValue() string {
	var value string
	if ov.activeTab == OverviewColumns {
		idx := ov.columnsTable.SelectedRow
		if idx >= 0 && idx < len(ov.columns) {
			value = ov.columns[idx].Name
		}
	} else if _, cell, ok := ov.dataTable.SelectedCell(); ok {
		value = cell
	}

	if value == "" {
		return ""
	}
	return CopyToClipboard(value)
}

// CopyToClipboard writes value to the clipboard and describes the result
func CopyToClipboard(value string) string {
	if err := clipboard.WriteAll(value); err != nil {
		return fmt.Sprintf("Copy failed: %v", err)
	}
	return fmt.Sprintf("✓ Copied: %s", runewidth.Truncate(firstLine(value), 50, "…"))
}
