package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/format"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 50
	columnGap      = " │ "
)

// TableView displays a result grid with row and column scrolling
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Theme   theme.Theme

	// Scrolling state
	TopRow      int
	LeftCol     int
	VisibleRows int
	SelectedRow int
	SelectedCol int

	// Column widths (calculated)
	ColumnWidths []int

	// Shown instead of the grid when there are no columns
	EmptyText  string
	EmptyError bool
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Columns:      []string{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
		Theme:        th,
		EmptyText:    "No data",
	}
}

// SetData sets the table data and resets the selection
func (tv *TableView) SetData(columns []string, rows [][]string) {
	tv.Columns = columns
	tv.Rows = rows
	tv.TopRow = 0
	tv.LeftCol = 0
	tv.SelectedRow = 0
	tv.SelectedCol = 0
	tv.calculateColumnWidths()
}

// SetResult shows a query result. Results without rows show their message instead.
func (tv *TableView) SetResult(result *models.QueryResult) {
	columns, cells := format.Grid(result)
	tv.SetData(columns, cells)
	tv.EmptyError = false

	switch {
	case result == nil:
		tv.EmptyText = "Run a query to see results"
	case result.Message != "" && !result.HasRows():
		tv.EmptyText = result.Message
		tv.EmptyError = result.RowsAffected == nil
	case result.RowsAffected != nil:
		tv.EmptyText = fmt.Sprintf("%d rows affected", *result.RowsAffected)
	default:
		tv.EmptyText = "Query returned no rows"
	}
}

// calculateColumnWidths sizes each column to its widest cell within bounds
func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))

	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = runewidth.StringWidth(col)
	}

	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.ColumnWidths) {
				tv.ColumnWidths[i] = max(tv.ColumnWidths[i], runewidth.StringWidth(firstLine(cell)))
			}
		}
	}

	for i := range tv.ColumnWidths {
		tv.ColumnWidths[i] = min(max(tv.ColumnWidths[i], minColumnWidth), maxColumnWidth)
	}
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		style := lipgloss.NewStyle().Foreground(tv.Theme.Muted).Italic(true)
		if tv.EmptyError {
			style = lipgloss.NewStyle().Foreground(tv.Theme.Error)
		}
		return style.Width(max(tv.Width, 1)).Render(tv.EmptyText)
	}

	var b strings.Builder

	visibleCols := tv.visibleColumns()

	b.WriteString(tv.renderHeader(visibleCols))
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator(visibleCols))
	b.WriteString("\n")

	// Header + separator + status
	tv.VisibleRows = max(tv.Height-3, 1)
	tv.clampScroll()

	endRow := min(tv.TopRow+tv.VisibleRows, len(tv.Rows))
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString(tv.renderRow(tv.Rows[i], visibleCols, i == tv.SelectedRow))
		b.WriteString("\n")
	}

	b.WriteString(tv.renderStatus())

	return b.String()
}

// visibleColumns returns the column indexes that fit the width, starting at LeftCol
func (tv *TableView) visibleColumns() []int {
	var cols []int
	used := 1
	for i := tv.LeftCol; i < len(tv.Columns); i++ {
		w := tv.ColumnWidths[i] + runewidth.StringWidth(columnGap)
		if len(cols) > 0 && tv.Width > 0 && used+w > tv.Width {
			break
		}
		cols = append(cols, i)
		used += w
	}
	return cols
}

func (tv *TableView) renderHeader(cols []int) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		parts = append(parts, pad(tv.Columns[i], tv.ColumnWidths[i]))
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.GridHeader)
	return headerStyle.Render(" " + strings.Join(parts, columnGap) + " ")
}

func (tv *TableView) renderSeparator(cols []int) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		parts = append(parts, strings.Repeat("─", tv.ColumnWidths[i]))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row []string, cols []int, selected bool) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		text := pad(firstLine(cell), tv.ColumnWidths[i])
		if selected && i == tv.SelectedCol {
			text = lipgloss.NewStyle().
				Background(tv.Theme.Cursor).
				Foreground(tv.Theme.Background).
				Render(text)
		}
		parts = append(parts, text)
	}

	line := " " + strings.Join(parts, columnGap) + " "
	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.GridSelectedRow).
			Bold(true).
			Render(line)
	}
	return line
}

func (tv *TableView) renderStatus() string {
	total := len(tv.Rows)
	status := fmt.Sprintf(" %d rows", total)
	if total == 1 {
		status = " 1 row"
	}
	if total > 0 {
		status = fmt.Sprintf(" row %d of %d", tv.SelectedRow+1, total)
	}
	if len(tv.Columns) > 0 {
		status += fmt.Sprintf(" · col %d of %d", tv.SelectedCol+1, len(tv.Columns))
	}

	return lipgloss.NewStyle().
		Foreground(tv.Theme.Muted).
		Italic(true).
		Render(status)
}

// pad fits s into exactly width cells
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + "…"
	}
	return s
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), len(tv.Rows)-1)
	tv.clampScroll()
}

// MoveSelectionHorizontal moves the selected column left or right
func (tv *TableView) MoveSelectionHorizontal(delta int) {
	if len(tv.Columns) == 0 {
		return
	}
	tv.SelectedCol = min(max(tv.SelectedCol+delta, 0), len(tv.Columns)-1)
	if tv.SelectedCol < tv.LeftCol {
		tv.LeftCol = tv.SelectedCol
	}
	for tv.LeftCol < tv.SelectedCol && !slices.Contains(tv.visibleColumns(), tv.SelectedCol) {
		tv.LeftCol++
	}
}

// JumpToFirstColumn selects the first column
func (tv *TableView) JumpToFirstColumn() {
	tv.SelectedCol = 0
	tv.LeftCol = 0
}

// JumpToLastColumn selects the last column
func (tv *TableView) JumpToLastColumn() {
	tv.MoveSelectionHorizontal(len(tv.Columns))
}

// PageUp moves the selection one page up
func (tv *TableView) PageUp() {
	tv.MoveSelection(-max(tv.VisibleRows, 1))
}

// PageDown moves the selection one page down
func (tv *TableView) PageDown() {
	tv.MoveSelection(max(tv.VisibleRows, 1))
}

// SelectedCell returns the column name and full value under the cursor
func (tv *TableView) SelectedCell() (string, string, bool) {
	if tv.SelectedRow >= len(tv.Rows) || tv.SelectedCol >= len(tv.Columns) {
		return "", "", false
	}
	row := tv.Rows[tv.SelectedRow]
	value := ""
	if tv.SelectedCol < len(row) {
		value = row[tv.SelectedCol]
	}
	return tv.Columns[tv.SelectedCol], value, true
}

// SelectedRowText returns the selected row as tab-separated values
func (tv *TableView) SelectedRowText() (string, bool) {
	if tv.SelectedRow >= len(tv.Rows) {
		return "", false
	}
	return strings.Join(tv.Rows[tv.SelectedRow], "\t"), true
}

func (tv *TableView) clampScroll() {
	if tv.VisibleRows < 1 {
		tv.VisibleRows = max(tv.Height-3, 1)
	}
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
	tv.TopRow = max(tv.TopRow, 0)
}
