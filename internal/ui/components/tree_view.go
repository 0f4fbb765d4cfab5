package components

// TreeView renders the schema tree snapshot produced by the navigator.
//
// The tree is read-only here: expand, collapse and open keys emit messages and
// the owner applies them to the navigator, then calls SetRoot with a fresh
// snapshot. The cursor follows the node ID across snapshots.
//
// Keys: ↑↓/jk move, g/G jump, →/l/space expand, ←/h collapse or go to parent,
// enter opens a table, f toggles a favourite.

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
)

// TreeView represents a visual tree component for displaying the schema tree
type TreeView struct {
	Root         *models.TreeNode // Root node of the tree
	CursorIndex  int              // Current cursor position in the flattened list
	Width        int              // Display width
	Height       int              // Display height
	Theme        theme.Theme      // Color theme
	ScrollOffset int              // Vertical scroll offset for viewport
	EmptyText    string           // Shown when there is nothing to render
}

// TreeToggleMsg asks for a schema or table to be expanded or collapsed
type TreeToggleMsg struct {
	Node *models.TreeNode
}

// TreeOpenTableMsg asks for a table overview to be opened
type TreeOpenTableMsg struct {
	Ref models.TableRef
}

// TreeFavoriteMsg asks for a table's favourite flag to be flipped
type TreeFavoriteMsg struct {
	Ref models.TableRef
}

// NewTreeView creates a new tree view component
func NewTreeView(root *models.TreeNode, theme theme.Theme) *TreeView {
	return &TreeView{
		Root:      root,
		Width:     40,
		Height:    20,
		Theme:     theme,
		EmptyText: "No tables",
	}
}

// SetRoot replaces the snapshot and keeps the cursor on the same node when it is still visible
func (tv *TreeView) SetRoot(root *models.TreeNode) {
	current := tv.GetCurrentNode()
	tv.Root = root
	if current != nil && tv.SetCursorToNode(current.ID) {
		return
	}
	visible := tv.visibleNodes()
	if tv.CursorIndex >= len(visible) {
		tv.CursorIndex = len(visible) - 1
	}
	if tv.CursorIndex < 0 {
		tv.CursorIndex = 0
	}
}

func (tv *TreeView) visibleNodes() []*models.TreeNode {
	if tv.Root == nil {
		return nil
	}
	return tv.Root.Flatten()
}

// View renders the tree as a string
func (tv *TreeView) View() string {
	visibleNodes := tv.visibleNodes()
	if len(visibleNodes) == 0 {
		return tv.emptyState()
	}

	// Ensure cursor is within bounds
	if tv.CursorIndex < 0 {
		tv.CursorIndex = 0
	}
	if tv.CursorIndex >= len(visibleNodes) {
		tv.CursorIndex = len(visibleNodes) - 1
	}

	viewHeight := tv.Height
	if viewHeight < 1 {
		viewHeight = 1
	}

	tv.adjustScrollOffset(len(visibleNodes), viewHeight)

	startIdx := tv.ScrollOffset
	endIdx := min(tv.ScrollOffset+viewHeight, len(visibleNodes))

	lines := make([]string, 0, viewHeight)
	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, tv.renderNode(visibleNodes[i], i == tv.CursorIndex))
	}

	content := strings.Join(lines, "\n")

	if tv.ScrollOffset > 0 || endIdx < len(visibleNodes) {
		content = tv.addScrollIndicators(content, startIdx, endIdx, len(visibleNodes))
	}

	return content
}

// Update handles keyboard input for tree navigation
func (tv *TreeView) Update(msg tea.KeyMsg) (*TreeView, tea.Cmd) {
	visibleNodes := tv.visibleNodes()
	if len(visibleNodes) == 0 {
		return tv, nil
	}
	if tv.CursorIndex >= len(visibleNodes) {
		tv.CursorIndex = len(visibleNodes) - 1
	}

	current := visibleNodes[tv.CursorIndex]
	var cmd tea.Cmd

	switch msg.String() {
	case "up", "k":
		if tv.CursorIndex > 0 {
			tv.CursorIndex--
		}

	case "down", "j":
		if tv.CursorIndex < len(visibleNodes)-1 {
			tv.CursorIndex++
		}

	case "g":
		tv.CursorIndex = 0
		tv.ScrollOffset = 0

	case "G":
		tv.CursorIndex = len(visibleNodes) - 1

	case "right", "l", " ":
		if current.CanExpand() && !current.Expanded {
			cmd = toggleCmd(current)
		}

	case "left", "h":
		if current.CanExpand() && current.Expanded {
			cmd = toggleCmd(current)
		} else if current.Parent != nil && current.Parent.Type != models.TreeNodeTypeRoot {
			if parentIndex := tv.findNodeIndex(visibleNodes, current.Parent); parentIndex >= 0 {
				tv.CursorIndex = parentIndex
			}
		}

	case "enter":
		switch current.Type {
		case models.TreeNodeTypeSchema:
			cmd = toggleCmd(current)
		case models.TreeNodeTypeTable:
			if ref, ok := models.TableRefFromNode(current); ok {
				cmd = func() tea.Msg { return TreeOpenTableMsg{Ref: ref} }
			}
		}

	case "f":
		if current.Type == models.TreeNodeTypeTable {
			if ref, ok := models.TableRefFromNode(current); ok {
				cmd = func() tea.Msg { return TreeFavoriteMsg{Ref: ref} }
			}
		}
	}

	return tv, cmd
}

func toggleCmd(node *models.TreeNode) tea.Cmd {
	return func() tea.Msg { return TreeToggleMsg{Node: node} }
}

// renderNode renders a single tree node with appropriate styling
func (tv *TreeView) renderNode(node *models.TreeNode, selected bool) string {
	// The root is not rendered, so schemas sit at depth 0
	depth := max(node.GetDepth()-1, 0)
	indent := strings.Repeat("  ", depth)

	content := fmt.Sprintf("%s%s %s", indent, tv.getNodeIcon(node), tv.buildNodeLabel(node))

	maxWidth := max(tv.Width-2, 1)
	content = runewidth.Truncate(content, maxWidth, "…")

	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Foreground).
		Width(maxWidth)
	if selected {
		style = style.Background(tv.Theme.Selection).Bold(true)
	}

	return style.Render(content)
}

// getNodeIcon returns the appropriate icon for a node
func (tv *TreeView) getNodeIcon(node *models.TreeNode) string {
	if !node.CanExpand() {
		return "•"
	}
	if node.Expanded {
		return "▾"
	}
	return "▸"
}

// buildNodeLabel builds the display label for a node, including metadata
func (tv *TreeView) buildNodeLabel(node *models.TreeNode) string {
	label := node.Label

	switch node.Type {
	case models.TreeNodeTypeSchema:
		dimStyle := lipgloss.NewStyle().Foreground(tv.Theme.Muted)
		if len(node.Children) == 0 {
			label += " " + dimStyle.Render("(empty)")
		} else {
			label += " " + dimStyle.Render(fmt.Sprintf("(%s)", formatNumber(int64(len(node.Children)))))
		}

	case models.TreeNodeTypeTable:
		if node.Favorite {
			label += " " + lipgloss.NewStyle().Foreground(tv.Theme.Favorite).Render("★")
		}

	case models.TreeNodeTypeColumn:
		if col, ok := node.Metadata.(models.Column); ok {
			label = col.Name + " " + lipgloss.NewStyle().Foreground(tv.Theme.ColumnType).Render("("+col.DataType+")")
		}
	}

	return label
}

// adjustScrollOffset adjusts the scroll offset to keep the cursor visible
func (tv *TreeView) adjustScrollOffset(totalNodes, viewHeight int) {
	if tv.CursorIndex < tv.ScrollOffset {
		tv.ScrollOffset = tv.CursorIndex
	}
	if tv.CursorIndex >= tv.ScrollOffset+viewHeight {
		tv.ScrollOffset = tv.CursorIndex - viewHeight + 1
	}

	maxScroll := max(totalNodes-viewHeight, 0)
	tv.ScrollOffset = min(max(tv.ScrollOffset, 0), maxScroll)
}

// addScrollIndicators marks the first and last line when content is clipped
func (tv *TreeView) addScrollIndicators(content string, startIdx, endIdx, total int) string {
	lines := strings.Split(content, "\n")
	indicator := lipgloss.NewStyle().Foreground(tv.Theme.Info)

	if startIdx > 0 && len(lines) > 0 {
		lines[0] = indicator.Render("↑") + " " + lines[0]
	}
	if endIdx < total && len(lines) > 0 {
		last := len(lines) - 1
		lines[last] = indicator.Render("↓") + " " + lines[last]
	}

	return strings.Join(lines, "\n")
}

// emptyState returns the empty state view
func (tv *TreeView) emptyState() string {
	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Muted).
		Italic(true).
		Width(max(tv.Width-2, 1)).
		Align(lipgloss.Center)

	return style.Render(tv.EmptyText)
}

// findNodeIndex finds the index of a node in the flattened list
func (tv *TreeView) findNodeIndex(nodes []*models.TreeNode, target *models.TreeNode) int {
	for i, node := range nodes {
		if node == target {
			return i
		}
	}
	return -1
}

// formatNumber formats a count compactly (1.5k, 12k, 1.2M)
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 10000 {
		k := float64(n) / 1000.0
		if k == float64(int(k)) {
			return fmt.Sprintf("%.0fk", k)
		}
		return fmt.Sprintf("%.1fk", k)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.0fk", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}

// GetCurrentNode returns the node under the cursor
func (tv *TreeView) GetCurrentNode() *models.TreeNode {
	visibleNodes := tv.visibleNodes()
	if tv.CursorIndex < 0 || tv.CursorIndex >= len(visibleNodes) {
		return nil
	}
	return visibleNodes[tv.CursorIndex]
}

// SetCursorToNode sets the cursor to a specific node (by ID)
func (tv *TreeView) SetCursorToNode(nodeID string) bool {
	for i, node := range tv.visibleNodes() {
		if node.ID == nodeID {
			tv.CursorIndex = i
			return true
		}
	}
	return false
}
