package app

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/rebeliceyang/lazybrowse/internal/ui/components"
	"github.com/rs/zerolog/log"
)

// handleKey routes a key press to the topmost thing that owns the keyboard
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}

	if a.showError {
		switch msg.String() {
		case "esc", "enter":
			a.DismissError()
		case "q":
			return a, a.quit()
		}
		return a, nil
	}

	if a.state.ViewMode == models.HelpMode {
		switch msg.String() {
		case "?", "esc", "q":
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	if a.showProjects {
		return a, a.projectDialog.Update(msg)
	}

	if a.showQueryLog {
		return a, a.queryLogDialog.Update(msg)
	}

	if a.editor.Focused() {
		return a, a.handleEditorKey(msg)
	}

	if a.searchInput.Focused() {
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}

	if a.session.History.IsOpen() && a.state.FocusedPanel == models.RightPanel {
		if cmd, handled := a.handleHistoryKey(msg); handled {
			return a, cmd
		}
	}

	if cmd, handled := a.handleGlobalKey(msg); handled {
		return a, cmd
	}

	if a.state.FocusedPanel == models.LeftPanel {
		return a, a.handleTreeKey(msg)
	}
	return a, a.handleContentKey(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return a.quit(), true

	case "?":
		a.state.ViewMode = models.HelpMode
		return nil, true

	case "tab":
		if a.state.FocusedPanel == models.LeftPanel {
			a.state.FocusedPanel = models.RightPanel
		} else {
			a.state.FocusedPanel = models.LeftPanel
		}
		return nil, true

	case "H":
		a.session.History.Toggle()
		if a.session.History.IsOpen() {
			a.state.FocusedPanel = models.RightPanel
		} else {
			a.historyView.Reset()
		}
		return a.syncHistory(), true

	case "<":
		if a.location.Back() {
			return a.syncHistory(), true
		}
		return nil, true

	case ">":
		if a.location.Forward() {
			return a.syncHistory(), true
		}
		return nil, true

	case "R":
		if a.session.ProjectID == 0 {
			return nil, true
		}
		return asCmd(a.session.Navigator.Mount(a.ctx, a.session.ProjectID)), true

	case "p":
		return a.openProjectPicker(), true

	case "ctrl+l":
		return a.openQueryLog(), true

	case "ctrl+n":
		a.session.NewQueryTab()
		a.state.FocusedPanel = models.RightPanel
		return a.startEditing(), true

	case "x", "ctrl+w":
		if tab := a.session.Tabs.ActiveTab(); tab != nil {
			a.session.CloseTab(tab.ID)
		}
		return nil, true

	case "[":
		a.session.Tabs.PrevTab()
		return nil, true

	case "]":
		a.session.Tabs.NextTab()
		return nil, true

	case "ctrl+r", "f5":
		return a.runActive(), true

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(msg.String())
		tabs := a.session.Tabs.Tabs()
		if n <= len(tabs) {
			a.session.Tabs.ActivateTab(tabs[n-1].ID)
			a.state.FocusedPanel = models.RightPanel
		}
		return nil, true
	}
	return nil, false
}

func (a *App) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		a.state.ViewMode = models.FilterMode
		return a.searchInput.Focus()
	case "s":
		scope := a.session.Navigator.CycleScope()
		a.searchInput.Scope = scope.String()
		a.refreshTree()
		return nil
	}

	var cmd tea.Cmd
	a.treeView, cmd = a.treeView.Update(msg)
	return cmd
}

func (a *App) handleContentKey(msg tea.KeyMsg) tea.Cmd {
	tab := a.session.Tabs.ActiveTab()
	if tab == nil {
		return nil
	}
	a.syncContent(tab)

	switch msg.String() {
	case "e":
		return a.exportResult("csv")
	case "E":
		return a.exportResult("json")
	}

	if tab.Kind == models.TabKindOverview {
		if msg.String() == "y" {
			if status := a.overview.CopyCurrentValue(); status != "" {
				return a.setStatus(status)
			}
			return nil
		}
		if msg.String() == "Y" {
			if text, ok := a.overview.ActiveTable().SelectedRowText(); ok {
				return a.setStatus(components.CopyToClipboard(text))
			}
			return nil
		}
		a.overview.Update(msg)
		return nil
	}

	switch msg.String() {
	case "i", "enter":
		return a.startEditing()
	case "y":
		if _, value, ok := a.resultView.SelectedCell(); ok {
			return a.setStatus(components.CopyToClipboard(value))
		}
	case "Y":
		if text, ok := a.resultView.SelectedRowText(); ok {
			return a.setStatus(components.CopyToClipboard(text))
		}
	case "v":
		a.preview.Toggle()
	case "P":
		if a.preview.Visible && !a.preview.TogglePaths() {
			return a.setStatus("Not a JSON value")
		}
	case "J":
		a.preview.ScrollDown()
	case "K":
		a.preview.ScrollUp()
	case "up", "k":
		a.resultView.MoveSelection(-1)
	case "down", "j":
		a.resultView.MoveSelection(1)
	case "left", "h":
		a.resultView.MoveSelectionHorizontal(-1)
	case "right", "l":
		a.resultView.MoveSelectionHorizontal(1)
	case "pgup", "ctrl+u":
		a.resultView.PageUp()
	case "pgdown", "ctrl+d":
		a.resultView.PageDown()
	case "g":
		a.resultView.MoveSelection(-len(a.resultView.Rows))
	case "G":
		a.resultView.MoveSelection(len(a.resultView.Rows))
	case "0":
		a.resultView.JumpToFirstColumn()
	case "$":
		a.resultView.JumpToLastColumn()
	case "ctrl+up":
		a.editor.IncreaseHeight()
	case "ctrl+down":
		a.editor.DecreaseHeight()
	}
	return nil
}

// handleHistoryKey gives the history view first pick of keys while it is shown
func (a *App) handleHistoryKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	snap := a.historySnapshot()

	if !a.historyView.Searching() {
		switch msg.String() {
		case "tab", "?", "<", ">", "p", "ctrl+l", "R":
			return nil, false
		case "y":
			if status := a.historyView.CopyScript(snap); status != "" {
				return a.setStatus(status), true
			}
			return nil, true
		}
	}
	return a.historyView.Update(msg, snap), true
}

func (a *App) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.stopEditing()
		return nil
	case "ctrl+r", "f5":
		a.stopEditing()
		return a.runActive()
	case "ctrl+up":
		a.editor.IncreaseHeight()
		return nil
	case "ctrl+down":
		a.editor.DecreaseHeight()
		return nil
	}
	return a.updateEditor(msg)
}

// updateEditor forwards input to the editor and stores the text on its tab
func (a *App) updateEditor(msg tea.Msg) tea.Cmd {
	cmd := a.editor.Update(msg)
	if a.editorTabID != 0 {
		a.session.Queries.SetText(a.editorTabID, a.editor.Value())
	}
	return cmd
}

// startEditing focuses the editor on the active query tab
func (a *App) startEditing() tea.Cmd {
	tab := a.session.Tabs.ActiveTab()
	if tab == nil || tab.Kind != models.TabKindQuery {
		return nil
	}
	a.syncContent(tab)
	a.state.FocusedPanel = models.RightPanel
	return a.editor.Focus()
}

func (a *App) stopEditing() {
	if a.editorTabID != 0 {
		a.session.Queries.SetText(a.editorTabID, a.editor.Value())
	}
	a.editor.Blur()
}

func (a *App) runActive() tea.Cmd {
	if a.session.ProjectID == 0 {
		return a.setStatus("Select a project first")
	}
	run, ok := a.session.RunActive(a.ctx)
	if !ok {
		return a.setStatus("Nothing to run")
	}
	return asCmd(run)
}

func (a *App) handleQueryExecuted(msg session.QueryExecuted) tea.Cmd {
	if !a.session.Queries.Resolve(msg) {
		return nil
	}

	log.Debug().
		Int("tab", msg.TabID).
		Dur("duration", msg.Duration).
		Msg("query finished")

	if !msg.ChangesSchema() || msg.ProjectID != a.session.ProjectID {
		return nil
	}

	// DDL changed the schema: reload the tree and the history
	return tea.Batch(
		asCmd(a.session.Navigator.Mount(a.ctx, a.session.ProjectID)),
		asCmd(a.session.History.Refresh(a.ctx)),
		a.setStatus("Schema changed, reloading structure"),
	)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.showError || a.showProjects || a.showQueryLog || a.state.ViewMode == models.HelpMode {
		return nil
	}

	if id, ok := a.tabBar.HandleMouseClick(msg, a.tabItems()); ok {
		a.session.Tabs.ActivateTab(id)
		a.state.FocusedPanel = models.RightPanel
		return nil
	}

	if tab := a.session.Tabs.ActiveTab(); tab != nil && tab.Kind == models.TabKindOverview {
		if a.overview.HandleMouseClick(msg) {
			a.state.FocusedPanel = models.RightPanel
		}
	}
	return nil
}

// toggleNode applies an expand or collapse from the tree
func (a *App) toggleNode(node *models.TreeNode) {
	switch node.Type {
	case models.TreeNodeTypeSchema:
		a.session.Navigator.ToggleSchema(node.Label)
	case models.TreeNodeTypeTable:
		if ref, ok := models.TableRefFromNode(node); ok {
			a.session.Navigator.ToggleTable(ref.Schema, ref.Table)
		}
	}
	a.refreshTree()
}

func (a *App) openTable(ref models.TableRef) tea.Cmd {
	_, run := a.session.OpenTable(a.ctx, ref.Schema, ref.Table)
	a.state.FocusedPanel = models.RightPanel
	a.refreshTree()
	return asCmd(run)
}

func (a *App) toggleFavorite(ref models.TableRef) tea.Cmd {
	on, err := a.session.Navigator.ToggleFavorite(ref)
	if err != nil {
		a.ShowError("Favourites", err.Error())
		return nil
	}
	a.refreshTree()
	if on {
		return a.setStatus(fmt.Sprintf("★ Added %s to favourites", ref))
	}
	return a.setStatus(fmt.Sprintf("Removed %s from favourites", ref))
}

// refreshTree hands the tree view a fresh snapshot
func (a *App) refreshTree() {
	a.treeView.SetRoot(a.session.Navigator.Tree())
}
