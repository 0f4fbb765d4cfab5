package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazybrowse/internal/config"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/querylog"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/rebeliceyang/lazybrowse/internal/ui/components"
	"github.com/rebeliceyang/lazybrowse/internal/ui/help"
	"github.com/rebeliceyang/lazybrowse/internal/ui/theme"
	"github.com/rs/zerolog/log"
)

const statusTimeout = 4 * time.Second

// Options wires an App to its session and stores
type Options struct {
	Config   *config.Config
	Session  *session.Session
	Location *session.MemoryLocation

	// QueryLog backs the query log dialog and location persistence. Optional.
	QueryLog *querylog.Store

	// ProjectID is opened on start. Zero shows the project picker.
	ProjectID int

	// PinnedLocation is set when the location came from the command line and
	// must not be replaced by the persisted one.
	PinnedLocation bool
}

// App is the main application model
type App struct {
	state      models.AppState
	config     *config.Config
	theme      theme.Theme
	leftPanel  components.Panel
	rightPanel components.Panel

	ctx    context.Context
	cancel context.CancelFunc

	session        *session.Session
	location       *session.MemoryLocation
	queryLog       *querylog.Store
	initialProject int
	pinnedLocation bool
	projectName    string

	// Project picker
	showProjects  bool
	projectDialog *components.ProjectDialog

	// Query log dialog
	showQueryLog   bool
	queryLogDialog *components.QueryLogDialog

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay

	// Navigation tree
	treeView    *components.TreeView
	searchInput *components.SearchInput

	// Right panel
	tabBar      *components.TabBar
	editor      *components.QueryEditor
	editorTabID int
	resultView  *components.TableView
	preview     *components.CellPreview
	overview    *components.OverviewView
	historyView *components.HistoryView

	// Content shown in resultView and overview, to reset selection only on change
	shownTabID  int
	shownResult *models.QueryResult

	spinner       spinner.Model
	statusMessage string
	statusSeq     int
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}

	state := models.NewAppState()
	if cfg.UI.PanelWidthRatio > 0 && cfg.UI.PanelWidthRatio < 100 {
		state.LeftPanelWidth = cfg.UI.PanelWidthRatio
	}

	th := theme.GetTheme(cfg.UI.Theme)

	loc := opts.Location
	if loc == nil {
		loc = session.NewMemoryLocation("/")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Info)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		state:          state,
		config:         cfg,
		theme:          th,
		ctx:            ctx,
		cancel:         cancel,
		session:        opts.Session,
		location:       loc,
		queryLog:       opts.QueryLog,
		initialProject: opts.ProjectID,
		pinnedLocation: opts.PinnedLocation,
		projectDialog:  components.NewProjectDialog(th),
		queryLogDialog: components.NewQueryLogDialog(th),
		errorOverlay:   components.NewErrorOverlay(th),
		treeView:       components.NewTreeView(models.NewStructureRoot(), th),
		searchInput:    components.NewSearchInput(th),
		tabBar:         components.NewTabBar(th),
		editor:         components.NewQueryEditor(th),
		resultView:     components.NewTableView(th),
		preview:        components.NewCellPreview(th),
		overview:       components.NewOverviewView(th),
		historyView:    components.NewHistoryView(th),
		spinner:        sp,
		leftPanel:      components.Panel{Title: "Tables", Theme: th},
		rightPanel:     components.Panel{Title: "Content", Theme: th},
	}
	app.resultView.SetResult(nil)

	app.updatePanelDimensions()
	app.updatePanelStyles()

	return app
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.initialProject != 0 {
		return tea.Batch(a.spinner.Tick, a.selectProject(a.initialProject))
	}
	return tea.Batch(a.spinner.Tick, a.openProjectPicker())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case statusExpiredMsg:
		if msg.seq == a.statusSeq {
			a.statusMessage = ""
		}
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case session.StructureLoaded:
		if a.session.Navigator.Resolve(msg) {
			a.refreshTree()
			if msg.Err != nil {
				return a, a.setStatus("Failed to load structure: " + msg.Err.Error())
			}
		}
		return a, nil

	case session.QueryExecuted:
		return a, a.handleQueryExecuted(msg)

	case session.CommitsLoaded:
		a.session.History.Resolve(msg)
		return a, nil

	case projectsLoadedMsg:
		a.projectDialog.SetProjects(msg.projects, msg.err)
		return a, nil

	case projectLoadedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Int("project", msg.projectID).Msg("failed to load project details")
			return a, nil
		}
		if msg.projectID == a.session.ProjectID && msg.project != nil {
			a.projectName = msg.project.Project.Name
		}
		return a, nil

	case queryLogLoadedMsg:
		if msg.err != nil {
			return a, a.setStatus("Failed to read query log: " + msg.err.Error())
		}
		a.queryLogDialog.SetEntries(msg.entries)
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.ShowError("Export Failed", msg.err.Error())
			return a, nil
		}
		return a, a.setStatus("✓ Exported to " + msg.path)

	// Tree intents
	case components.TreeToggleMsg:
		a.toggleNode(msg.Node)
		return a, nil

	case components.TreeOpenTableMsg:
		return a, a.openTable(msg.Ref)

	case components.TreeFavoriteMsg:
		return a, a.toggleFavorite(msg.Ref)

	// Tree filter
	case components.SearchInputMsg:
		a.session.Navigator.SetFilter(msg.Query)
		a.refreshTree()
		return a, nil

	case components.SearchScopeMsg:
		scope := a.session.Navigator.CycleScope()
		a.searchInput.Scope = scope.String()
		a.refreshTree()
		return a, nil

	case components.CloseSearchMsg:
		if msg.Clear {
			a.session.Navigator.SetFilter("")
			a.refreshTree()
		}
		a.state.ViewMode = models.NormalMode
		return a, nil

	// History intents
	case components.HistorySelectMsg:
		a.session.History.SelectCommit(msg.Key)
		return a, a.syncHistory()

	case components.HistoryBackMsg:
		a.session.History.ClearSelection()
		return a, a.syncHistory()

	case components.HistoryCloseMsg:
		a.session.History.Close()
		a.historyView.Reset()
		return a, a.syncHistory()

	case components.HistoryLoadMoreMsg:
		return a, asCmd(a.session.History.LoadMore(a.ctx))

	case components.HistoryRefreshMsg:
		return a, asCmd(a.session.History.Refresh(a.ctx))

	case components.HistorySearchMsg:
		a.session.History.SetSearchInput(msg.Text)
		return a, nil

	// Project picker
	case components.ProjectSelectedMsg:
		a.showProjects = false
		if msg.ProjectID == a.session.ProjectID {
			return a, nil
		}
		return a, a.selectProject(msg.ProjectID)

	case components.CloseProjectDialogMsg:
		if a.session.ProjectID == 0 {
			return a, a.quit()
		}
		a.showProjects = false
		return a, nil

	// Query log
	case components.QueryLogSearchMsg:
		return a, a.loadQueryLog(msg.Text)

	case components.ReuseQueryMsg:
		a.showQueryLog = false
		tab := a.session.NewQueryTab()
		a.session.Queries.SetText(tab.ID, msg.Query)
		return a, a.startEditing()

	case components.CloseQueryLogMsg:
		a.showQueryLog = false
		return a, nil
	}

	if a.editor.Focused() {
		return a, a.updateEditor(msg)
	}
	if a.searchInput.Focused() {
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

// View implements tea.Model
func (a *App) View() string {
	return zone.Scan(a.render())
}

func (a *App) render() string {
	// If error overlay is showing, render it centered on top of everything
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.showProjects {
		a.projectDialog.Spinner = a.spinner.View()
		a.projectDialog.Width = min(70, max(a.state.Width-4, 20))
		a.projectDialog.Height = min(20, max(a.state.Height-2, 8))
		return a.renderDialog(a.projectDialog.View())
	}

	if a.showQueryLog {
		a.queryLogDialog.Width = min(100, max(a.state.Width-4, 20))
		a.queryLogDialog.Height = max(a.state.Height-4, 8)
		return a.renderDialog(a.queryLogDialog.View())
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return a.renderNormalView()
}

// renderDialog centers a dialog on screen
func (a *App) renderDialog(dialog string) string {
	return lipgloss.Place(
		a.state.Width, a.state.Height,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

// renderNormalView renders the normal application view
func (a *App) renderNormalView() string {
	topBarLeft := "lazybrowse"
	if a.projectName != "" {
		topBarLeft += " · " + a.projectName
	} else if a.session.ProjectID != 0 {
		topBarLeft += fmt.Sprintf(" · project %d", a.session.ProjectID)
	}
	topBarContent := a.formatStatusBar(topBarLeft, a.location.String())

	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(topBarContent)

	bottomBarLeft := a.statusMessage
	if bottomBarLeft == "" {
		bottomBarLeft = a.keyHints()
	}
	bottomBarRight := "? Help"
	if a.busy() {
		bottomBarRight = a.spinner.View() + " " + bottomBarRight
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomBarLeft, bottomBarRight))

	a.updatePanelStyles()
	a.leftPanel.Content = a.renderLeftPanel()
	a.rightPanel.Content = a.renderRightPanel()

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.leftPanel.View(),
		a.rightPanel.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		panels,
		bottomBar,
	)
}

func (a *App) renderLeftPanel() string {
	a.searchInput.Width = a.leftPanel.Width
	search := a.searchInput.View()

	nav := a.session.Navigator
	a.leftPanel.Title = "Tables"
	if n := nav.Structure().TableCount(); n > 0 {
		a.leftPanel.Title = fmt.Sprintf("Tables (%d)", n)
	}
	switch nav.State() {
	case session.StructureLoading:
		a.treeView.EmptyText = a.spinner.View() + " Loading structure..."
	case session.StructureMissing:
		a.treeView.EmptyText = session.NoStructureMessage
	case session.StructureIdle:
		a.treeView.EmptyText = "No project selected"
	default:
		a.treeView.EmptyText = "No tables"
		if nav.Filtering() {
			a.treeView.EmptyText = "No matching tables"
		}
	}

	// Panel title takes one line
	a.treeView.Width = a.leftPanel.Width
	a.treeView.Height = max(a.leftPanel.Height-lipgloss.Height(search)-1, 1)

	return lipgloss.JoinVertical(lipgloss.Left, search, a.treeView.View())
}

func (a *App) renderRightPanel() string {
	width := a.rightPanel.Width
	// Panel title takes one line
	height := max(a.rightPanel.Height-1, 1)

	if a.session.History.IsOpen() {
		a.rightPanel.Title = "History"
		a.historyView.Width = width
		a.historyView.Height = height
		a.historyView.Spinner = a.spinner.View()
		return a.historyView.View(a.historySnapshot())
	}

	items := a.tabItems()
	active, _ := a.session.Tabs.ActiveIndex()
	bar := a.tabBar.View(items, active)
	contentHeight := max(height-lipgloss.Height(bar), 1)

	tab := a.session.Tabs.ActiveTab()
	a.syncContent(tab)

	var content string
	switch {
	case tab == nil:
		a.rightPanel.Title = "Content"
		content = lipgloss.NewStyle().
			Foreground(a.theme.Muted).
			Italic(true).
			Render("Select a table to view its data")

	case tab.Kind == models.TabKindOverview:
		a.rightPanel.Title = tab.Name
		a.overview.Width = width
		a.overview.Height = contentHeight
		content = a.overview.View()
		if a.session.Queries.Running(tab.ID) {
			content = a.spinner.View() + " Loading...\n" + content
		}

	default:
		a.rightPanel.Title = tab.Name
		editorHeight := max(int(float64(contentHeight)*a.editor.HeightRatio()), 3)
		a.editor.Width = width
		a.editor.Height = editorHeight
		a.preview.Width = width
		a.preview.MaxHeight = max(contentHeight/3, 6)
		a.resultView.Width = width
		a.resultView.Height = max(contentHeight-editorHeight-a.preview.Height(), 1)

		results := a.resultView.View()
		if a.session.Queries.Running(tab.ID) {
			results = a.spinner.View() + " Running query..."
		}
		parts := []string{a.editor.View(), results}
		if a.preview.Visible {
			column, value, _ := a.resultView.SelectedCell()
			a.preview.SetContent(value, column)
			parts = append(parts, a.preview.View())
		}
		content = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, bar, content)
}

// syncContent points the result views at the active tab. Selections reset
// only when the tab or its result changes.
func (a *App) syncContent(tab *models.Tab) {
	if tab == nil {
		a.shownTabID = 0
		a.shownResult = nil
		return
	}

	if tab.Kind == models.TabKindQuery && a.editorTabID != tab.ID {
		a.editorTabID = tab.ID
		a.editor.SetValue(a.session.Queries.Text(tab.ID))
	}

	result := a.session.Queries.Result(tab.ID)
	if tab.ID == a.shownTabID && result == a.shownResult {
		return
	}
	a.shownTabID = tab.ID
	a.shownResult = result

	if tab.Kind == models.TabKindOverview {
		ref := tab.Ref()
		var table *models.Table
		if structure := a.session.Navigator.Structure(); structure != nil {
			table = structure.FindTable(ref)
		}
		a.overview.SetTable(ref, table)
		a.overview.SetResult(result)
		return
	}
	a.resultView.SetResult(result)
}

func (a *App) tabItems() []components.TabBarItem {
	tabs := a.session.Tabs.Tabs()
	items := make([]components.TabBarItem, 0, len(tabs))
	for _, tab := range tabs {
		rows := -1
		if result := a.session.Queries.Result(tab.ID); result != nil {
			rows = len(result.Rows)
		}
		items = append(items, components.TabBarItem{
			Tab:     *tab,
			Running: a.session.Queries.Running(tab.ID),
			Rows:    rows,
		})
	}
	return items
}

func (a *App) historySnapshot() components.HistorySnapshot {
	h := a.session.History
	return components.HistorySnapshot{
		Commits:  h.Filtered(),
		Total:    h.TotalCount(),
		Loading:  h.Loading(),
		HasMore:  h.HasMore(),
		Err:      h.Err(),
		Selected: h.Selected(),
	}
}

func (a *App) busy() bool {
	if a.session.Navigator.State() == session.StructureLoading || a.session.History.Loading() {
		return true
	}
	for _, tab := range a.session.Tabs.Tabs() {
		if a.session.Queries.Running(tab.ID) {
			return true
		}
	}
	return false
}

func (a *App) keyHints() string {
	switch {
	case a.session.History.IsOpen():
		return "enter:open  m:more  /:filter  esc:close"
	case a.editor.Focused():
		return "ctrl+r:run  esc:stop editing"
	case a.searchInput.Focused():
		return "tab:scope  enter:keep  esc:clear"
	case a.state.FocusedPanel == models.LeftPanel:
		return "enter:open  f:favourite  /:filter  tab:switch  q:quit"
	default:
		return "i:edit  ctrl+r:run  y:copy  v:preview  e:export  tab:switch  q:quit"
	}
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// Top bar, bottom bar and the panel borders
	contentHeight := max(a.state.Height-4, 5)

	leftWidth := max((a.state.Width*a.state.LeftPanelWidth)/100, 20)

	// Subtract 4 to account for borders on both panels (2 chars each)
	rightWidth := a.state.Width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = a.state.Width - rightWidth - 4
	}

	a.leftPanel.Width = leftWidth
	a.leftPanel.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

// updatePanelStyles updates panel styling based on focus
func (a *App) updatePanelStyles() {
	a.leftPanel.Focused = a.state.FocusedPanel == models.LeftPanel
	a.rightPanel.Focused = a.state.FocusedPanel == models.RightPanel
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return runewidth.Truncate(left, availableWidth-rightLen, "…") + right
		}
		return runewidth.Truncate(left, availableWidth, "…")
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
