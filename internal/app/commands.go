package app

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazybrowse/internal/export"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/rs/zerolog/log"
)

// queryLogLimit bounds the entries shown in the query log dialog
const queryLogLimit = 200

type projectsLoadedMsg struct {
	projects []models.ProjectWithUsers
	err      error
}

type projectLoadedMsg struct {
	projectID int
	project   *models.ProjectWithUsers
	err       error
}

type queryLogLoadedMsg struct {
	entries []models.QueryLogEntry
	err     error
}

type exportDoneMsg struct {
	path string
	err  error
}

type statusExpiredMsg struct {
	seq int
}

// asCmd runs a session request off the event loop. A nil request is no command.
func asCmd[T any](run func() T) tea.Cmd {
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		return run()
	}
}

// setStatus shows msg in the bottom bar until it expires
func (a *App) setStatus(msg string) tea.Cmd {
	a.statusSeq++
	seq := a.statusSeq
	a.statusMessage = msg
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// selectProject points the session at projectID and starts its loads
func (a *App) selectProject(projectID int) tea.Cmd {
	a.saveLocation()

	closeAllTabs(a.session)
	a.projectName = ""
	a.searchInput.Reset()
	a.searchInput.Scope = a.session.Navigator.Scope().String()
	a.session.Navigator.SetFilter("")

	if !a.pinnedLocation {
		a.restoreLocation(projectID)
	}
	a.pinnedLocation = false

	loadStructure, loadCommits := a.session.SelectProject(a.ctx, projectID)
	a.treeView.SetRoot(a.session.Navigator.Tree())

	log.Info().Int("project", projectID).Str("session", a.session.ID).Msg("project selected")

	return tea.Batch(
		asCmd(loadStructure),
		asCmd(loadCommits),
		a.syncHistory(),
		a.loadProject(projectID),
	)
}

// closeAllTabs closes every tab of the previous project
func closeAllTabs(s *session.Session) {
	for _, tab := range s.Tabs.Tabs() {
		s.CloseTab(tab.ID)
	}
}

// syncHistory reconciles the history browser with the location
func (a *App) syncHistory() tea.Cmd {
	return asCmd(a.session.History.Sync(a.ctx))
}

func (a *App) openProjectPicker() tea.Cmd {
	a.showProjects = true
	a.projectDialog.Loading = true
	projects := a.session.Projects
	ctx := a.ctx
	return func() tea.Msg {
		list, err := projects.List(ctx)
		return projectsLoadedMsg{projects: list, err: err}
	}
}

func (a *App) loadProject(projectID int) tea.Cmd {
	projects := a.session.Projects
	ctx := a.ctx
	return func() tea.Msg {
		project, err := projects.EnsureLoaded(ctx, projectID)
		return projectLoadedMsg{projectID: projectID, project: project, err: err}
	}
}

func (a *App) openQueryLog() tea.Cmd {
	if a.queryLog == nil {
		return a.setStatus("Query log is disabled")
	}
	a.showQueryLog = true
	a.queryLogDialog.Reset()
	return a.loadQueryLog("")
}

func (a *App) loadQueryLog(text string) tea.Cmd {
	store := a.queryLog
	projectID := a.session.ProjectID
	return func() tea.Msg {
		if text == "" {
			entries, err := store.Recent(projectID, queryLogLimit)
			return queryLogLoadedMsg{entries: entries, err: err}
		}
		entries, err := store.Search(projectID, text, queryLogLimit)
		return queryLogLoadedMsg{entries: entries, err: err}
	}
}

// saveLocation persists the current location for the current project
func (a *App) saveLocation() {
	if a.queryLog == nil || !a.config.History.PersistLocation || a.session.ProjectID == 0 {
		return
	}
	if err := a.queryLog.SaveLocation(a.session.ProjectID, a.location.String()); err != nil {
		log.Warn().Err(err).Int("project", a.session.ProjectID).Msg("failed to save location")
	}
}

// restoreLocation replaces the location with the one saved for projectID
func (a *App) restoreLocation(projectID int) {
	if a.queryLog == nil || !a.config.History.PersistLocation {
		return
	}
	raw, ok, err := a.queryLog.LoadLocation(projectID)
	if err != nil {
		log.Warn().Err(err).Int("project", projectID).Msg("failed to load location")
		return
	}
	if !ok {
		return
	}
	restored, err := session.ParseLocation(raw)
	if err != nil {
		log.Warn().Err(err).Str("location", raw).Msg("ignoring invalid saved location")
		return
	}
	session.UpdateSearchParams(a.location, func(next url.Values) {
		for key := range next {
			next.Del(key)
		}
		for key, values := range restored.Query() {
			next[key] = values
		}
	})
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportResult writes the active tab's result to the working directory
func (a *App) exportResult(format string) tea.Cmd {
	tab := a.session.Tabs.ActiveTab()
	if tab == nil {
		return nil
	}
	result := a.session.Queries.Result(tab.ID)
	if !result.HasRows() {
		return a.setStatus("Nothing to export")
	}

	name := unsafeFileChars.ReplaceAllString(tab.Name, "_")
	path := filepath.Clean(fmt.Sprintf("%s-%s.%s", name, time.Now().Format("20060102-150405"), format))

	return func() tea.Msg {
		var err error
		if format == "json" {
			err = export.ExportToJSON(result, path)
		} else {
			err = export.ExportToCSV(result, path)
		}
		return exportDoneMsg{path: path, err: err}
	}
}

// quit persists the location and cancels everything in flight
func (a *App) quit() tea.Cmd {
	a.saveLocation()
	a.session.Close()
	a.cancel()
	return tea.Quit
}
