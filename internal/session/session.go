// Package session holds the browsing state of one user session: the open
// tabs, the schema tree, per-tab queries and the commit history browser.
//
// Session state is owned by the UI event loop. Operations that need the
// network return a closure to run elsewhere; its result goes back through
// the matching Resolve method on the event loop.
package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazybrowse/internal/models"
)

// DefaultQueryLimit is the row limit of an overview tab's first query
const DefaultQueryLimit = 500

// Gateway is everything the session needs from the API
type Gateway interface {
	StructureFetcher
	QueryExecutor
	CommitFetcher
	ProjectService
}

// Options customises a session
type Options struct {
	DefaultLimit int
	Location     Location
	Favorites    FavoriteStore
	Recorder     QueryRecorder
}

// Session owns one instance of each concern and their wiring
type Session struct {
	ID        string
	ProjectID int

	Tabs      *TabRegistry
	Navigator *Navigator
	Queries   *QueryPane
	History   *HistoryBrowser
	Projects  *ProjectCache
}

// New creates a session with no project selected
func New(gw Gateway, opts Options) *Session {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultQueryLimit
	}
	if opts.Location == nil {
		opts.Location = NewMemoryLocation("/")
	}

	tabs := NewTabRegistry()
	queries := NewQueryPane(gw, tabs, opts.DefaultLimit)
	if opts.Recorder != nil {
		queries.SetRecorder(opts.Recorder)
	}

	return &Session{
		ID:        uuid.NewString(),
		Tabs:      tabs,
		Navigator: NewNavigator(gw, tabs, opts.Favorites),
		Queries:   queries,
		History:   NewHistoryBrowser(gw, opts.Location),
		Projects:  NewProjectCache(gw),
	}
}

// SelectProject mounts the navigator on projectID and points the history
// browser at it. The returned history load is nil when history is closed.
func (s *Session) SelectProject(ctx context.Context, projectID int) (func() StructureLoaded, func() CommitsLoaded) {
	s.ProjectID = projectID
	return s.Navigator.Mount(ctx, projectID), s.History.SetProject(ctx, projectID)
}

// OpenTable opens the overview tab of a table. A tab without a result yet
// gets its default query, returned for the caller to run.
func (s *Session) OpenTable(ctx context.Context, schemaName, tableName string) (*models.Tab, func() QueryExecuted) {
	tab, created := s.Navigator.OpenTable(schemaName, tableName)
	if !created && (s.Queries.HasRun(tab.ID) || s.Queries.Running(tab.ID)) {
		return tab, nil
	}
	run, _ := s.Queries.RunDefault(ctx, s.ProjectID, tab)
	return tab, run
}

// NewQueryTab opens an empty query tab
func (s *Session) NewQueryTab() *models.Tab {
	return s.Tabs.CreateTab(models.TabKindQuery, "", "")
}

// RunActive runs the text of the active tab
func (s *Session) RunActive(ctx context.Context) (func() QueryExecuted, bool) {
	tab := s.Tabs.ActiveTab()
	if tab == nil {
		return nil, false
	}
	return s.Queries.Run(ctx, s.ProjectID, tab.ID)
}

// CloseTab closes a tab and drops its query state
func (s *Session) CloseTab(id int) bool {
	return s.Tabs.CloseTab(id)
}

// Close cancels every request in flight
func (s *Session) Close() {
	s.Navigator.Unmount()
	s.Queries.Close()
	s.History.Shutdown()
}
