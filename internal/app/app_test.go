package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazybrowse/internal/config"
	"github.com/rebeliceyang/lazybrowse/internal/favorites"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/querylog"
	"github.com/rebeliceyang/lazybrowse/internal/session"
	"github.com/rebeliceyang/lazybrowse/internal/ui/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

type fakeGateway struct {
	mu             sync.Mutex
	queries        []string
	structureCalls int
	commitCalls    int
	queryErr       error
}

func (g *fakeGateway) FetchStructure(ctx context.Context, projectID int) (*models.DatabaseStructure, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.structureCalls++
	return &models.DatabaseStructure{Schemas: []models.Schema{{
		Name: "public",
		Tables: []models.Table{
			{Name: "users", Columns: []models.Column{{Name: "id", DataType: "integer"}}},
			{Name: "orders"},
		},
	}}}, nil
}

func (g *fakeGateway) ExecuteQuery(ctx context.Context, projectID int, query string) (*models.QueryResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	if strings.HasPrefix(query, "CREATE") {
		return &models.QueryResult{}, nil
	}
	return &models.QueryResult{Rows: []map[string]any{{"id": 1}, {"id": 2}}}, nil
}

func (g *fakeGateway) FetchCommits(ctx context.Context, projectID, offset, limit int) (*models.CommitPage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commitCalls++
	return &models.CommitPage{
		Commits:    []models.Commit{{ID: 3, Checksum: "abc", Title: "add users", ActionType: models.ActionIncremental}},
		TotalCount: 1,
	}, nil
}

func (g *fakeGateway) ListProjects(ctx context.Context) ([]models.ProjectWithUsers, error) {
	return []models.ProjectWithUsers{
		{Project: models.Project{ID: 7, Name: "shop"}},
		{Project: models.Project{ID: 8, Name: "blog"}},
	}, nil
}

func (g *fakeGateway) GetProject(ctx context.Context, projectID int) (*models.ProjectWithUsers, error) {
	return &models.ProjectWithUsers{Project: models.Project{ID: projectID, Name: "shop"}}, nil
}

func (g *fakeGateway) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.ProjectWithUsers, error) {
	return nil, errors.New("not supported")
}

func (g *fakeGateway) TestConnection(ctx context.Context, auth models.DatabaseAuth) (bool, error) {
	return true, nil
}

func (g *fakeGateway) executed() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}

// collect runs cmd and returns the messages it produced. Commands that do not
// finish promptly, such as timers, are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// pump feeds the messages of cmd back into the app until it settles
func pump(a *App, cmd tea.Cmd) {
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case spinner.TickMsg, statusExpiredMsg, tea.QuitMsg:
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, collect(next)...)
	}
}

func press(a *App, keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := a.Update(k)
		pump(a, cmd)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type testEnv struct {
	app      *App
	gw       *fakeGateway
	location *session.MemoryLocation
	store    *querylog.Store
}

func newTestApp(t *testing.T, projectID int) *testEnv {
	t.Helper()
	dir := t.TempDir()

	favs, err := favorites.NewManager(dir)
	require.NoError(t, err)

	store, err := querylog.NewStore(filepath.Join(dir, "queries.db"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.GetDefaults()
	cfg.History.PersistLocation = true

	gw := &fakeGateway{}
	loc := session.NewMemoryLocation("/")
	s := session.New(gw, session.Options{Location: loc, Favorites: favs, Recorder: store})

	a := New(Options{Config: cfg, Session: s, Location: loc, QueryLog: store, ProjectID: projectID})
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return &testEnv{app: a, gw: gw, location: loc, store: store}
}

func TestApp_StartsWithProjectPicker(t *testing.T) {
	env := newTestApp(t, 0)

	pump(env.app, env.app.Init())

	assert.True(t, env.app.showProjects)
	assert.Len(t, env.app.projectDialog.Projects, 2)
	assert.Contains(t, env.app.View(), "shop")

	_, cmd := env.app.Update(components.ProjectSelectedMsg{ProjectID: 8})
	pump(env.app, cmd)

	assert.False(t, env.app.showProjects)
	assert.Equal(t, 8, env.app.session.ProjectID)
}

func TestApp_SelectProjectLoadsStructure(t *testing.T) {
	env := newTestApp(t, 7)

	pump(env.app, env.app.Init())

	assert.Equal(t, session.StructureReady, env.app.session.Navigator.State())
	assert.Equal(t, "shop", env.app.projectName)

	view := env.app.View()
	assert.Contains(t, view, "public")
	assert.Contains(t, view, "lazybrowse · shop")
	assert.Contains(t, view, "Tables (2)")
}

func TestApp_OpenTableRunsDefaultQuery(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	_, cmd := env.app.Update(components.TreeOpenTableMsg{Ref: models.TableRef{Schema: "public", Table: "users"}})
	pump(env.app, cmd)

	tab := env.app.session.Tabs.ActiveTab()
	require.NotNil(t, tab)
	assert.Equal(t, models.TabKindOverview, tab.Kind)
	assert.Equal(t, []string{"SELECT * FROM public.users LIMIT 500"}, env.gw.executed())
	assert.Equal(t, models.RightPanel, env.app.state.FocusedPanel)

	assert.Len(t, env.app.session.Queries.Result(tab.ID).Rows, 2)
	assert.Contains(t, env.app.View(), "row 1 of 2")

	// Reopening an already loaded table does not query again
	_, cmd = env.app.Update(components.TreeOpenTableMsg{Ref: models.TableRef{Schema: "public", Table: "users"}})
	pump(env.app, cmd)
	assert.Len(t, env.gw.executed(), 1)
	assert.Equal(t, 1, env.app.session.Tabs.Len())
}

func TestApp_QueryTabRunsEditorText(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.True(t, env.app.editor.Focused())

	press(env.app, runes("SELECT 1"), tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.False(t, env.app.editor.Focused())
	assert.Equal(t, []string{"SELECT 1"}, env.gw.executed())

	tab := env.app.session.Tabs.ActiveTab()
	require.NotNil(t, tab)
	assert.Equal(t, "SELECT 1", env.app.session.Queries.Text(tab.ID))
	require.NotNil(t, env.app.session.Queries.Result(tab.ID))

	entries, err := env.store.Recent(7, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT 1", entries[0].Query)
}

func TestApp_RunWithBlankTextDoesNothing(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlN}, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Empty(t, env.gw.executed())
	assert.Equal(t, "Nothing to run", env.app.statusMessage)
}

func TestApp_CellPreview(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlN}, runes("SELECT id FROM users"), tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, models.RightPanel, env.app.state.FocusedPanel)
	assert.NotContains(t, env.app.View(), "Preview: id")

	press(env.app, runes("v"))
	assert.Contains(t, env.app.View(), "Preview: id")

	press(env.app, runes("P"))
	assert.Equal(t, "Not a JSON value", env.app.statusMessage)

	press(env.app, runes("v"))
	assert.NotContains(t, env.app.View(), "Preview: id")
}

func TestApp_SchemaChangeReloadsStructure(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())
	require.Equal(t, 1, env.gw.structureCalls)

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlN}, runes("CREATE TABLE t (id int)"), tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, 2, env.gw.structureCalls)
	assert.Equal(t, "Schema changed, reloading structure", env.app.statusMessage)
}

func TestApp_NetworkErrorBecomesResultMessage(t *testing.T) {
	env := newTestApp(t, 7)
	env.gw.queryErr = errors.New("connection refused")
	pump(env.app, env.app.Init())

	press(env.app, tea.KeyMsg{Type: tea.KeyCtrlN}, runes("SELECT 1"), tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Contains(t, env.app.View(), session.NetworkErrorMessage)
}

func TestApp_HistoryFollowsLocation(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())
	assert.Equal(t, 0, env.gw.commitCalls)

	press(env.app, runes("H"))

	assert.True(t, env.app.session.History.IsOpen())
	assert.Equal(t, "/?history=1", env.location.String())
	assert.Equal(t, 1, env.gw.commitCalls)
	assert.Contains(t, env.app.View(), "add users")

	_, cmd := env.app.Update(components.HistorySelectMsg{Key: "3"})
	pump(env.app, cmd)
	assert.Equal(t, "/?commit=3&history=1", env.location.String())
	require.NotNil(t, env.app.session.History.Selected())

	// Back twice returns to the closed state
	press(env.app, runes("<"), runes("<"))
	assert.False(t, env.app.session.History.IsOpen())

	press(env.app, runes(">"))
	assert.True(t, env.app.session.History.IsOpen())
	assert.Equal(t, 2, env.gw.commitCalls)
}

func TestApp_FavoriteToggle(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	ref := models.TableRef{Schema: "public", Table: "orders"}
	_, cmd := env.app.Update(components.TreeFavoriteMsg{Ref: ref})
	pump(env.app, cmd)

	assert.True(t, env.app.session.Navigator.IsFavorite(ref))
	assert.Contains(t, env.app.statusMessage, "Added public.orders")
}

func TestApp_TreeFilter(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())
	env.app.state.FocusedPanel = models.LeftPanel

	press(env.app, runes("/"))
	require.True(t, env.app.searchInput.Focused())

	press(env.app, runes("ord"))
	assert.Equal(t, "ord", env.app.session.Navigator.Filter())

	view := env.app.View()
	assert.Contains(t, view, "orders")
	assert.NotContains(t, view, "users")

	press(env.app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", env.app.session.Navigator.Filter())
	assert.False(t, env.app.searchInput.Focused())
}

func TestApp_QuitPersistsLocation(t *testing.T) {
	env := newTestApp(t, 7)
	pump(env.app, env.app.Init())

	press(env.app, runes("H"))

	// q inside the history view closes it, so quit from the tree
	env.app.state.FocusedPanel = models.LeftPanel
	_, cmd := env.app.Update(runes("q"))
	require.NotNil(t, cmd)

	raw, ok, err := env.store.LoadLocation(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/?history=1", raw)
}

func TestApp_RestoresPersistedLocation(t *testing.T) {
	env := newTestApp(t, 0)
	require.NoError(t, env.store.SaveLocation(7, "/?history=1"))

	_, cmd := env.app.Update(components.ProjectSelectedMsg{ProjectID: 7})
	pump(env.app, cmd)

	assert.True(t, env.app.session.History.IsOpen())
	assert.Equal(t, 1, env.gw.commitCalls)
}

func TestApp_RestoredCommitWithoutHistoryIsDropped(t *testing.T) {
	env := newTestApp(t, 0)
	require.NoError(t, env.store.SaveLocation(7, "/?commit=5"))

	_, cmd := env.app.Update(components.ProjectSelectedMsg{ProjectID: 7})
	pump(env.app, cmd)

	assert.Equal(t, "/", env.location.String())
	assert.False(t, env.location.Back(), "no location entry is pushed for a dropped commit")
	assert.False(t, env.app.session.History.IsOpen())
	assert.Equal(t, 0, env.gw.commitCalls)
}

func TestApp_ErrorOverlay(t *testing.T) {
	env := newTestApp(t, 7)

	env.app.Update(ErrorMsg{Title: "Boom", Message: "it broke"})
	assert.Contains(t, env.app.View(), "it broke")

	press(env.app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, env.app.showError)
}

func TestApp_FormatStatusBar(t *testing.T) {
	env := newTestApp(t, 7)
	env.app.state.Width = 24

	got := env.app.formatStatusBar("left side", "right")
	assert.Equal(t, 20, len([]rune(got)))
	assert.True(t, strings.HasPrefix(got, "left side"))
	assert.True(t, strings.HasSuffix(got, "right"))

	truncated := env.app.formatStatusBar(strings.Repeat("x", 30), "right")
	assert.True(t, strings.HasSuffix(truncated, "right"))
	assert.True(t, strings.Contains(truncated, "…"))
}
