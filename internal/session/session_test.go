package session

import (
	"context"
	"testing"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	*fakeStructureFetcher
	*fakeQueryExecutor
	*fakeCommitFetcher
	*fakeProjects
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		fakeStructureFetcher: &fakeStructureFetcher{structure: sampleStructure()},
		fakeQueryExecutor:    &fakeQueryExecutor{result: &models.QueryResult{Rows: []map[string]any{{"id": 1}}}},
		fakeCommitFetcher:    &fakeCommitFetcher{total: 12},
		fakeProjects:         &fakeProjects{},
	}
}

func TestSession_OpenTableRunsDefaultQueryOnce(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, Options{DefaultLimit: 50})
	assert.NotEmpty(t, s.ID)

	load, history := s.SelectProject(context.Background(), 3)
	assert.Nil(t, history)
	require.True(t, s.Navigator.Resolve(load()))

	tab, run := s.OpenTable(context.Background(), "public", "users")
	require.NotNil(t, run)
	require.True(t, s.Queries.Resolve(run()))
	assert.Equal(t, []queryCall{{3, "SELECT * FROM public.users LIMIT 50"}}, gw.fakeQueryExecutor.calls)
	assert.True(t, s.Queries.Result(tab.ID).HasRows())

	s.NewQueryTab()
	again, run := s.OpenTable(context.Background(), "public", "users")
	assert.Nil(t, run, "an open overview keeps its result")
	assert.Equal(t, tab.ID, again.ID)
	assert.Equal(t, tab, s.Tabs.ActiveTab())
}

func TestSession_RunActive(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, Options{})
	s.SelectProject(context.Background(), 1)

	_, ok := s.RunActive(context.Background())
	assert.False(t, ok, "no active tab")

	tab := s.NewQueryTab()
	s.Queries.SetText(tab.ID, "select 1")
	run, ok := s.RunActive(context.Background())
	require.True(t, ok)
	require.True(t, s.Queries.Resolve(run()))

	require.True(t, s.CloseTab(tab.ID))
	assert.Empty(t, s.Queries.Text(tab.ID))
}

func TestSession_SelectProjectWithHistoryOpen(t *testing.T) {
	loc, err := ParseLocation("/projects?history=1")
	require.NoError(t, err)
	gw := newFakeGateway()
	s := New(gw, Options{Location: loc})

	s.SelectProject(context.Background(), 1)
	load := s.History.Sync(context.Background())
	require.NotNil(t, load)
	require.True(t, s.History.Resolve(load()))

	_, history := s.SelectProject(context.Background(), 2)
	require.NotNil(t, history)
	require.True(t, s.History.Resolve(history()))
	assert.Equal(t, 2, s.History.Commits()[0].ProjectID)
}

func TestSession_CloseDropsInFlightResults(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw, Options{})
	load, _ := s.SelectProject(context.Background(), 1)
	tab := s.NewQueryTab()
	s.Queries.SetText(tab.ID, "select 1")
	run, _ := s.RunActive(context.Background())

	s.Close()

	assert.False(t, s.Navigator.Resolve(load()))
	assert.False(t, s.Queries.Resolve(run()))
}
