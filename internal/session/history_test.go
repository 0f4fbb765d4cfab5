package session

import (
	"context"
	"testing"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowser(total int) (*HistoryBrowser, *fakeCommitFetcher, *MemoryLocation) {
	fetcher := &fakeCommitFetcher{total: total}
	loc := NewMemoryLocation("/projects/1")
	h := NewHistoryBrowser(fetcher, loc)
	h.SetProject(context.Background(), 1)
	return h, fetcher, loc
}

// openBrowser opens history and applies its first page
func openBrowser(t *testing.T, h *HistoryBrowser) {
	t.Helper()
	h.Open()
	load := h.Sync(context.Background())
	require.NotNil(t, load)
	require.True(t, h.Resolve(load()))
}

func keys(commits []models.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Key())
	}
	return out
}

func TestOpen_FetchesFirstPage(t *testing.T) {
	h, fetcher, loc := newBrowser(25)

	assert.False(t, h.IsOpen())
	assert.Nil(t, h.Sync(context.Background()), "closed browser fetches nothing")

	h.Open()
	assert.Equal(t, "/projects/1?history=1", loc.String())

	load := h.Sync(context.Background())
	require.NotNil(t, load)
	assert.True(t, h.Loading())
	require.True(t, h.Resolve(load()))

	assert.False(t, h.Loading())
	assert.Equal(t, []commitCall{{1, 0, 10}}, fetcher.calls)
	assert.Len(t, h.Commits(), 10)
	assert.Equal(t, 25, h.TotalCount())
	assert.True(t, h.HasMore())
}

func TestLoadMore_TwiceAppendsInRequestOrder(t *testing.T) {
	h, fetcher, _ := newBrowser(25)
	openBrowser(t, h)

	second := h.LoadMore(context.Background())
	third := h.LoadMore(context.Background())
	assert.Equal(t, 20, h.Offset())

	// responses land out of order
	thirdMsg := third()
	secondMsg := second()
	require.True(t, h.Resolve(thirdMsg))
	assert.Len(t, h.Commits(), 10, "later page waits for the earlier one")
	assert.True(t, h.Loading())
	require.True(t, h.Resolve(secondMsg))

	assert.Len(t, h.Commits(), 10+10+5)
	assert.Equal(t, "25", h.Commits()[0].Key())
	assert.Equal(t, "15", h.Commits()[10].Key())
	assert.Equal(t, "5", h.Commits()[20].Key())
	assert.Equal(t, []commitCall{{1, 0, 10}, {1, 10, 10}, {1, 20, 10}}, fetcher.calls)
	assert.False(t, h.HasMore())
	assert.False(t, h.Loading())
}

func TestLoadMore_FromOffsetZeroAccumulatesBothPages(t *testing.T) {
	h, _, _ := newBrowser(100)
	h.Open()
	first := h.Sync(context.Background())
	a := h.LoadMore(context.Background())
	b := h.LoadMore(context.Background())

	require.True(t, h.Resolve(first()))
	require.True(t, h.Resolve(a()))
	require.True(t, h.Resolve(b()))

	assert.Len(t, h.Commits(), 30)
}

func TestLoadMore_FailedPageDoesNotBlockLaterPages(t *testing.T) {
	h, fetcher, _ := newBrowser(40)
	fetcher.fail = map[int]bool{10: true}
	openBrowser(t, h)

	failed := h.LoadMore(context.Background())
	later := h.LoadMore(context.Background())
	require.True(t, h.Resolve(later()))
	require.True(t, h.Resolve(failed()))

	assert.Len(t, h.Commits(), 20)
	assert.ErrorIs(t, h.Err(), errTransport)
}

func TestRefresh_ReplacesList(t *testing.T) {
	h, fetcher, _ := newBrowser(25)
	openBrowser(t, h)
	require.True(t, h.Resolve(h.LoadMore(context.Background())()))
	require.Len(t, h.Commits(), 20)

	fetcher.total = 26
	refresh := h.Refresh(context.Background())
	assert.Equal(t, 0, h.Offset())
	require.True(t, h.Resolve(refresh()))

	assert.Len(t, h.Commits(), 10, "offset 0 replaces the accumulated list")
	assert.Equal(t, "26", h.Commits()[0].Key())
	assert.Equal(t, 26, h.TotalCount())
}

func TestRefresh_DropsPagesOfPreviousGeneration(t *testing.T) {
	h, _, _ := newBrowser(25)
	openBrowser(t, h)

	stale := h.LoadMore(context.Background())
	refresh := h.Refresh(context.Background())

	staleMsg := stale()
	assert.False(t, h.Resolve(staleMsg))
	require.True(t, h.Resolve(refresh()))
	assert.Len(t, h.Commits(), 10)
}

func TestClose_ClearsCommitAndLocalState(t *testing.T) {
	h, _, loc := newBrowser(25)
	openBrowser(t, h)
	h.SelectCommit("25")
	h.SetSearchInput("add")
	pending := h.LoadMore(context.Background())

	h.Close()
	assert.Equal(t, "/projects/1", loc.String())
	assert.Nil(t, h.Sync(context.Background()))

	assert.False(t, h.IsOpen())
	_, selected := h.SelectedCommit()
	assert.False(t, selected)
	assert.Empty(t, h.Commits())
	assert.Empty(t, h.SearchInput())
	assert.Equal(t, 0, h.Offset())
	assert.False(t, h.Resolve(pending()), "closing cancels pages in flight")
}

func TestReopen_StartsFromFirstPage(t *testing.T) {
	h, fetcher, _ := newBrowser(25)
	openBrowser(t, h)
	require.True(t, h.Resolve(h.LoadMore(context.Background())()))

	h.Toggle()
	h.Sync(context.Background())
	h.Toggle()
	load := h.Sync(context.Background())
	require.NotNil(t, load)
	assert.Empty(t, h.Commits())
	require.True(t, h.Resolve(load()))

	assert.Len(t, h.Commits(), 10)
	assert.Equal(t, commitCall{1, 0, 10}, fetcher.calls[len(fetcher.calls)-1])
}

func TestSelectCommit(t *testing.T) {
	h, _, loc := newBrowser(25)

	h.SelectCommit("24")
	assert.Equal(t, "/projects/1?commit=24&history=1", loc.String(), "selecting opens history")
	require.True(t, h.Resolve(h.Sync(context.Background())()))

	id, ok := h.SelectedCommit()
	require.True(t, ok)
	assert.Equal(t, "24", id)
	require.NotNil(t, h.Selected())
	assert.Equal(t, "commit 24", h.Selected().Title)

	h.ClearSelection()
	assert.Equal(t, "/projects/1?history=1", loc.String())
	assert.True(t, h.IsOpen())
	assert.Nil(t, h.Selected())

	h.SelectCommit("")
	assert.Equal(t, "/projects/1?history=1", loc.String())
}

func TestBackForward_ResyncsState(t *testing.T) {
	h, _, loc := newBrowser(25)
	openBrowser(t, h)
	h.SelectCommit("23")

	require.True(t, loc.Back())
	assert.Nil(t, h.Sync(context.Background()), "still open, nothing refetched")
	_, ok := h.SelectedCommit()
	assert.False(t, ok)

	require.True(t, loc.Back())
	h.Sync(context.Background())
	assert.False(t, h.IsOpen())
	assert.Empty(t, h.Commits())

	require.True(t, loc.Forward())
	assert.NotNil(t, h.Sync(context.Background()), "re-entering open fetches again")
}

func TestSync_RemovesLingeringCommit(t *testing.T) {
	loc, err := ParseLocation("/p?commit=5")
	require.NoError(t, err)
	h := NewHistoryBrowser(&fakeCommitFetcher{}, loc)

	assert.Nil(t, h.Sync(context.Background()))
	assert.Equal(t, "/p", loc.String())
}

func TestClearingHistoryAlwaysClearsCommit(t *testing.T) {
	sequences := [][]func(h *HistoryBrowser){
		{func(h *HistoryBrowser) { h.SelectCommit("1") }, func(h *HistoryBrowser) { h.Close() }},
		{func(h *HistoryBrowser) { h.Open() }, func(h *HistoryBrowser) { h.SelectCommit("2") }, func(h *HistoryBrowser) { h.Toggle() }},
		{func(h *HistoryBrowser) { h.SelectCommit("3") }, func(h *HistoryBrowser) { h.ClearSelection() },
			func(h *HistoryBrowser) { h.SelectCommit("4") }, func(h *HistoryBrowser) { h.Close() }},
	}

	for _, seq := range sequences {
		h, _, loc := newBrowser(5)
		for _, step := range seq {
			step(h)
			h.Sync(context.Background())
		}
		assert.False(t, h.IsOpen())
		assert.False(t, loc.Query().Has(CommitParam))
	}
}

func TestSetProject_RestartsOpenBrowser(t *testing.T) {
	h, fetcher, _ := newBrowser(25)
	openBrowser(t, h)
	stale := h.LoadMore(context.Background())

	load := h.SetProject(context.Background(), 2)
	require.NotNil(t, load)
	assert.False(t, h.Resolve(stale()))
	require.True(t, h.Resolve(load()))

	assert.Equal(t, 2, h.Commits()[0].ProjectID)
	assert.Equal(t, commitCall{2, 0, 10}, fetcher.calls[len(fetcher.calls)-1])
	assert.Nil(t, h.SetProject(context.Background(), 2))
}

func TestFiltered_MatchesLocally(t *testing.T) {
	h, fetcher, _ := newBrowser(0)
	openBrowser(t, h)
	h.commits = []models.Commit{
		{ID: 1, Title: "Add users", Checksum: "aaa"},
		{ID: 2, Title: "Full Commit", UpScript: "CREATE TABLE orders"},
		{ID: 3, Message: "rename column", Checksum: "bbb"},
	}
	calls := len(fetcher.calls)

	h.SetSearchInput("ORDERS")
	assert.Equal(t, []string{"2"}, keys(h.Filtered()))
	h.SetSearchInput("bb")
	assert.Equal(t, []string{"3"}, keys(h.Filtered()))
	h.SetSearchInput("  ")
	assert.Len(t, h.Filtered(), 3)
	assert.Len(t, fetcher.calls, calls, "search issues no request")
}
