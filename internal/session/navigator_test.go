package session

import (
	"context"
	"testing"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountedNavigator(t *testing.T) (*Navigator, *TabRegistry, *fakeFavorites) {
	t.Helper()
	tabs := NewTabRegistry()
	favs := newFakeFavorites()
	nav := NewNavigator(&fakeStructureFetcher{structure: sampleStructure()}, tabs, favs)
	require.True(t, nav.Resolve(nav.Mount(context.Background(), 1)()))
	require.Equal(t, StructureReady, nav.State())
	return nav, tabs, favs
}

func labels(nodes []*models.TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestMount_FetchesOncePerMount(t *testing.T) {
	fetcher := &fakeStructureFetcher{structure: sampleStructure()}
	nav := NewNavigator(fetcher, NewTabRegistry(), nil)

	load := nav.Mount(context.Background(), 7)
	assert.Equal(t, StructureLoading, nav.State())
	assert.Empty(t, fetcher.calls)

	msg := load()
	assert.Equal(t, []int{7}, fetcher.calls)
	assert.True(t, nav.Resolve(msg))
	assert.Equal(t, sampleStructure(), nav.Structure())

	nav.ToggleSchema("public")
	assert.Empty(t, fetcher.calls[1:], "expanding must not fetch")
}

func TestMount_FailureShowsMissingAndDoesNotRetry(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeStructureFetcher
	}{
		{"error", &fakeStructureFetcher{err: errTransport}},
		{"nil structure", &fakeStructureFetcher{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewNavigator(tt.fetcher, NewTabRegistry(), nil)
			assert.True(t, nav.Resolve(nav.Mount(context.Background(), 1)()))
			assert.Equal(t, StructureMissing, nav.State())
			assert.Nil(t, nav.Structure())
			assert.Empty(t, nav.Tree().Children)
			assert.Len(t, tt.fetcher.calls, 1)
		})
	}
}

func TestMount_SupersededLoadIsCancelledAndDropped(t *testing.T) {
	fetcher := &fakeStructureFetcher{structure: sampleStructure()}
	nav := NewNavigator(fetcher, NewTabRegistry(), nil)

	stale := nav.Mount(context.Background(), 1)
	fresh := nav.Mount(context.Background(), 2)

	freshMsg := fresh()
	staleMsg := stale()
	assert.ErrorIs(t, staleMsg.Err, context.Canceled)

	assert.True(t, nav.Resolve(freshMsg))
	assert.False(t, nav.Resolve(staleMsg))
	assert.Equal(t, StructureReady, nav.State())
	assert.Equal(t, 2, nav.ProjectID())
}

func TestUnmount_DropsInFlightLoad(t *testing.T) {
	nav := NewNavigator(&fakeStructureFetcher{structure: sampleStructure()}, NewTabRegistry(), nil)
	load := nav.Mount(context.Background(), 1)

	nav.Unmount()
	assert.False(t, nav.Resolve(load()))
	assert.Equal(t, StructureIdle, nav.State())
}

func TestToggleSchema_RoundTrip(t *testing.T) {
	nav, _, _ := mountedNavigator(t)

	assert.False(t, nav.SchemaExpanded("public"))
	nav.ToggleSchema("public")
	assert.True(t, nav.SchemaExpanded("public"))
	nav.ToggleSchema("public")
	assert.False(t, nav.SchemaExpanded("public"))
	assert.Empty(t, nav.expandedSchemas)
}

func TestToggleTable_KeyedBySchema(t *testing.T) {
	nav, _, _ := mountedNavigator(t)

	nav.ToggleTable("public", "users")
	assert.True(t, nav.TableExpanded("public", "users"))
	assert.False(t, nav.TableExpanded("audit", "users"))
}

func TestExpansionSurvivesRefetch(t *testing.T) {
	nav, _, _ := mountedNavigator(t)
	nav.ToggleSchema("public")
	nav.ToggleTable("public", "users")

	require.True(t, nav.Resolve(nav.Mount(context.Background(), 1)()))
	assert.True(t, nav.SchemaExpanded("public"))
	assert.True(t, nav.TableExpanded("public", "users"))

	require.True(t, nav.Resolve(nav.Mount(context.Background(), 2)()))
	assert.False(t, nav.SchemaExpanded("public"))
}

func TestTree_VisibilityFollowsExpansion(t *testing.T) {
	nav, _, _ := mountedNavigator(t)

	assert.Equal(t, []string{"public", "audit"}, labels(nav.Tree().Flatten()))

	nav.ToggleSchema("public")
	assert.Equal(t, []string{"public", "users", "orders", "audit"}, labels(nav.Tree().Flatten()))

	nav.ToggleTable("public", "users")
	nav.ToggleTable("audit", "users")
	assert.Equal(t,
		[]string{"public", "users", "id (int4)", "email (text)", "orders", "audit"},
		labels(nav.Tree().Flatten()),
		"columns of a collapsed schema stay hidden")
}

func TestTree_FilterExpandsMatchesWithoutMutatingSets(t *testing.T) {
	nav, _, _ := mountedNavigator(t)

	nav.SetFilter("ord")
	assert.True(t, nav.Filtering())
	assert.Equal(t, []string{"public", "orders"}, labels(nav.Tree().Flatten()))
	assert.False(t, nav.SchemaExpanded("public"))

	nav.SetFilter("c:changed")
	assert.Equal(t, []string{"audit", "users", "changed_at (timestamptz)"}, labels(nav.Tree().Flatten()))

	nav.SetFilter("")
	assert.False(t, nav.Filtering())
	assert.Equal(t, []string{"public", "audit"}, labels(nav.Tree().Flatten()))
}

func TestTree_Scopes(t *testing.T) {
	nav, _, _ := mountedNavigator(t)

	_, err := nav.ToggleFavorite(models.TableRef{Schema: "audit", Table: "users"})
	require.NoError(t, err)
	nav.OpenTable("public", "orders")

	nav.SetScope(ScopeFavorites)
	tree := nav.Tree()
	assert.Equal(t, []string{"audit", "users"}, labels(tree.Flatten()))
	assert.True(t, tree.FindByID("table:audit.users").Favorite)

	assert.Equal(t, ScopeRecent, nav.CycleScope())
	assert.Equal(t, []string{"public", "orders"}, labels(nav.Tree().Flatten()))

	assert.Equal(t, ScopeAll, nav.CycleScope())
	assert.Equal(t, "all", nav.Scope().String())
}

func TestOpenTable_CreatesThenActivates(t *testing.T) {
	nav, tabs, _ := mountedNavigator(t)

	first, created := nav.OpenTable("public", "users")
	require.True(t, created)
	assert.Equal(t, models.TabKindOverview, first.Kind)
	assert.Equal(t, "public.users", first.Name)

	tabs.CreateTab(models.TabKindQuery, "", "")
	other, created := nav.OpenTable("audit", "users")
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)

	again, created := nav.OpenTable("public", "users")
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first, tabs.ActiveTab())
	assert.Equal(t, 3, tabs.Len())

	last, ok := nav.LastOpened()
	require.True(t, ok)
	assert.Equal(t, models.TableRef{Schema: "public", Table: "users"}, last)
	assert.Equal(t, []models.TableRef{
		{Schema: "public", Table: "users"},
		{Schema: "audit", Table: "users"},
	}, nav.Recent())
}

func TestOpenTable_RecentIsBounded(t *testing.T) {
	nav, _, _ := mountedNavigator(t)
	for i := 0; i < maxRecentTables+5; i++ {
		nav.OpenTable("public", "t"+itoa64(int64(i)))
	}
	assert.Len(t, nav.Recent(), maxRecentTables)
}
