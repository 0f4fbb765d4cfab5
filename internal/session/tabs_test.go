package session

import (
	"testing"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(tabs []*models.Tab) []string {
	out := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tab.Name)
	}
	return out
}

func threeTabs(t *testing.T) (*TabRegistry, *models.Tab, *models.Tab, *models.Tab) {
	t.Helper()
	r := NewTabRegistry()
	a := r.CreateTab(models.TabKindQuery, "", "")
	b := r.CreateTab(models.TabKindQuery, "", "")
	c := r.CreateTab(models.TabKindQuery, "", "")
	return r, a, b, c
}

func TestCreateTab_ActivatesAndNames(t *testing.T) {
	r := NewTabRegistry()

	_, ok := r.ActiveIndex()
	assert.False(t, ok)
	assert.Nil(t, r.ActiveTab())

	q := r.CreateTab(models.TabKindQuery, "", "")
	o := r.CreateTab(models.TabKindOverview, "public", "users")

	assert.Equal(t, "Query 1", q.Name)
	assert.Equal(t, "public.users", o.Name)
	assert.Equal(t, o, r.ActiveTab())
	assert.False(t, q.CreatedAt.IsZero())
}

func TestCreateTab_IDsAreUniqueAndNeverReused(t *testing.T) {
	r := NewTabRegistry()
	seen := map[int]bool{}

	for i := 0; i < 50; i++ {
		tab := r.CreateTab(models.TabKindQuery, "", "")
		require.False(t, seen[tab.ID], "duplicate id %d", tab.ID)
		seen[tab.ID] = true
		if i%2 == 0 {
			r.CloseTab(tab.ID)
		}
	}

	last := r.CreateTab(models.TabKindQuery, "", "")
	assert.False(t, seen[last.ID])
}

func TestCloseTab_LastRemainingUnsetsActive(t *testing.T) {
	r := NewTabRegistry()
	only := r.CreateTab(models.TabKindQuery, "", "")

	assert.True(t, r.CloseTab(only.ID))
	assert.Nil(t, r.ActiveTab())
	_, ok := r.ActiveIndex()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestCloseTab_BeforeActiveShiftsDown(t *testing.T) {
	r, a, _, c := threeTabs(t)
	require.Equal(t, c, r.ActiveTab())

	r.CloseTab(a.ID)

	idx, ok := r.ActiveIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, c, r.ActiveTab())
}

func TestCloseTab_AfterActiveUnchanged(t *testing.T) {
	r, a, _, c := threeTabs(t)
	r.ActivateTab(a.ID)

	r.CloseTab(c.ID)

	idx, _ := r.ActiveIndex()
	assert.Equal(t, 0, idx)
	assert.Equal(t, a, r.ActiveTab())
}

func TestCloseTab_ActiveClampsToNearest(t *testing.T) {
	tests := []struct {
		name      string
		active    int
		wantIndex int
		wantName  string
	}{
		{"first", 0, 0, "Query 2"},
		{"middle", 1, 1, "Query 3"},
		{"last", 2, 1, "Query 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, _ := threeTabs(t)
			active := r.Tabs()[tt.active]
			r.ActivateTab(active.ID)

			r.CloseTab(active.ID)

			idx, ok := r.ActiveIndex()
			require.True(t, ok)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantName, r.ActiveTab().Name)
		})
	}
}

func TestCloseTab_Scenario(t *testing.T) {
	r, a, b, c := threeTabs(t)
	r.ActivateTab(b.ID)

	r.CloseTab(a.ID)
	assert.Equal(t, []string{b.Name, c.Name}, names(r.Tabs()))
	idx, _ := r.ActiveIndex()
	assert.Equal(t, 0, idx)
	assert.Equal(t, b, r.ActiveTab())

	r.CloseTab(b.ID)
	assert.Equal(t, []string{c.Name}, names(r.Tabs()))
	idx, _ = r.ActiveIndex()
	assert.Equal(t, 0, idx)
	assert.Equal(t, c, r.ActiveTab())
}

func TestCloseTab_UnknownIsNoop(t *testing.T) {
	r, _, b, _ := threeTabs(t)
	r.ActivateTab(b.ID)

	assert.False(t, r.CloseTab(999))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, b, r.ActiveTab())
}

func TestCloseTab_RunsHooks(t *testing.T) {
	r, a, _, _ := threeTabs(t)
	var closed []int
	r.OnClose(func(tab *models.Tab) { closed = append(closed, tab.ID) })

	r.CloseTab(a.ID)
	r.CloseTab(a.ID)

	assert.Equal(t, []int{a.ID}, closed)
}

func TestActiveNeverDangles(t *testing.T) {
	r := NewTabRegistry()
	for i := 0; i < 6; i++ {
		r.CreateTab(models.TabKindQuery, "", "")
	}

	order := []int{3, 0, 3, 1, 0, 0}
	for step, pos := range order {
		tabs := r.Tabs()
		if step%2 == 1 {
			r.ActivateTab(tabs[len(tabs)-1].ID)
		}
		r.CloseTab(tabs[pos%len(tabs)].ID)

		active := r.ActiveTab()
		if r.Len() == 0 {
			assert.Nil(t, active)
			continue
		}
		require.NotNil(t, active)
		assert.NotNil(t, r.Tab(active.ID))
	}
}

func TestActivateTab(t *testing.T) {
	r, a, _, _ := threeTabs(t)

	assert.True(t, r.ActivateTab(a.ID))
	assert.Equal(t, a, r.ActiveTab())
	assert.False(t, r.ActivateTab(42))
	assert.Equal(t, a, r.ActiveTab())
}

func TestFindOverview(t *testing.T) {
	r := NewTabRegistry()
	r.CreateTab(models.TabKindQuery, "public", "users")
	o := r.CreateTab(models.TabKindOverview, "public", "users")
	r.CreateTab(models.TabKindOverview, "audit", "users")

	assert.Equal(t, o, r.FindOverview(models.TableRef{Schema: "public", Table: "users"}))
	assert.Nil(t, r.FindOverview(models.TableRef{Schema: "public", Table: "orders"}))
}

func TestNextPrevTab_Cycle(t *testing.T) {
	r, a, b, c := threeTabs(t)

	r.NextTab()
	assert.Equal(t, a, r.ActiveTab())
	r.PrevTab()
	assert.Equal(t, c, r.ActiveTab())
	r.PrevTab()
	assert.Equal(t, b, r.ActiveTab())
}
