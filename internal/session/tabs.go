package session

import (
	"strconv"
	"time"

	"github.com/rebeliceyang/lazybrowse/internal/models"
)

// noActiveTab marks the active index as unset
const noActiveTab = -1

// TabRegistry owns the ordered list of open tabs and which one is active
type TabRegistry struct {
	tabs      []*models.Tab
	activeIdx int
	nextID    int
	onClose   []func(*models.Tab)
	now       func() time.Time
}

// NewTabRegistry creates an empty registry
func NewTabRegistry() *TabRegistry {
	return &TabRegistry{
		tabs:      []*models.Tab{},
		activeIdx: noActiveTab,
		nextID:    1,
		now:       time.Now,
	}
}

// OnClose registers fn to run after a tab has been removed
func (r *TabRegistry) OnClose(fn func(*models.Tab)) {
	r.onClose = append(r.onClose, fn)
}

// CreateTab appends a new tab and makes it active.
// Query tabs are named "Query <id>", overview tabs "<schema>.<table>".
func (r *TabRegistry) CreateTab(kind models.TabKind, schemaName, tableName string) *models.Tab {
	tab := &models.Tab{
		ID:         r.nextID,
		Kind:       kind,
		SchemaName: schemaName,
		TableName:  tableName,
		CreatedAt:  r.now(),
	}
	r.nextID++

	if kind == models.TabKindOverview {
		tab.Name = tab.Ref().String()
	} else {
		tab.Name = queryTabName(tab.ID)
	}

	r.tabs = append(r.tabs, tab)
	r.activeIdx = len(r.tabs) - 1
	return tab
}

// CloseTab removes the tab with the given id and re-derives the active index.
// It reports false when no such tab exists.
func (r *TabRegistry) CloseTab(id int) bool {
	removed := r.indexOf(id)
	if removed < 0 {
		return false
	}

	tab := r.tabs[removed]
	r.tabs = append(r.tabs[:removed], r.tabs[removed+1:]...)
	r.activeIdx = activeAfterClose(r.activeIdx, removed, len(r.tabs))

	for _, fn := range r.onClose {
		fn(tab)
	}
	return true
}

// activeAfterClose computes the active index once the tab at removed is gone
func activeAfterClose(active, removed, newLen int) int {
	switch {
	case newLen == 0:
		return noActiveTab
	case active == noActiveTab:
		return noActiveTab
	case active > removed:
		return active - 1
	case active == removed:
		return min(removed, newLen-1)
	default:
		return active
	}
}

// ActivateTab makes the tab with the given id active
func (r *TabRegistry) ActivateTab(id int) bool {
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	r.activeIdx = idx
	return true
}

// ActiveTab returns the active tab, or nil when none is active
func (r *TabRegistry) ActiveTab() *models.Tab {
	if r.activeIdx < 0 || r.activeIdx >= len(r.tabs) {
		return nil
	}
	return r.tabs[r.activeIdx]
}

// ActiveIndex returns the position of the active tab
func (r *TabRegistry) ActiveIndex() (int, bool) {
	if r.ActiveTab() == nil {
		return 0, false
	}
	return r.activeIdx, true
}

// Tab looks up a tab by id
func (r *TabRegistry) Tab(id int) *models.Tab {
	if idx := r.indexOf(id); idx >= 0 {
		return r.tabs[idx]
	}
	return nil
}

// Tabs returns the open tabs in display order
func (r *TabRegistry) Tabs() []*models.Tab {
	out := make([]*models.Tab, len(r.tabs))
	copy(out, r.tabs)
	return out
}

// Len returns the number of open tabs
func (r *TabRegistry) Len() int {
	return len(r.tabs)
}

// FindOverview returns the overview tab scoped to ref, if one is open
func (r *TabRegistry) FindOverview(ref models.TableRef) *models.Tab {
	for _, tab := range r.tabs {
		if tab.Kind == models.TabKindOverview && tab.Ref() == ref {
			return tab
		}
	}
	return nil
}

// NextTab switches to the next tab
func (r *TabRegistry) NextTab() {
	if len(r.tabs) > 0 {
		r.activeIdx = (r.activeIdx + 1) % len(r.tabs)
	}
}

// PrevTab switches to the previous tab
func (r *TabRegistry) PrevTab() {
	if len(r.tabs) > 0 {
		if r.activeIdx == noActiveTab {
			r.activeIdx = 0
		}
		r.activeIdx = (r.activeIdx - 1 + len(r.tabs)) % len(r.tabs)
	}
}

func (r *TabRegistry) indexOf(id int) int {
	for i, tab := range r.tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}

func queryTabName(id int) string {
	return "Query " + strconv.Itoa(id)
}
