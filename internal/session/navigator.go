package session

import (
	"context"
	"slices"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rebeliceyang/lazybrowse/internal/search"
	"github.com/rs/zerolog/log"
)

// NoStructureMessage is shown when the structure of a project could not be loaded
const NoStructureMessage = "No database structure found."

// maxRecentTables bounds the recently opened tables list
const maxRecentTables = 10

// StructureFetcher loads the schema tree of a project
type StructureFetcher interface {
	FetchStructure(ctx context.Context, projectID int) (*models.DatabaseStructure, error)
}

// FavoriteStore persists favourite tables per project
type FavoriteStore interface {
	IsFavorite(projectID int, ref models.TableRef) bool
	Toggle(projectID int, ref models.TableRef) (bool, error)
}

// LoadState describes where the structure of the mounted project stands
type LoadState int

const (
	StructureIdle LoadState = iota
	StructureLoading
	StructureReady
	StructureMissing
)

// Scope restricts which tables the tree shows
type Scope int

const (
	ScopeAll Scope = iota
	ScopeFavorites
	ScopeRecent
)

func (s Scope) String() string {
	switch s {
	case ScopeFavorites:
		return "favourites"
	case ScopeRecent:
		return "recent"
	default:
		return "all"
	}
}

// StructureLoaded carries the outcome of a structure fetch back to the event loop
type StructureLoaded struct {
	ProjectID int
	Structure *models.DatabaseStructure
	Err       error
	gen       uint64
}

// Navigator owns the schema tree of the mounted project and its expansion state
type Navigator struct {
	fetcher   StructureFetcher
	tabs      *TabRegistry
	favorites FavoriteStore

	projectID int
	state     LoadState
	structure *models.DatabaseStructure
	requests  requestScope

	expandedSchemas map[string]struct{}
	expandedTables  map[models.TableRef]struct{}

	lastOpened *models.TableRef
	recent     []models.TableRef

	filter string
	scope  Scope
}

// NewNavigator creates a navigator that opens tables into tabs.
// favorites may be nil, in which case no table is a favourite.
func NewNavigator(fetcher StructureFetcher, tabs *TabRegistry, favorites FavoriteStore) *Navigator {
	return &Navigator{
		fetcher:         fetcher,
		tabs:            tabs,
		favorites:       favorites,
		expandedSchemas: make(map[string]struct{}),
		expandedTables:  make(map[models.TableRef]struct{}),
	}
}

// Mount starts loading the structure of projectID and returns the fetch to run
// off the event loop. Any load still in flight is cancelled and its result ignored.
// Switching to another project resets expansion and the recent tables.
func (n *Navigator) Mount(ctx context.Context, projectID int) func() StructureLoaded {
	if projectID != n.projectID {
		n.expandedSchemas = make(map[string]struct{})
		n.expandedTables = make(map[models.TableRef]struct{})
		n.lastOpened = nil
		n.recent = nil
		n.structure = nil
	}

	gen, reqCtx := n.requests.renew(ctx)
	n.projectID = projectID
	n.state = StructureLoading

	fetcher := n.fetcher
	return func() StructureLoaded {
		structure, err := fetcher.FetchStructure(reqCtx, projectID)
		return StructureLoaded{ProjectID: projectID, Structure: structure, Err: err, gen: gen}
	}
}

// Resolve applies a finished load. Results of superseded loads are dropped and
// Resolve reports false for them.
func (n *Navigator) Resolve(msg StructureLoaded) bool {
	if !n.requests.valid(msg.gen) {
		log.Debug().Int("project", msg.ProjectID).Msg("dropping stale structure result")
		return false
	}

	if msg.Err != nil || msg.Structure == nil {
		if msg.Err != nil {
			log.Warn().Err(msg.Err).Int("project", msg.ProjectID).Msg("failed to load database structure")
		}
		n.structure = nil
		n.state = StructureMissing
		return true
	}

	n.structure = msg.Structure
	n.state = StructureReady
	return true
}

// Unmount cancels any load in flight
func (n *Navigator) Unmount() {
	n.requests.stop()
	if n.state == StructureLoading {
		n.state = StructureIdle
	}
}

// ProjectID returns the mounted project
func (n *Navigator) ProjectID() int {
	return n.projectID
}

// State returns the load state of the structure
func (n *Navigator) State() LoadState {
	return n.state
}

// Structure returns the loaded structure, or nil
func (n *Navigator) Structure() *models.DatabaseStructure {
	return n.structure
}

// ToggleSchema flips whether the schema's tables are shown
func (n *Navigator) ToggleSchema(name string) {
	toggle(n.expandedSchemas, name)
}

// ToggleTable flips whether the table's columns are shown
func (n *Navigator) ToggleTable(schemaName, tableName string) {
	toggle(n.expandedTables, models.TableRef{Schema: schemaName, Table: tableName})
}

// SchemaExpanded reports whether the schema is expanded
func (n *Navigator) SchemaExpanded(name string) bool {
	_, ok := n.expandedSchemas[name]
	return ok
}

// TableExpanded reports whether the table is expanded
func (n *Navigator) TableExpanded(schemaName, tableName string) bool {
	_, ok := n.expandedTables[models.TableRef{Schema: schemaName, Table: tableName}]
	return ok
}

func toggle[K comparable](set map[K]struct{}, key K) {
	if _, ok := set[key]; ok {
		delete(set, key)
		return
	}
	set[key] = struct{}{}
}

// OpenTable records the table as most recently opened and activates its
// overview tab, creating one when none is open. created reports whether a new
// tab was made.
func (n *Navigator) OpenTable(schemaName, tableName string) (tab *models.Tab, created bool) {
	ref := models.TableRef{Schema: schemaName, Table: tableName}
	n.lastOpened = &ref
	n.recent = slices.DeleteFunc(n.recent, func(r models.TableRef) bool { return r == ref })
	n.recent = append([]models.TableRef{ref}, n.recent...)
	if len(n.recent) > maxRecentTables {
		n.recent = n.recent[:maxRecentTables]
	}

	if tab = n.tabs.FindOverview(ref); tab != nil {
		n.tabs.ActivateTab(tab.ID)
		return tab, false
	}
	return n.tabs.CreateTab(models.TabKindOverview, schemaName, tableName), true
}

// LastOpened returns the most recently opened table
func (n *Navigator) LastOpened() (models.TableRef, bool) {
	if n.lastOpened == nil {
		return models.TableRef{}, false
	}
	return *n.lastOpened, true
}

// Recent returns recently opened tables, newest first
func (n *Navigator) Recent() []models.TableRef {
	return slices.Clone(n.recent)
}

// IsFavorite reports whether ref is a favourite of the mounted project
func (n *Navigator) IsFavorite(ref models.TableRef) bool {
	return n.favorites != nil && n.favorites.IsFavorite(n.projectID, ref)
}

// ToggleFavorite adds or removes ref from the favourites of the mounted project
func (n *Navigator) ToggleFavorite(ref models.TableRef) (bool, error) {
	if n.favorites == nil {
		return false, nil
	}
	return n.favorites.Toggle(n.projectID, ref)
}

// SetFilter sets the tree filter text
func (n *Navigator) SetFilter(text string) {
	n.filter = text
}

// Filter returns the tree filter text
func (n *Navigator) Filter() string {
	return n.filter
}

// SetScope restricts the tree to all, favourite or recent tables
func (n *Navigator) SetScope(scope Scope) {
	n.scope = scope
}

// CycleScope moves to the next scope
func (n *Navigator) CycleScope() Scope {
	n.scope = (n.scope + 1) % 3
	return n.scope
}

// Scope returns the active scope
func (n *Navigator) Scope() Scope {
	return n.scope
}

// Filtering reports whether the filter text or scope hides anything
func (n *Navigator) Filtering() bool {
	return !search.Parse(n.filter).IsEmpty() || n.scope != ScopeAll
}

// Tree builds a render snapshot of the structure.
// A schema's tables are visible iff the schema is expanded; a table's columns
// iff the table is expanded. While filtering, schemas holding matches render
// expanded without touching the expansion sets.
func (n *Navigator) Tree() *models.TreeNode {
	root := models.NewStructureRoot()
	if n.structure == nil {
		return root
	}

	q := search.Parse(n.filter)
	filtering := n.Filtering()

	for _, schema := range n.structure.Schemas {
		schemaNode := models.BuildSchemaNode(schema.Name)
		schemaNode.Expanded = n.SchemaExpanded(schema.Name)

		for _, table := range schema.Tables {
			ref := models.TableRef{Schema: schema.Name, Table: table.Name}
			if filtering && (!n.inScope(ref) || !tableMatches(q, schema.Name, table)) {
				continue
			}

			tableNode := models.BuildTableNode(schema.Name, table)
			tableNode.Expanded = n.TableExpanded(schema.Name, table.Name) ||
				(q.Kind == search.KindColumn && q.Pattern != "")
			tableNode.Favorite = n.IsFavorite(ref)
			schemaNode.AddChild(tableNode)
		}

		if filtering {
			if len(schemaNode.Children) == 0 {
				continue
			}
			schemaNode.Expanded = true
		}
		root.AddChild(schemaNode)
	}

	return root
}

func (n *Navigator) inScope(ref models.TableRef) bool {
	switch n.scope {
	case ScopeFavorites:
		return n.IsFavorite(ref)
	case ScopeRecent:
		return slices.Contains(n.recent, ref)
	default:
		return true
	}
}

func tableMatches(q search.Query, schemaName string, table models.Table) bool {
	switch q.Kind {
	case search.KindSchema:
		return q.Match(search.KindSchema, schemaName)
	case search.KindColumn:
		for _, col := range table.Columns {
			if q.Match(search.KindColumn, col.Name) {
				return true
			}
		}
		return false
	default:
		return q.Match(search.KindTable, table.Name)
	}
}
