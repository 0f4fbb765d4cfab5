package session

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rebeliceyang/lazybrowse/internal/models"
)

var errTransport = errors.New("dial tcp: connection refused")

func sampleStructure() *models.DatabaseStructure {
	return &models.DatabaseStructure{Schemas: []models.Schema{
		{Name: "public", Tables: []models.Table{
			{Name: "users", Columns: []models.Column{{Name: "id", DataType: "int4"}, {Name: "email", DataType: "text"}}},
			{Name: "orders", Columns: []models.Column{{Name: "id", DataType: "int4"}, {Name: "total", DataType: "numeric"}}},
		}},
		{Name: "audit", Tables: []models.Table{
			{Name: "users", Columns: []models.Column{{Name: "changed_at", DataType: "timestamptz"}}},
		}},
	}}
}

type fakeStructureFetcher struct {
	mu        sync.Mutex
	calls     []int
	structure *models.DatabaseStructure
	err       error
}

func (f *fakeStructureFetcher) FetchStructure(ctx context.Context, projectID int) (*models.DatabaseStructure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, projectID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.structure, f.err
}

type queryCall struct {
	projectID int
	query     string
}

type fakeQueryExecutor struct {
	mu     sync.Mutex
	calls  []queryCall
	result *models.QueryResult
	err    error
}

func (f *fakeQueryExecutor) ExecuteQuery(_ context.Context, projectID int, query string) (*models.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, queryCall{projectID, query})
	return f.result, f.err
}

type commitCall struct {
	projectID, offset, limit int
}

// fakeCommitFetcher serves a fixed history of total commits, newest first
type fakeCommitFetcher struct {
	mu    sync.Mutex
	calls []commitCall
	total int
	fail  map[int]bool
}

func (f *fakeCommitFetcher) FetchCommits(_ context.Context, projectID, offset, limit int) (*models.CommitPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, commitCall{projectID, offset, limit})
	if f.fail[offset] {
		return nil, errTransport
	}

	page := &models.CommitPage{TotalCount: f.total}
	for i := offset; i < offset+limit && i < f.total; i++ {
		id := int64(f.total - i)
		page.Commits = append(page.Commits, models.Commit{
			ID:         id,
			ProjectID:  projectID,
			Checksum:   "c" + itoa64(id),
			ActionType: models.ActionIncremental,
			Title:      "commit " + itoa64(id),
		})
	}
	return page, nil
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

type fakeFavorites struct {
	set map[int]map[models.TableRef]bool
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{set: map[int]map[models.TableRef]bool{}}
}

func (f *fakeFavorites) IsFavorite(projectID int, ref models.TableRef) bool {
	return f.set[projectID][ref]
}

func (f *fakeFavorites) Toggle(projectID int, ref models.TableRef) (bool, error) {
	if f.set[projectID] == nil {
		f.set[projectID] = map[models.TableRef]bool{}
	}
	f.set[projectID][ref] = !f.set[projectID][ref]
	return f.set[projectID][ref], nil
}
