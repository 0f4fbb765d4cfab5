package session

import (
	"context"
	"net/url"
	"strings"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rs/zerolog/log"
)

// CommitPageSize is the number of commits requested per page
const CommitPageSize = 10

// CommitFetcher loads one page of a project's commit history
type CommitFetcher interface {
	FetchCommits(ctx context.Context, projectID, offset, limit int) (*models.CommitPage, error)
}

// CommitsLoaded carries one fetched page back to the event loop
type CommitsLoaded struct {
	ProjectID int
	Offset    int
	Page      *models.CommitPage
	Err       error
	gen       uint64
}

// HistoryBrowser shows a project's commit history. Whether it is open and
// which commit is selected live in the location; the pages loaded so far and
// the search input are local and reset whenever the browser closes.
type HistoryBrowser struct {
	fetcher   CommitFetcher
	loc       Location
	projectID int

	open        bool
	offset      int
	commits     []models.Commit
	totalCount  int
	loaded      bool
	err         error
	searchInput string

	requests requestScope
	pending  map[int]CommitsLoaded
	next     int
}

// NewHistoryBrowser creates a browser bound to loc
func NewHistoryBrowser(fetcher CommitFetcher, loc Location) *HistoryBrowser {
	return &HistoryBrowser{
		fetcher: fetcher,
		loc:     loc,
		pending: make(map[int]CommitsLoaded),
	}
}

// Location returns the location the browser reads its state from
func (h *HistoryBrowser) Location() Location {
	return h.loc
}

// IsOpen reports whether the location has history open
func (h *HistoryBrowser) IsOpen() bool {
	return h.loc.Query().Get(HistoryParam) == "1"
}

// SelectedCommit returns the selected commit id. It is only meaningful while open.
func (h *HistoryBrowser) SelectedCommit() (string, bool) {
	if !h.IsOpen() {
		return "", false
	}
	id := h.loc.Query().Get(CommitParam)
	return id, id != ""
}

// Selected returns the selected commit when it is among the loaded pages
func (h *HistoryBrowser) Selected() *models.Commit {
	id, ok := h.SelectedCommit()
	if !ok {
		return nil
	}
	for i := range h.commits {
		if h.commits[i].Key() == id {
			return &h.commits[i]
		}
	}
	return nil
}

// Open sets history=1
func (h *HistoryBrowser) Open() {
	UpdateSearchParams(h.loc, func(next url.Values) { next.Set(HistoryParam, "1") })
}

// Close removes history, and with it any selected commit
func (h *HistoryBrowser) Close() {
	UpdateSearchParams(h.loc, func(next url.Values) { next.Del(HistoryParam) })
}

// Toggle opens a closed browser and closes an open one
func (h *HistoryBrowser) Toggle() {
	if h.IsOpen() {
		h.Close()
		return
	}
	h.Open()
}

// SelectCommit selects a commit, opening history if needed
func (h *HistoryBrowser) SelectCommit(id string) {
	if id == "" {
		return
	}
	UpdateSearchParams(h.loc, func(next url.Values) {
		next.Set(HistoryParam, "1")
		next.Set(CommitParam, id)
	})
}

// ClearSelection removes the selected commit and keeps history open
func (h *HistoryBrowser) ClearSelection() {
	UpdateSearchParams(h.loc, func(next url.Values) {
		next.Set(HistoryParam, "1")
		next.Del(CommitParam)
	})
}

// Sync re-derives the browser from the location. It must be called after
// every location change, including back and forward navigation. Entering the
// open state starts over from the newest page, whose fetch is returned.
func (h *HistoryBrowser) Sync(ctx context.Context) func() CommitsLoaded {
	isOpen := h.IsOpen()

	switch {
	case isOpen && !h.open:
		h.open = true
		return h.restart(ctx)
	case !isOpen && h.open:
		h.open = false
		h.reset()
	}

	if !isOpen && h.loc.Query().Has(CommitParam) {
		UpdateSearchParams(h.loc, func(next url.Values) { next.Del(CommitParam) })
	}
	return nil
}

// SetProject switches the browser to another project. An open browser starts
// over for the new project.
func (h *HistoryBrowser) SetProject(ctx context.Context, projectID int) func() CommitsLoaded {
	if projectID == h.projectID {
		return nil
	}
	h.projectID = projectID
	if !h.open {
		h.reset()
		return nil
	}
	return h.restart(ctx)
}

// LoadMore requests the page after the last one requested. Its commits are
// appended once every earlier page has arrived.
func (h *HistoryBrowser) LoadMore(ctx context.Context) func() CommitsLoaded {
	if !h.open {
		return nil
	}
	h.offset += CommitPageSize
	gen, reqCtx := h.requests.current(ctx)
	return h.fetch(reqCtx, gen, h.offset)
}

// Refresh drops the loaded pages and requests the newest page again
func (h *HistoryBrowser) Refresh(ctx context.Context) func() CommitsLoaded {
	if !h.open {
		return nil
	}
	return h.restart(ctx)
}

func (h *HistoryBrowser) restart(ctx context.Context) func() CommitsLoaded {
	h.reset()
	gen, reqCtx := h.requests.renew(ctx)
	return h.fetch(reqCtx, gen, 0)
}

// reset drops all local state and cancels requests in flight
func (h *HistoryBrowser) reset() {
	h.requests.stop()
	h.offset = 0
	h.commits = nil
	h.totalCount = 0
	h.loaded = false
	h.err = nil
	h.searchInput = ""
	h.pending = make(map[int]CommitsLoaded)
	h.next = 0
}

func (h *HistoryBrowser) fetch(ctx context.Context, gen uint64, offset int) func() CommitsLoaded {
	fetcher, projectID := h.fetcher, h.projectID
	return func() CommitsLoaded {
		page, err := fetcher.FetchCommits(ctx, projectID, offset, CommitPageSize)
		return CommitsLoaded{ProjectID: projectID, Offset: offset, Page: page, Err: err, gen: gen}
	}
}

// Resolve accepts a fetched page. Pages are applied in the order they were
// requested: the page at offset 0 replaces the list and later pages append.
// A failed page applies as an empty one. Pages of a superseded generation are
// dropped and Resolve reports false for them.
func (h *HistoryBrowser) Resolve(msg CommitsLoaded) bool {
	if !h.requests.valid(msg.gen) {
		log.Debug().Int("offset", msg.Offset).Msg("dropping stale commit page")
		return false
	}

	h.pending[msg.Offset] = msg
	for {
		m, ok := h.pending[h.next]
		if !ok {
			break
		}
		delete(h.pending, h.next)
		h.apply(m)
		h.next += CommitPageSize
	}
	return true
}

func (h *HistoryBrowser) apply(msg CommitsLoaded) {
	h.loaded = true
	if msg.Offset == 0 {
		h.commits = nil
		h.totalCount = 0
		h.err = nil
	}

	if msg.Err != nil || msg.Page == nil {
		if msg.Err != nil {
			log.Warn().Err(msg.Err).Int("offset", msg.Offset).Msg("failed to load commits")
			h.err = msg.Err
		}
		return
	}

	h.commits = append(h.commits, msg.Page.Commits...)
	h.totalCount = msg.Page.TotalCount
}

// Loading reports whether a requested page has not been applied yet
func (h *HistoryBrowser) Loading() bool {
	return h.open && h.next <= h.offset
}

// Loaded reports whether the first page has arrived
func (h *HistoryBrowser) Loaded() bool {
	return h.loaded
}

// Err returns the last page failure since the list was replaced
func (h *HistoryBrowser) Err() error {
	return h.err
}

// Offset returns the offset of the last requested page
func (h *HistoryBrowser) Offset() int {
	return h.offset
}

// Commits returns the accumulated commits in request order
func (h *HistoryBrowser) Commits() []models.Commit {
	return h.commits
}

// TotalCount returns the server's count of commits, falling back to the
// number loaded when the server reported none
func (h *HistoryBrowser) TotalCount() int {
	if h.totalCount == 0 {
		return len(h.commits)
	}
	return h.totalCount
}

// HasMore reports whether the server holds commits beyond the loaded ones
func (h *HistoryBrowser) HasMore() bool {
	return h.loaded && h.offset+CommitPageSize < h.totalCount
}

// SetSearchInput stores the search text. No request is issued.
func (h *HistoryBrowser) SetSearchInput(text string) {
	h.searchInput = text
}

// SearchInput returns the search text
func (h *HistoryBrowser) SearchInput() string {
	return h.searchInput
}

// Filtered returns the loaded commits whose title, message, scripts or
// checksum contain the search text
func (h *HistoryBrowser) Filtered() []models.Commit {
	needle := strings.ToLower(strings.TrimSpace(h.searchInput))
	if needle == "" {
		return h.commits
	}

	var out []models.Commit
	for _, c := range h.commits {
		for _, field := range []string{c.Title, c.Message, c.UpScript, c.DownScript, c.Checksum} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Shutdown cancels requests in flight
func (h *HistoryBrowser) Shutdown() {
	h.requests.stop()
}
