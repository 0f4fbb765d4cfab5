package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rebeliceyang/lazybrowse/internal/format"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rs/zerolog/log"
)

// NetworkErrorMessage replaces the result when the request never got a response
const NetworkErrorMessage = "network error"

// QueryExecutor runs SQL against a project's database
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, projectID int, query string) (*models.QueryResult, error)
}

// QueryRecorder keeps a log of executed queries
type QueryRecorder interface {
	Record(entry models.QueryLogEntry) error
}

// QueryExecuted carries a finished run back to the event loop
type QueryExecuted struct {
	TabID     int
	ProjectID int
	Query     string
	Result    *models.QueryResult
	Err       error
	Duration  time.Duration
	gen       uint64
}

// ChangesSchema reports whether the query was a DDL statement that completed
func (m QueryExecuted) ChangesSchema() bool {
	return m.Err == nil && succeeded(m.Result) &&
		format.ClassifyStatement(m.Query) == format.StatementDDL
}

type tabQuery struct {
	text     string
	result   *models.QueryResult
	ran      bool
	running  bool
	requests requestScope
}

// QueryPane holds the editor text and last result of every tab
type QueryPane struct {
	executor     QueryExecutor
	tabs         *TabRegistry
	recorder     QueryRecorder
	defaultLimit int
	states       map[int]*tabQuery
}

// NewQueryPane creates a pane whose per-tab state is dropped when the tab closes
func NewQueryPane(executor QueryExecutor, tabs *TabRegistry, defaultLimit int) *QueryPane {
	p := &QueryPane{
		executor:     executor,
		tabs:         tabs,
		defaultLimit: defaultLimit,
		states:       make(map[int]*tabQuery),
	}
	tabs.OnClose(func(tab *models.Tab) { p.Forget(tab.ID) })
	return p
}

// SetRecorder enables the query log
func (p *QueryPane) SetRecorder(r QueryRecorder) {
	p.recorder = r
}

func (p *QueryPane) state(tabID int) *tabQuery {
	st, ok := p.states[tabID]
	if !ok {
		st = &tabQuery{}
		p.states[tabID] = st
	}
	return st
}

// SetText replaces the editor text of a tab
func (p *QueryPane) SetText(tabID int, text string) {
	p.state(tabID).text = text
}

// Text returns the editor text of a tab
func (p *QueryPane) Text(tabID int) string {
	if st, ok := p.states[tabID]; ok {
		return st.text
	}
	return ""
}

// Result returns the last result of a tab. It is nil before the first run and
// after a run whose response could not be decoded.
func (p *QueryPane) Result(tabID int) *models.QueryResult {
	if st, ok := p.states[tabID]; ok {
		return st.result
	}
	return nil
}

// HasRun reports whether a run of the tab has completed
func (p *QueryPane) HasRun(tabID int) bool {
	st, ok := p.states[tabID]
	return ok && st.ran
}

// Running reports whether the tab has a run in flight
func (p *QueryPane) Running(tabID int) bool {
	st, ok := p.states[tabID]
	return ok && st.running
}

// Run submits the tab's text verbatim and returns the request to perform off
// the event loop. Blank text issues nothing and leaves the prior result alone.
// A newer run of the same tab cancels the older one.
func (p *QueryPane) Run(ctx context.Context, projectID, tabID int) (func() QueryExecuted, bool) {
	st := p.state(tabID)
	query := st.text
	if strings.TrimSpace(query) == "" {
		return nil, false
	}

	gen, reqCtx := st.requests.renew(ctx)
	st.running = true

	executor := p.executor
	return func() QueryExecuted {
		start := time.Now()
		result, err := executor.ExecuteQuery(reqCtx, projectID, query)
		return QueryExecuted{
			TabID:     tabID,
			ProjectID: projectID,
			Query:     query,
			Result:    result,
			Err:       err,
			Duration:  time.Since(start),
			gen:       gen,
		}
	}, true
}

// DefaultQuery returns the query an overview tab runs on open
func DefaultQuery(ref models.TableRef, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d", ref.Schema, ref.Table, limit)
}

// RunDefault loads the first rows of an overview tab's table
func (p *QueryPane) RunDefault(ctx context.Context, projectID int, tab *models.Tab) (func() QueryExecuted, bool) {
	if tab == nil || tab.Kind != models.TabKindOverview {
		return nil, false
	}
	p.SetText(tab.ID, DefaultQuery(tab.Ref(), p.defaultLimit))
	return p.Run(ctx, projectID, tab.ID)
}

// Resolve stores the outcome of a run as the tab's result. Runs of closed tabs
// and runs superseded by a newer one are dropped and Resolve reports false.
func (p *QueryPane) Resolve(msg QueryExecuted) bool {
	st, ok := p.states[msg.TabID]
	if !ok || !st.requests.valid(msg.gen) {
		log.Debug().Int("tab", msg.TabID).Msg("dropping stale query result")
		return false
	}

	st.running = false
	st.ran = true
	if msg.Err != nil {
		log.Warn().Err(msg.Err).Int("tab", msg.TabID).Msg("query request failed")
		st.result = &models.QueryResult{Message: NetworkErrorMessage}
	} else {
		st.result = msg.Result
	}

	p.record(msg, st.result)
	return true
}

func (p *QueryPane) record(msg QueryExecuted, result *models.QueryResult) {
	if p.recorder == nil {
		return
	}

	entry := models.QueryLogEntry{
		ProjectID:  msg.ProjectID,
		Query:      msg.Query,
		Statement:  string(format.ClassifyStatement(msg.Query)),
		ExecutedAt: time.Now().Add(-msg.Duration),
		Duration:   msg.Duration,
		Success:    msg.Err == nil && succeeded(result),
	}
	if tab := p.tabs.Tab(msg.TabID); tab != nil {
		entry.TabName = tab.Name
	}
	if result != nil {
		entry.RowCount = len(result.Rows)
		entry.Message = result.Message
	}

	if err := p.recorder.Record(entry); err != nil {
		log.Warn().Err(err).Msg("failed to record query")
	}
}

// succeeded reports whether result came from a statement that ran.
// Rejected requests carry only a message.
func succeeded(result *models.QueryResult) bool {
	if result == nil {
		return false
	}
	return result.HasRows() || result.RowsAffected != nil || result.Message == ""
}

// Forget drops the state of a tab, cancelling its run in flight
func (p *QueryPane) Forget(tabID int) {
	if st, ok := p.states[tabID]; ok {
		st.requests.stop()
		delete(p.states, tabID)
	}
}

// Close cancels every run in flight
func (p *QueryPane) Close() {
	for _, st := range p.states {
		st.requests.stop()
		st.running = false
	}
}
