package models

import "time"

// QueryResult is the response of a single executed statement.
// Rows are schema-less: keys may differ from row to row.
type QueryResult struct {
	Kind         string           `json:"kind,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	RowsAffected *int64           `json:"rowsAffected,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// HasRows reports whether the result carries tabular data
func (r *QueryResult) HasRows() bool {
	return r != nil && len(r.Rows) > 0
}

// QueryRequest is the body of an execute-query call
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryLogEntry is a single executed query as recorded locally
type QueryLogEntry struct {
	ID         int
	ProjectID  int
	TabName    string
	Query      string
	Statement  string
	ExecutedAt time.Time
	Duration   time.Duration
	RowCount   int
	Success    bool
	Message    string
}
