package models

import "time"

// TabKind identifies what a tab shows
type TabKind string

const (
	TabKindQuery    TabKind = "query"
	TabKindOverview TabKind = "overview"
)

// Tab is a user-visible unit of work: a query editor or a table overview
type Tab struct {
	ID         int
	Name       string
	Kind       TabKind
	SchemaName string
	TableName  string
	CreatedAt  time.Time
}

// Ref returns the table the tab is scoped to
func (t *Tab) Ref() TableRef {
	return TableRef{Schema: t.SchemaName, Table: t.TableName}
}
