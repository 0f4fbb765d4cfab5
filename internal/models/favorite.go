package models

import "time"

// FavoriteTable is a table pinned by the user within a project
type FavoriteTable struct {
	ID        string    `yaml:"id"`
	ProjectID int       `yaml:"project_id"`
	Schema    string    `yaml:"schema"`
	Table     string    `yaml:"table"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Ref returns the table the favourite points at
func (f FavoriteTable) Ref() TableRef {
	return TableRef{Schema: f.Schema, Table: f.Table}
}
