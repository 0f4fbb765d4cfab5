package models

import (
	"strconv"
	"time"
)

// ActionType is the kind of schema commit
type ActionType string

const (
	ActionInitial     ActionType = "initial"
	ActionFull        ActionType = "full"
	ActionIncremental ActionType = "incremental"
)

// Commit is an immutable, checksummed record of a schema change.
// ParentChecksum links commits into a history chain.
type Commit struct {
	ID             int64      `json:"id"`
	ProjectID      int        `json:"projectId"`
	Checksum       string     `json:"checksum"`
	ParentChecksum *string    `json:"parentChecksum,omitempty"`
	ActionType     ActionType `json:"actionType"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	UpScript       string     `json:"upScript"`
	DownScript     string     `json:"downScript"`
	AuthorUserID   *int       `json:"authorUserId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// Key returns the identifier used for selection: the id, or the checksum when the id is unset
func (c Commit) Key() string {
	if c.ID != 0 {
		return strconv.FormatInt(c.ID, 10)
	}
	return c.Checksum
}

// IsDeleted reports whether the commit was soft deleted
func (c Commit) IsDeleted() bool {
	return c.DeletedAt != nil
}

// CommitPage is one page of a project's commit history
type CommitPage struct {
	Commits    []Commit `json:"commits"`
	TotalCount int      `json:"totalCount"`
}
