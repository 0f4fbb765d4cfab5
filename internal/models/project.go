package models

// Project is a database project as returned by the API
type Project struct {
	ID             int    `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Visibility     string `json:"visibility" yaml:"visibility"`
	OwnerID        int    `json:"ownerId" yaml:"owner_id"`
	ConnectionType int    `json:"connectionType" yaml:"connection_type"`
}

// ProjectUser is a member of a project
type ProjectUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// ProjectUsers is the member list of a project
type ProjectUsers struct {
	TotalCount int           `json:"totalCount"`
	Users      []ProjectUser `json:"users,omitempty"`
}

// ProjectWithUsers is the project aggregate returned by the projects endpoints
type ProjectWithUsers struct {
	Project Project      `json:"project"`
	Users   ProjectUsers `json:"users"`
}

// DatabaseAuth holds the credentials of a project's database.
// Port is sent as a string.
type DatabaseAuth struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode,omitempty"`
}

// CreateProjectRequest is the body of a create-project call
type CreateProjectRequest struct {
	Name           string       `json:"name"`
	Visibility     string       `json:"visibility"`
	ConnectionType int          `json:"connectionType"`
	DatabaseAuth   DatabaseAuth `json:"databaseAuth"`
}

// TestConnectionRequest is the body of a test-connection call
type TestConnectionRequest struct {
	DatabaseAuth DatabaseAuth `json:"databaseAuth"`
}
