package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rebeliceyang/lazybrowse/internal/models"
)

// ProjectService is the project side of the API
type ProjectService interface {
	ListProjects(ctx context.Context) ([]models.ProjectWithUsers, error)
	GetProject(ctx context.Context, projectID int) (*models.ProjectWithUsers, error)
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.ProjectWithUsers, error)
	TestConnection(ctx context.Context, auth models.DatabaseAuth) (bool, error)
}

// ProjectCache keeps the projects fetched so far. Unlike the rest of the
// session it is filled from request goroutines, so it is guarded.
type ProjectCache struct {
	service ProjectService

	mu       sync.RWMutex
	projects []models.ProjectWithUsers
	loaded   bool
}

// NewProjectCache creates an empty cache
func NewProjectCache(service ProjectService) *ProjectCache {
	return &ProjectCache{service: service}
}

// Fetch replaces the cache with the server's project list
func (c *ProjectCache) Fetch(ctx context.Context) ([]models.ProjectWithUsers, error) {
	projects, err := c.service.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	c.mu.Lock()
	c.projects = projects
	c.loaded = true
	c.mu.Unlock()
	return projects, nil
}

// List returns the cached projects, fetching them on first use
func (c *ProjectCache) List(ctx context.Context) ([]models.ProjectWithUsers, error) {
	c.mu.RLock()
	if c.loaded {
		out := append([]models.ProjectWithUsers(nil), c.projects...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()
	return c.Fetch(ctx)
}

// GetByID looks a project up in the cache only
func (c *ProjectCache) GetByID(projectID int) (*models.ProjectWithUsers, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.projects {
		if c.projects[i].Project.ID == projectID {
			p := c.projects[i]
			return &p, true
		}
	}
	return nil, false
}

// EnsureLoaded returns the cached project, fetching it when it is not cached
func (c *ProjectCache) EnsureLoaded(ctx context.Context, projectID int) (*models.ProjectWithUsers, error) {
	if p, ok := c.GetByID(projectID); ok {
		return p, nil
	}

	p, err := c.service.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}
	return p, nil
}

// Create creates a project and appends it to the cache
func (c *ProjectCache) Create(ctx context.Context, req models.CreateProjectRequest) (*models.ProjectWithUsers, error) {
	created, err := c.service.CreateProject(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	c.mu.Lock()
	c.projects = append(c.projects, *created)
	c.mu.Unlock()
	return created, nil
}

// TestConnection reports whether the server can reach a database with auth
func (c *ProjectCache) TestConnection(ctx context.Context, auth models.DatabaseAuth) (bool, error) {
	return c.service.TestConnection(ctx, auth)
}
