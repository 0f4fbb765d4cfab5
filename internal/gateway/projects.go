package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rebeliceyang/lazybrowse/internal/models"
)

// ListProjects returns every project visible to the caller
func (c *Client) ListProjects(ctx context.Context) ([]models.ProjectWithUsers, error) {
	var projects []models.ProjectWithUsers
	if err := c.getJSON(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project aggregate
func (c *Client) GetProject(ctx context.Context, projectID int) (*models.ProjectWithUsers, error) {
	var project models.ProjectWithUsers
	if err := c.getJSON(ctx, fmt.Sprintf("/projects/%d", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project and returns the created aggregate
func (c *Client) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.ProjectWithUsers, error) {
	resp, err := c.do(ctx, requestOptions{
		Method: http.MethodPost,
		Path:   "/projects",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.httpError()
	}

	var project models.ProjectWithUsers
	if err := decode(resp.Body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// TestConnection asks the server to connect with auth.
// It reports success iff the server answers with a 2xx status.
func (c *Client) TestConnection(ctx context.Context, auth models.DatabaseAuth) (bool, error) {
	resp, err := c.do(ctx, requestOptions{
		Method: http.MethodPost,
		Path:   "/projects/test-connection",
		Body:   models.TestConnectionRequest{DatabaseAuth: auth},
	})
	if err != nil {
		return false, err
	}
	return resp.ok(), nil
}

// FetchCommits returns one page of a project's commit history.
// Paging is passed through the offset and limit headers.
func (c *Client) FetchCommits(ctx context.Context, projectID, offset, limit int) (*models.CommitPage, error) {
	headers := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}

	var page models.CommitPage
	if err := c.getJSON(ctx, fmt.Sprintf("/projects/%d/commits", projectID), headers, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, p string, headers map[string]string, v any) error {
	resp, err := c.do(ctx, requestOptions{
		Method:  http.MethodGet,
		Path:    p,
		Headers: headers,
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.httpError()
	}
	return decode(resp.Body, v)
}
