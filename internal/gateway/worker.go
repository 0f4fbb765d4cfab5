package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rebeliceyang/lazybrowse/internal/models"
	"github.com/rs/zerolog/log"
)

const workerPrefix = "/database-worker"

// FetchStructure returns the schema tree of a project's database.
// Any non-200 response is an *HTTPError.
func (c *Client) FetchStructure(ctx context.Context, projectID int) (*models.DatabaseStructure, error) {
	resp, err := c.do(ctx, requestOptions{
		Method:      http.MethodGet,
		Path:        workerPrefix + "/db-structure",
		QueryParams: map[string]string{"project_id": strconv.Itoa(projectID)},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.httpError()
	}

	var structure models.DatabaseStructure
	if err := decode(resp.Body, &structure); err != nil {
		return nil, err
	}
	return &structure, nil
}

// ExecuteQuery submits query verbatim.
//
// A non-200 response is not an error: it becomes a result whose Message is the
// StatusMessage of the status. A success body that cannot be decoded yields a
// nil result and a nil error. Only transport failures return an error.
func (c *Client) ExecuteQuery(ctx context.Context, projectID int, query string) (*models.QueryResult, error) {
	resp, err := c.do(ctx, requestOptions{
		Method:      http.MethodPost,
		Path:        workerPrefix + "/execute-query",
		QueryParams: map[string]string{"project_id": strconv.Itoa(projectID)},
		Body:        models.QueryRequest{Query: query},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("detail", resp.httpError().Message).
			Msg("query rejected")
		return &models.QueryResult{Message: StatusMessage(resp.StatusCode)}, nil
	}

	var result models.QueryResult
	if err := decode(resp.Body, &result); err != nil {
		log.Debug().Err(err).Msg("discarding undecodable query result")
		return nil, nil
	}
	return &result, nil
}

// StatusMessage maps a non-success status of execute-query to the text shown to the user
func StatusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusInternalServerError:
		return "bad request"
	default:
		return fmt.Sprintf("http %d", status)
	}
}
