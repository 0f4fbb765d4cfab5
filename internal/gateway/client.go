// Package gateway issues authenticated HTTP requests against the database worker API.
// It performs no retries, backoff, or caching: every call is a single request/response.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// json keeps number literals intact so cells render exactly what the server sent
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// ErrMalformedResponse is returned when a success response cannot be decoded
var ErrMalformedResponse = errors.New("malformed response")

// Configurator provides the server location and credentials
type Configurator interface {
	GetServerURL() string
	GetToken() string
}

// StaticConfig is a fixed Configurator
type StaticConfig struct {
	ServerURL string
	Token     string
}

func (c StaticConfig) GetServerURL() string { return c.ServerURL }
func (c StaticConfig) GetToken() string     { return c.Token }

// HTTPError is a non-success response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the status of an *HTTPError in err's chain, or 0
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Client talks to the API
type Client struct {
	config     Configurator
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the server described by config
func NewClient(config Configurator, opts ...Option) *Client {
	c := &Client{
		config:     config,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requestOptions describes one call
type requestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string
	Body        any
}

// response is a fully read response
type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// httpError builds an *HTTPError, preferring the server's own message
func (r *response) httpError() *HTTPError {
	msg := http.StatusText(r.StatusCode)
	if gjson.ValidBytes(r.Body) {
		for _, key := range []string{"error", "message"} {
			if v := gjson.GetBytes(r.Body, key); v.Exists() && v.String() != "" {
				msg = v.String()
				break
			}
		}
	}
	return &HTTPError{StatusCode: r.StatusCode, Message: msg}
}

func (c *Client) do(ctx context.Context, opts requestOptions) (*response, error) {
	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if opts.Body != nil {
		data, err := jsonAPI.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token := c.config.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", opts.Method).Str("path", opts.Path).
			Str("request_id", requestID).Msg("request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().Str("method", opts.Method).Str("path", opts.Path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).
		Str("request_id", requestID).Msg("request done")

	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

// decode unmarshals a success body, mapping failures to ErrMalformedResponse
func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrMalformedResponse
	}
	if err := jsonAPI.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.TrimSpace(err.Error()))
	}
	return nil
}
