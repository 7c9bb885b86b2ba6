package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mcpool/internal/api"
	"mcpool/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultTimeout bounds every admin API call.
const DefaultTimeout = 30 * time.Second

// UnreachableError is returned when the admin API cannot be contacted.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("mcpool server not reachable at %s: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err is or wraps an UnreachableError.
func IsUnreachable(err error) bool {
	var target *UnreachableError
	return errors.As(err, &target)
}

// APIError is a non-2xx reply from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running mcpool admin API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the API at endpoint, e.g. http://localhost:8095.
func New(endpoint string) *Client {
	return NewWithHTTPClient(endpoint, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient creates a client using a caller-supplied HTTP client.
func NewWithHTTPClient(endpoint string, httpClient *http.Client) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: httpClient,
	}
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	return c.do(ctx, http.MethodGet, "/healthz", nil, &resp)
}

// ListSessions returns all context records.
func (c *Client) ListSessions(ctx context.Context) ([]session.ContextRecord, error) {
	var records []session.ContextRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/sessions", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CleanupSession tears down the sessions of one (user, project) pair. The
// result reports whether the pair had a record.
func (c *Client) CleanupSession(ctx context.Context, userID, projectID string) (bool, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s/%s", url.PathEscape(userID), url.PathEscape(projectID))
	var resp api.CleanupResponse
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// CleanupAll closes every pool on the server.
func (c *Client) CleanupAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions", nil, nil)
}

// ListPools returns pool statistics.
func (c *Client) ListPools(ctx context.Context) ([]session.PoolStats, error) {
	var pools []session.PoolStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/pools", nil, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// ListProfiles returns the profiles the server has loaded.
func (c *Client) ListProfiles(ctx context.Context) ([]api.ProfileInfo, error) {
	var profiles []api.ProfileInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetCapabilities lists the tools of a profile or inline server set,
// establishing sessions on the server as needed.
func (c *Client) GetCapabilities(ctx context.Context, req api.CapabilitiesRequest) (*api.CapabilitiesResponse, error) {
	var resp api.CapabilitiesResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/capabilities", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CallTool invokes one tool through the server's pooled session.
func (c *Client) CallTool(ctx context.Context, req api.CallToolRequest) (*mcp.CallToolResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/v1/tools/call", req, &raw); err != nil {
		return nil, err
	}
	result, err := mcp.ParseCallToolResult(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tool result: %w", err)
	}
	return result, nil
}

// Refresh re-establishes one server's session and returns its fresh tools.
func (c *Client) Refresh(ctx context.Context, req api.RefreshRequest) (*api.CapabilitiesResponse, error) {
	var resp api.CapabilitiesResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions/refresh", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
