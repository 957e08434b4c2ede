package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerProject = "X-Backend-Project"
	headerSession = "X-Backend-Session"
)

// Client talks to the hosted backend's REST surface. It owns no wire format
// beyond what the backend defines; all failures come back as *Error.
type Client struct {
	endpoint  string
	projectID string
	http      *http.Client
}

func NewClient(endpoint, projectID string) *Client {
	return &Client{
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		projectID: projectID,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// do issues a JSON request. session may be empty for guest calls; out may be
// nil when the caller only cares about success.
func (c *Client) do(ctx context.Context, method, path, session string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req, session)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decorate(req *http.Request, session string) {
	req.Header.Set(headerProject, c.projectID)
	if session != "" {
		req.Header.Set(headerSession, session)
	}
}

func decodeError(resp *http.Response) error {
	var remote struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &remote); err != nil || remote.Message == "" {
		remote.Message = http.StatusText(resp.StatusCode)
	}
	return &Error{
		Kind:    classify(resp.StatusCode, remote.Type, remote.Message),
		Status:  resp.StatusCode,
		Code:    remote.Type,
		Message: remote.Message,
	}
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathEscape(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.Join(escaped, "/")
}
