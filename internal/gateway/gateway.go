// Package gateway is the typed request wrapper for the PackZen backend's
// resource-oriented REST namespace.
//
// Every call returns a discriminated Result instead of an error return that
// callers might forget to branch on: the optimistic protocol needs exactly
// one "did it land" bit plus the remote error text for the failure notice.
// Auth and anti-forgery tokens are attached here and nowhere else.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/packzen/packzen-client/internal/config"
	"github.com/packzen/packzen-client/internal/errors"
)

// Result is the discriminated outcome of one gateway call.
type Result[T any] struct {
	Data       T
	Err        *errors.Error
	StatusCode int
	Success    bool
}

// Client issues authenticated requests against the backend.
type Client struct {
	http    *http.Client
	baseURL string
	session string
	csrf    string
	logger  *slog.Logger
}

// New creates a gateway client from server configuration.
//
// The underlying http.Client deliberately carries no timeout: a hung
// mutation keeps its optimistic state applied until the transport gives up,
// matching the product behavior. Callers pass a context and may impose
// their own deadline through it.
func New(cfg config.ServerConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.Validation("server URL is required")
	}
	return &Client{
		http:    &http.Client{},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		session: cfg.SessionToken,
		csrf:    cfg.CSRFToken,
		logger:  logger,
	}, nil
}

// Resource path helpers.

// ItemsPath is the collection path for a trip's items.
func ItemsPath(tripID string) string {
	return fmt.Sprintf("/api/v1/trips/%s/items", tripID)
}

// ItemPath is the path for a single trip item.
func ItemPath(tripID, itemID string) string {
	return ItemsPath(tripID) + "/" + itemID
}

// BagsPath is the collection path for a trip's bags.
func BagsPath(tripID string) string {
	return fmt.Sprintf("/api/v1/trips/%s/bags", tripID)
}

// EventsPath is the SSE change feed path for a trip.
func EventsPath(tripID string) string {
	return fmt.Sprintf("/api/v1/trips/%s/events", tripID)
}

// Get issues a GET and decodes the response body into T.
func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

// Post issues a POST with a JSON body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return do[T](ctx, c, http.MethodPost, path, body)
}

// Put issues a PUT with a JSON body and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return do[T](ctx, c, http.MethodPut, path, body)
}

// Patch issues a PATCH with a JSON body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return do[T](ctx, c, http.MethodPatch, path, body)
}

// Delete issues a DELETE. The response body, if any, is discarded.
func Delete(ctx context.Context, c *Client, path string) Result[struct{}] {
	return do[struct{}](ctx, c, http.MethodDelete, path, nil)
}

// NewRequest builds an authenticated request for callers that stream the
// response themselves (the feed subscriber).
func (c *Client) NewRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	return req, nil
}

// Do executes a prepared request on the client's transport.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

func do[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return failure[T](errors.Wrap(err, errors.CodeInternal, "encode request body"), 0)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return failure[T](errors.Wrap(err, errors.CodeInternal, "create request"), 0)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("gateway request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return failure[T](errors.Wrap(err, errors.CodeRemote, "request failed"), 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[T](errors.Wrap(err, errors.CodeRemote, "read response"), resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := errors.RemoteStatus(remoteMessage(raw, resp.StatusCode), resp.StatusCode)
		c.logger.Warn("gateway request failed",
			"method", method, "path", path,
			"status", resp.StatusCode, "error", remoteErr.Message)
		return failure[T](remoteErr, resp.StatusCode)
	}

	var data T
	if len(raw) > 0 && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(raw, &data); err != nil {
			return failure[T](errors.Wrap(err, errors.CodeRemote, "decode response"), resp.StatusCode)
		}
	}
	return Result[T]{Success: true, Data: data, StatusCode: resp.StatusCode}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PackZen-Client/1.0")
	if c.session != "" {
		req.Header.Set("Authorization", "Bearer "+c.session)
	}
	if c.csrf != "" && req.Method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}
}

func failure[T any](err *errors.Error, status int) Result[T] {
	return Result[T]{Err: err, StatusCode: status}
}

// remoteMessage extracts a human-readable message from an error body.
// The backend sends {"code": "...", "message": "..."}; anything else falls
// back to a generic status line.
func remoteMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
