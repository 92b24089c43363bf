package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is a thin HTTP client for the MatchBox REST API.
// It handles Bearer token authentication, JSON marshaling and error
// mapping. Failures are logged and returned; nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger

	mu    sync.RWMutex
	token string
}

var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new MatchBox client. The baseURL should be the
// API root (e.g., https://matchbox.example.com/api).
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.do(ctx, http.MethodPost, path, query, body, result)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, result any) error {
	return c.do(ctx, http.MethodPut, path, query, body, result)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, result)
}

// do builds a JSON request and hands it to send.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	result any,
) error {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		// A bare string body is sent as JSON text, which is what the
		// update-role endpoint expects.
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	return c.send(ctx, method, path, query, bodyReader, contentType, result)
}

// send executes a request, maps non-2xx responses to errors and decodes
// the body into result.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	bodyReader io.Reader,
	contentType string,
	result any,
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("backend request failed")
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logger.WithField("status", resp.StatusCode).Warn("backend rejected token")
		return &AuthError{Message: "session expired or invalid, sign in again"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(respBody),
			RequestID:  requestID,
		}
		logger.WithField("status", resp.StatusCode).WithError(apiErr).Warn("backend request failed")
		return apiErr
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	return decode(respBody, result, method, path)
}

// decode unmarshals a JSON response. A *string result also accepts a
// plain-text body, which some endpoints return.
func decode(body []byte, result any, method, path string) error {
	if s, ok := result.(*string); ok {
		if json.Unmarshal(body, s) != nil {
			*s = strings.TrimSpace(string(body))
		}
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// pathEscape escapes a single path segment.
func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
