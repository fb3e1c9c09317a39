// Package backend talks to the event platform's REST API. Every call carries
// the service JWT, is retried once after a 401 with a fresh token, and runs
// behind a circuit breaker.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/logger"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
)

const (
	// ContentTypeJSON is used for POST and PUT bodies.
	ContentTypeJSON = "application/json"
	// ContentTypeMergePatch is used for PATCH bodies.
	ContentTypeMergePatch = "application/merge-patch+json"
	// TotalCountHeader carries the unpaged size of a list.
	TotalCountHeader = "X-Total-Count"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status   int
	Body     string
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Unwrap maps 404 to ErrResourceNotFound so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return apperrors.ErrResourceNotFound
	}
	return apperrors.ErrUpstream
}

func errBreakerOpen(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	TenantID string
	Username string
	Password string
	Timeout  time.Duration
	Breaker  BreakerSettings
}

// Request describes one backend call. Path is relative to {base}/api/.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	JSON        interface{}
	Body        []byte
	ContentType string
	Header      http.Header
}

// Response is a fully read backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// TotalCount parses X-Total-Count, falling back to fallback when absent.
func (r *Response) TotalCount(fallback int64) int64 {
	if r == nil {
		return fallback
	}
	if v := r.Header.Get(TotalCountHeader); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out interface{}) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// Client is the backend REST client.
type Client struct {
	baseURL     string
	tenantID    string
	httpClient  *http.Client
	tokens      *TokenProvider
	cb          *gobreaker.CircuitBreaker[*Response]
	breakerName string
}

// NewClient creates a Client. An empty BaseURL is accepted; every call then
// fails with apperrors.ErrNotConfigured.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settings := cfg.Breaker
	if settings.Name == "" {
		settings = DefaultBreakerSettings()
	}

	httpClient := &http.Client{Timeout: timeout}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		baseURL:     baseURL,
		tenantID:    cfg.TenantID,
		httpClient:  httpClient,
		tokens:      NewTokenProvider(baseURL, cfg.Username, cfg.Password, httpClient),
		cb:          newBreaker(settings),
		breakerName: settings.Name,
	}
}

// TenantID returns the tenant every request is scoped to.
func (c *Client) TenantID() string {
	return c.tenantID
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens exposes the token provider, used by streaming uploads.
func (c *Client) Tokens() *TokenProvider {
	return c.tokens
}

// Do sends req and returns an error for any non-2xx status.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.Raw(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &StatusError{Status: resp.Status, Body: string(resp.Body), Response: resp}
	}
	return resp, nil
}

// Raw sends req and returns the backend response whatever its status. Only
// transport failures, breaker rejections and configuration problems are
// returned as errors.
func (c *Client) Raw(ctx context.Context, req Request) (*Response, error) {
	if c.baseURL == "" {
		return nil, apperrors.ErrNotConfigured
	}

	body := req.Body
	contentType := req.ContentType
	if req.JSON != nil {
		encoded, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = encoded
		if contentType == "" {
			contentType = ContentTypeJSON
			if req.Method == http.MethodPatch {
				contentType = ContentTypeMergePatch
			}
		}
	}

	target := c.URL(req.Path, req.Query)

	resp, err := c.execute(func() (*Response, error) {
		resp, err := c.sendWithRetry(ctx, req.Method, target, body, contentType, req.Header)
		if err != nil {
			return nil, err
		}
		if breakerFailureStatus(resp.Status) {
			return resp, &StatusError{Status: resp.Status, Body: string(resp.Body), Response: resp}
		}
		return resp, nil
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Response != nil {
			return se.Response, nil
		}
		return nil, err
	}
	return resp, nil
}

// URL builds {base}/api/{path}?{query}.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/api/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// sendWithRetry performs the request and, on 401, fetches a new token and
// tries exactly once more.
func (c *Client) sendWithRetry(ctx context.Context, method, target string, body []byte, contentType string, header http.Header) (*Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, target, body, contentType, header, token)
	if err != nil || resp.Status != http.StatusUnauthorized {
		return resp, err
	}

	logger.Debug().Str("method", method).Str("url", target).Msg("Backend returned 401, refreshing token")
	token, err = c.tokens.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, method, target, body, contentType, header, token)
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, contentType string, header http.Header, token string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordBackendRequest(method, resourceOf(target), 0, time.Since(start))
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	metrics.RecordBackendRequest(method, resourceOf(target), httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

// Stream sends a request whose body can only be read once, such as a
// multipart upload piped from the caller. It is not retried; the caller owns
// the returned response body.
func (c *Client) Stream(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, apperrors.ErrNotConfigured
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	target := c.URL(path, query)
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if cl := header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			httpReq.ContentLength = n
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordBackendRequest(method, resourceOf(target), 0, time.Since(start))
		return nil, fmt.Errorf("backend upload failed: %w", err)
	}
	metrics.RecordBackendRequest(method, resourceOf(target), resp.StatusCode, time.Since(start))
	return resp, nil
}

// resourceOf extracts the first path segment after /api/ for metric labels.
func resourceOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "unknown"
	}
	p := strings.TrimPrefix(u.Path, "/api/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}
