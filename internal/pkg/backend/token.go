package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mosc/eventadmin/internal/pkg/logger"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
)

// expiryBuffer is subtracted from the token's exp claim so a cached token is
// never sent in its final minute.
const expiryBuffer = 60 * time.Second

// ErrMissingCredentials is returned when no backend user or password is set.
var ErrMissingCredentials = errors.New("API JWT credentials or API base URL missing")

type authenticateRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type authenticateResponse struct {
	IDToken string `json:"id_token"`
}

// TokenProvider obtains and caches the service JWT used for backend calls.
type TokenProvider struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenProvider creates a provider that authenticates against baseURL.
func NewTokenProvider(baseURL, username, password string, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns the cached token, fetching a new one when the cache is empty
// or within a minute of expiry. Concurrent callers share a single fetch.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiresAt) {
		return p.token, nil
	}
	metrics.BackendTokenRefreshes.WithLabelValues("expired").Inc()
	return p.fetchLocked(ctx)
}

// Refresh discards the cached token and fetches a fresh one.
func (p *TokenProvider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	metrics.BackendTokenRefreshes.WithLabelValues("unauthorized").Inc()
	return p.fetchLocked(ctx)
}

// Invalidate drops the cached token.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	p.token = ""
	p.expiresAt = time.Time{}
	p.mu.Unlock()
}

func (p *TokenProvider) fetchLocked(ctx context.Context) (string, error) {
	if p.username == "" || p.password == "" || p.baseURL == "" {
		return "", ErrMissingCredentials
	}

	body, err := json.Marshal(authenticateRequest{
		Username:   p.username,
		Password:   p.password,
		RememberMe: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode authenticate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/authenticate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build authenticate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch JWT from backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("failed to fetch JWT from backend: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var out authenticateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode authenticate response: %w", err)
	}
	if out.IDToken == "" {
		return "", errors.New("no id_token returned from backend")
	}

	expiresAt, ok := tokenExpiry(out.IDToken)
	if ok {
		p.token = out.IDToken
		p.expiresAt = expiresAt.Add(-expiryBuffer)
	} else {
		// Without an exp claim the token is used once and not cached.
		p.token = ""
		logger.Warn().Msg("Backend token has no exp claim, not caching")
	}
	return out.IDToken, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend is the party that verifies it.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
