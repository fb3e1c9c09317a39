package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/metrics"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "svc"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

type fakeBackend struct {
	authCalls atomic.Int32
	apiCalls  atomic.Int32
	tokens    []string
	handler   func(w http.ResponseWriter, r *http.Request, call int32)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/authenticate" {
		n := f.authCalls.Add(1)
		tok := f.tokens[len(f.tokens)-1]
		if int(n) <= len(f.tokens) {
			tok = f.tokens[n-1]
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": tok})
		return
	}
	n := f.apiCalls.Add(1)
	f.handler(w, r, n)
}

func newTestClient(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL + "/",
		TenantID: "tenant_demo",
		Username: "svc",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
}

func TestClientRetriesOnceOn401(t *testing.T) {
	first := signedToken(t, time.Now().Add(time.Hour))
	second := signedToken(t, time.Now().Add(2*time.Hour))

	fb := &fakeBackend{tokens: []string{first, second}}
	var seen []string
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		seen = append(seen, r.Header.Get("Authorization"))
		if call == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}
	c := newTestClient(t, fb)

	var out []map[string]interface{}
	if _, err := c.GetJSON(context.Background(), "event-polls", nil, &out); err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}

	if got := fb.authCalls.Load(); got != 2 {
		t.Errorf("authenticate calls = %d, want 2", got)
	}
	if got := fb.apiCalls.Load(); got != 2 {
		t.Errorf("api calls = %d, want 2", got)
	}
	if len(seen) != 2 || seen[0] != "Bearer "+first || seen[1] != "Bearer "+second {
		t.Errorf("unexpected Authorization headers: %v", seen)
	}
}

func TestClientDoesNotRetryTwice(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("nope"))
	}
	c := newTestClient(t, fb)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls"})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if got := fb.apiCalls.Load(); got != 2 {
		t.Errorf("api calls = %d, want 2", got)
	}
	if se.Error() != "HTTP 401: nope" {
		t.Errorf("error text = %q", se.Error())
	}
}

func TestTokenIsCachedUntilExpiry(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		_, _ = w.Write([]byte(`{}`))
	}
	c := newTestClient(t, fb)

	for i := 0; i < 3; i++ {
		if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls/1"}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if got := fb.authCalls.Load(); got != 1 {
		t.Errorf("authenticate calls = %d, want 1", got)
	}

	// Within the final minute the cached token must not be reused.
	c.tokens.now = func() time.Time { return time.Now().Add(59*time.Minute + 30*time.Second) }
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls/1"}); err != nil {
		t.Fatal(err)
	}
	if got := fb.authCalls.Load(); got != 2 {
		t.Errorf("authenticate calls after expiry = %d, want 2", got)
	}
}

func TestTokenWithoutExpIsNotCached(t *testing.T) {
	tok := signedToken(t, time.Time{})
	fb := &fakeBackend{tokens: []string{tok}}
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		_, _ = w.Write([]byte(`{}`))
	}
	c := newTestClient(t, fb)

	for i := 0; i < 2; i++ {
		if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls/1"}); err != nil {
			t.Fatal(err)
		}
	}
	if got := fb.authCalls.Load(); got != 2 {
		t.Errorf("authenticate calls = %d, want 2", got)
	}
}

func TestConcurrentTokenCallersShareOneFetch(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	srv := httptest.NewServer(fb)
	defer srv.Close()
	p := NewTokenProvider(srv.URL, "svc", "secret", srv.Client())

	const callers = 8
	start := make(chan struct{})
	got := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i], errs[i] = p.Token(context.Background())
		}(i)
	}
	close(start)
	wg.Wait()

	for i := range got {
		if errs[i] != nil || got[i] != tok {
			t.Errorf("caller %d: token %q err %v", i, got[i], errs[i])
		}
	}
	if n := fb.authCalls.Load(); n != 1 {
		t.Errorf("authenticate calls = %d, want 1", n)
	}
}

func TestGetJSONAddsTenantFilterOnce(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	var query string
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		query = r.URL.RawQuery
		w.Header().Set(TotalCountHeader, "42")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}
	c := newTestClient(t, fb)

	q := map[string][]string{"tenantId.equals": {"tenant_demo"}, "page": {"0"}}
	var out []struct {
		ID int64 `json:"id"`
	}
	total, err := c.GetJSON(context.Background(), "event-medias", q, &out)
	if err != nil {
		t.Fatal(err)
	}
	if total != 42 {
		t.Errorf("total = %d, want 42", total)
	}
	if strings.Count(query, "tenantId.equals") != 1 {
		t.Errorf("tenant filter not added exactly once: %s", query)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestPatchUsesMergePatch(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	var contentType, body string
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{}`))
	}
	c := newTestClient(t, fb)

	if err := c.PatchJSON(context.Background(), "event-sponsors/3", c.WithTenantID(map[string]interface{}{"id": 3}), nil); err != nil {
		t.Fatal(err)
	}
	if contentType != ContentTypeMergePatch {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.Contains(body, `"tenantId":"tenant_demo"`) {
		t.Errorf("body missing tenantId: %s", body)
	}
}

func TestNotFoundUnwraps(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		http.NotFound(w, r)
	}
	c := newTestClient(t, fb)

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls/99"})
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestMissingBaseURL(t *testing.T) {
	c := NewClient(Config{TenantID: "t"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "event-polls"})
	if !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBreakerSuccessClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", context.Canceled, true},
		{"bad request", &StatusError{Status: 400}, true},
		{"not found", &StatusError{Status: 404}, true},
		{"unauthorized after retry", &StatusError{Status: 401}, false},
		{"forbidden", &StatusError{Status: 403}, true},
		{"too many requests", &StatusError{Status: 429}, false},
		{"server error", &StatusError{Status: 502}, false},
		{"transport", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBreakerSuccess(tt.err); got != tt.want {
				t.Errorf("isBreakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	fb := &fakeBackend{tokens: []string{tok}}
	fb.handler = func(w http.ResponseWriter, r *http.Request, call int32) {
		w.WriteHeader(http.StatusBadGateway)
	}
	srv := httptest.NewServer(fb)
	defer srv.Close()

	settings := DefaultBreakerSettings()
	settings.Name = "test-breaker"
	failuresBefore := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-breaker", "failure"))
	rejectedBefore := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-breaker", "rejected"))
	c := NewClient(Config{BaseURL: srv.URL, TenantID: "t", Username: "u", Password: "p", Breaker: settings})

	for i := 0; i < 10; i++ {
		resp, err := c.Raw(context.Background(), Request{Method: http.MethodGet, Path: "event-polls"})
		if err != nil {
			t.Fatalf("call %d: unexpected error %v", i, err)
		}
		if resp.Status != http.StatusBadGateway {
			t.Fatalf("call %d: status %d", i, resp.Status)
		}
	}

	_, err := c.Raw(context.Background(), Request{Method: http.MethodGet, Path: "event-polls"})
	if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
	if c.BreakerState() != "open" {
		t.Errorf("breaker state = %s, want open", c.BreakerState())
	}
	if got := fb.apiCalls.Load(); got != 10 {
		t.Errorf("api calls = %d, want 10", got)
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2 (open)", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-breaker", "failure")) - failuresBefore; got != 10 {
		t.Errorf("failures recorded = %v, want 10", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-breaker", "rejected")) - rejectedBefore; got != 1 {
		t.Errorf("rejections recorded = %v, want 1", got)
	}
}
