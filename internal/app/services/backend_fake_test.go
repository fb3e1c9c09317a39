package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mosc/eventadmin/internal/pkg/backend"
)

const testTenant = "tenant_demo_001"

type recordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
}

// fakeAPI is an in-process stand-in for the event backend. Routes are keyed
// by "METHOD /api/path".
type fakeAPI struct {
	t      *testing.T
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []recordedRequest
}

func newFakeAPI(t *testing.T) (*fakeAPI, *backend.Client) {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := backend.Config{
		BaseURL:  srv.URL,
		TenantID: testTenant,
		Username: "admin",
		Password: "admin",
		Timeout:  5 * time.Second,
		Breaker:  backend.DefaultBreakerSettings(),
	}
	cfg.Breaker.Name = t.Name()
	return f, backend.NewClient(cfg)
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// reply registers a route answering with a fixed JSON value.
func (f *fakeAPI) reply(method, path string, status int, v interface{}) {
	f.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	})
}

func (f *fakeAPI) requests(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/authenticate" {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, _ := tok.SignedString([]byte("test"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": signed})
		return
	}

	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"title":"Not Found"}`, http.StatusNotFound)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	h(w, r)
}

func decodeBody(t *testing.T, req recordedRequest) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(req.Body, &m); err != nil {
		t.Fatalf("request body is not a JSON object: %v (%s)", err, req.Body)
	}
	return m
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
