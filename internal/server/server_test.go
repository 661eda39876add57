package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// fakeVerifier resolves tokens from a fixed map; anything else fails.
type fakeVerifier struct {
	tokens map[string]Identity
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return Identity{}, ErrUnauthorized
}

// fakeRepo is an in-memory Repository that records calls.
type fakeRepo struct {
	sections  []Section
	entries   map[string][]Entry
	dashboard *Dashboard

	created     []Entry
	deleted     []uuid.UUID
	listCalls   int
	updateCalls int
}

func (f *fakeRepo) ListSections(ctx context.Context) ([]Section, error) {
	return f.sections, nil
}

func (f *fakeRepo) ListEntries(ctx context.Context, section string) ([]Entry, error) {
	f.listCalls++
	return f.entries[section], nil
}

func (f *fakeRepo) CreateEntry(ctx context.Context, e Entry) error {
	f.created = append(f.created, e)
	return nil
}

func (f *fakeRepo) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) GetDashboard(ctx context.Context) (Dashboard, error) {
	if f.dashboard == nil {
		return Dashboard{}, ErrNotFound
	}
	return *f.dashboard, nil
}

func (f *fakeRepo) UpdateDashboard(ctx context.Context, d Dashboard) error {
	f.updateCalls++
	if f.dashboard == nil {
		return ErrNotFound
	}
	*f.dashboard = d
	return nil
}

// fakeStorage records uploads and returns a predictable URL.
type fakeStorage struct {
	uploads []fakeUpload
}

type fakeUpload struct {
	key         string
	contentType string
	size        int
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.uploads = append(f.uploads, fakeUpload{key: key, contentType: contentType, size: len(data)})
	return "http://files.test/portfolio/" + key, nil
}

func (f *fakeStorage) Ping(ctx context.Context) error { return nil }

func testConfig() Config {
	return Config{
		Addr:            ":0",
		Version:         "test",
		AdminUIDs:       []string{"uid-a"},
		AllowedSections: []string{"models", "research"},
		MaxUploadMB:     20,
		AllowedOrigins:  []string{"*"},
		LogLevel:        "error",
	}
}

// newTestServer wires a Server with in-memory fakes. The verifier accepts
// "token-a" for the allow-listed uid-a and "token-b" for the outsider uid-b.
func newTestServer(t *testing.T, repo *fakeRepo) (*Server, *fakeStorage) {
	t.Helper()
	if repo.entries == nil {
		repo.entries = map[string][]Entry{}
	}
	storage := &fakeStorage{}
	srv := New(Options{
		Config:  testConfig(),
		Repo:    repo,
		Storage: storage,
		Verifier: &fakeVerifier{tokens: map[string]Identity{
			"token-a": {UID: "uid-a", Email: "a@example.com"},
			"token-b": {UID: "uid-b", Email: "b@example.com"},
		}},
	})
	return srv, storage
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRootEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["service"] != "portfolio-backend" {
		t.Fatalf("unexpected service name: %v", body["service"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", body.Status)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-123")
	rec := doRequest(srv, req)
	if got := rec.Header().Get("X-Request-Id"); got != "rid-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	rec = doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodOptions, "/admin/entry", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := doRequest(srv, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}
