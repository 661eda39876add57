package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func seededDashboard() *Dashboard {
	return &Dashboard{
		Name:        "Y",
		Title:       "CFO",
		PhotoURL:    "https://files.test/photo.jpg",
		Metrics:     json.RawMessage(`{"deals":12}`),
		Growth:      "18%",
		GrowthYears: "5",
		PracticeMix: json.RawMessage(`{"advisory":60,"audit":40}`),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
}

func TestGetDashboardNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRepo{})

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var d Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if d.Name != "Y" || d.Title != "CFO" {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
}

func TestUpdateDashboardPartialMerge(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("Authorization", "Bearer token-a")
	rec := doRequest(srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The submitted field changed, everything else survived the merge.
	if repo.dashboard.Name != "X" {
		t.Fatalf("expected name X, got %q", repo.dashboard.Name)
	}
	if repo.dashboard.Title != "CFO" {
		t.Fatalf("title must be preserved, got %q", repo.dashboard.Title)
	}
	if string(repo.dashboard.Metrics) != `{"deals":12}` {
		t.Fatalf("metrics must be preserved, got %s", repo.dashboard.Metrics)
	}
	if !repo.dashboard.UpdatedAt.After(time.Now().Add(-time.Minute)) {
		t.Fatalf("updated_at must be restamped")
	}
}

func TestUpdateDashboardMergeIsIdempotent(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	send := func() {
		body := strings.NewReader(`{"name":"X","growth":"22%"}`)
		req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", body)
		req.Header.Set("Authorization", "Bearer token-a")
		rec := doRequest(srv, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	send()
	first := *repo.dashboard
	send()
	second := *repo.dashboard

	// Identical apart from the timestamp.
	first.UpdatedAt = time.Time{}
	second.UpdatedAt = time.Time{}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("merge is not idempotent:\n%s\n%s", a, b)
	}
}

func TestUpdateDashboardEmptyStringIsAChange(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", strings.NewReader(`{"growth":""}`))
	req.Header.Set("Authorization", "Bearer token-a")
	rec := doRequest(srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.dashboard.Growth != "" {
		t.Fatalf("explicit empty string must overwrite, got %q", repo.dashboard.Growth)
	}
}

func TestUpdateDashboardNoRow(t *testing.T) {
	repo := &fakeRepo{}
	srv, _ := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("Authorization", "Bearer token-a")
	rec := doRequest(srv, req)

	// No implicit create.
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateDashboardRequiresAuth(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", strings.NewReader(`{"name":"X"}`))
	rec := doRequest(srv, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if repo.dashboard.Name != "Y" {
		t.Fatalf("dashboard must not change without auth")
	}
}

func TestUpdateDashboardBadJSON(t *testing.T) {
	repo := &fakeRepo{dashboard: seededDashboard()}
	srv, _ := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodPut, "/admin/dashboard", strings.NewReader(`{`))
	req.Header.Set("Authorization", "Bearer token-a")
	rec := doRequest(srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
