package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/genvis/genvis-core/internal/feature"
)

// ─── List / Get ────────────────────────────────────────────────────

func TestListFeatures(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodGet, "/api/v1/features/", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Features []feature.Info `json:"features"`
		Count    int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Count == 0 {
		t.Fatal("expected at least one feature")
	}

	names := make(map[string]bool, len(resp.Features))
	for _, info := range resp.Features {
		names[info.Name] = true
	}
	for _, want := range []string{"ExposureTime", "Gamma", "PixelFormat", "AcquisitionStart"} {
		if !names[want] {
			t.Errorf("feature %q missing from list", want)
		}
	}
}

func TestGetFeature(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodGet, "/api/v1/features/ExposureTime", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var info feature.Info
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if info.Name != "ExposureTime" {
		t.Errorf("name = %q, want ExposureTime", info.Name)
	}
	if info.Unit != "us" {
		t.Errorf("unit = %q, want us", info.Unit)
	}
}

func TestGetFeature_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodGet, "/api/v1/features/NoSuchFeature", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Set Value ─────────────────────────────────────────────────────

func TestSetFeature(t *testing.T) {
	srv, registry := testServer(t)
	router := srv.buildRouter()

	tests := []struct {
		name      string
		feature   string
		body      string
		wantValue string
	}{
		{"integer from number", "ExposureTime", `{"value": 2500}`, "2500"},
		{"integer from string", "ExposureTime", `{"value": "3000"}`, "3000"},
		{"float", "Gamma", `{"value": 1.8}`, "1.8"},
		{"enum by entry name", "PixelFormat", `{"value": "Mono16"}`, "Mono16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, router, http.MethodPut, "/api/v1/features/"+tt.feature+"/value", tt.body)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
			}

			var info feature.Info
			if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if info.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", info.Value, tt.wantValue)
			}
		})
	}

	// The write went through the graph, not just the response
	got, err := registry.GetEnum(context.Background(), "PixelFormat")
	if err != nil {
		t.Fatalf("GetEnum: %v", err)
	}
	if got != "Mono16" {
		t.Errorf("PixelFormat = %q, want Mono16", got)
	}
}

func TestSetFeature_Invalid(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	tests := []struct {
		name    string
		feature string
		body    string
		want    int
	}{
		{"unknown feature", "NoSuchFeature", `{"value": 1}`, http.StatusNotFound},
		{"unknown enum entry", "PixelFormat", `{"value": "Mono12"}`, http.StatusBadRequest},
		{"unparsable integer", "ExposureTime", `{"value": "fast"}`, http.StatusBadRequest},
		{"command is not settable", "AcquisitionStart", `{"value": 1}`, http.StatusBadRequest},
		{"missing value", "ExposureTime", `{}`, http.StatusBadRequest},
		{"null value", "ExposureTime", `{"value": null}`, http.StatusBadRequest},
		{"object value", "ExposureTime", `{"value": {"x": 1}}`, http.StatusBadRequest},
		{"invalid JSON", "ExposureTime", `not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, router, http.MethodPut, "/api/v1/features/"+tt.feature+"/value", tt.body)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

// ─── Execute ───────────────────────────────────────────────────────

func TestExecuteFeature(t *testing.T) {
	srv, registry := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodPost, "/api/v1/features/AcquisitionStart/execute", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	// Command value landed in the trigger register
	got, err := registry.GetInt(context.Background(), "TriggerReg")
	if err != nil {
		t.Fatalf("GetInt: %v", err)
	}
	if got != 1 {
		t.Errorf("TriggerReg = %d, want 1", got)
	}
}

func TestExecuteFeature_NotACommand(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodPost, "/api/v1/features/ExposureTime/execute", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// ─── History ───────────────────────────────────────────────────────

// setupHistoryDB creates an in-memory SQLite database with the
// feature_history schema and attaches it to the registry.
func setupHistoryDB(t *testing.T, registry *feature.Registry) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE feature_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feature TEXT NOT NULL,
			value TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'set',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	registry.SetHistory(feature.NewSQLiteHistoryRepository(db))
}

func TestFeatureHistory(t *testing.T) {
	srv, registry := testServer(t)
	setupHistoryDB(t, registry)
	router := srv.buildRouter()

	// Record two values via the API
	for _, body := range []string{`{"value": 1000}`, `{"value": 2000}`} {
		req := authedRequest(t, router, http.MethodPut, "/api/v1/features/ExposureTime/value", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("set status = %d; body: %s", w.Code, w.Body.String())
		}
	}

	req := authedRequest(t, router, http.MethodGet, "/api/v1/features/ExposureTime/history", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Feature string                 `json:"feature"`
		History []feature.HistoryEntry `json:"history"`
		Count   int                    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	// Newest first
	if resp.History[0].Value != "2000" {
		t.Errorf("history[0].value = %q, want 2000", resp.History[0].Value)
	}
}

func TestFeatureHistory_Validation(t *testing.T) {
	srv, registry := testServer(t)
	setupHistoryDB(t, registry)
	router := srv.buildRouter()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown feature", "/api/v1/features/NoSuchFeature/history", http.StatusNotFound},
		{"invalid limit", "/api/v1/features/ExposureTime/history?limit=abc", http.StatusBadRequest},
		{"limit too large", "/api/v1/features/ExposureTime/history?limit=9999", http.StatusBadRequest},
		{"invalid from", "/api/v1/features/ExposureTime/history?from=yesterday", http.StatusBadRequest},
		{"invalid to", "/api/v1/features/ExposureTime/history?to=later", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, router, http.MethodGet, tt.path, "")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestFeatureHistory_Unavailable(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	// No history repository attached
	req := authedRequest(t, router, http.MethodGet, "/api/v1/features/ExposureTime/history", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

// ─── Cache ─────────────────────────────────────────────────────────

func TestClearCache(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := authedRequest(t, router, http.MethodPost, "/api/v1/cache/clear", "")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// ─── Metrics ───────────────────────────────────────────────────────

func TestMetrics(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var metrics SystemMetrics
	if err := json.Unmarshal(w.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if metrics.Version != "test" {
		t.Errorf("version = %q, want test", metrics.Version)
	}
	if metrics.Features.Total == 0 {
		t.Error("expected non-zero feature count")
	}
	if metrics.Runtime.Goroutines == 0 {
		t.Error("expected non-zero goroutine count")
	}
}

// ─── Helpers ───────────────────────────────────────────────────────

func TestRawValueToString(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"number", `2500`, "2500", false},
		{"float", `1.5`, "1.5", false},
		{"bool", `true`, "true", false},
		{"string", `"Mono8"`, "Mono8", false},
		{"null", `null`, "", true},
		{"object", `{"x":1}`, "", true},
		{"array", `[1,2]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rawValueToString(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}
