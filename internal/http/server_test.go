package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneta/internal/core"
	"moneta/internal/persist"
	"moneta/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewLedgerService(persist.NewMemoryStore(), nil)
	s := NewServer(":0", svc, time.Minute)
	t.Cleanup(func() { s.cacheManager.Stop(); s.rateLimiter.stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedCatalog(t *testing.T, s *Server) (catID, accID string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/categories", "u1", map[string]string{"type": "expense", "name": "Food"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add category: %d %s", rec.Code, rec.Body.String())
	}
	cat := decode[core.Category](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/accounts", "u1", map[string]string{"name": "Cash"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add account: %d %s", rec.Code, rec.Body.String())
	}
	acc := decode[core.Account](t, rec)
	return cat.ID, acc.ID
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, rec.Code)
		}
	}
}

func TestMissingUserHeaderIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/records", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRecordLifecycle(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID,
		"amount": 150, "note": "Lunch",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: %d %s", rec.Code, rec.Body.String())
	}
	saved := decode[core.Record](t, rec)
	if saved.ID == "" || saved.Amount.Cents != 15000 {
		t.Fatalf("unexpected record: %+v", saved)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/records?granularity=monthly&anchor=2024-01-01", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	list := decode[struct {
		Records []core.Record `json:"records"`
	}](t, rec)
	if len(list.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list.Records))
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/records/"+saved.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	// Deleting again is still fine.
	rec = doJSON(t, s, http.MethodDelete, "/api/records/"+saved.ID, "u1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat delete: %d", rec.Code)
	}
}

func TestValidationErrorsMapTo422(t *testing.T) {
	s := newTestServer(t)
	seedCatalog(t, s)
	rec := doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": "ghost", "accountId": "ghost", "amount": 10,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestReferencedCategoryDeleteMapsTo409(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 10,
	})
	rec := doJSON(t, s, http.MethodDelete, "/api/categories/"+catID, "u1", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 150,
	})

	rec := doJSON(t, s, http.MethodPut, "/api/budgets/"+catID, "u1", map[string]any{"amount": 300})
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budgets?granularity=monthly&anchor=2024-01-01", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("budgets: %d %s", rec.Code, rec.Body.String())
	}
	statuses := decode[[]struct {
		UtilizationPercent int `json:"utilizationPercent"`
	}](t, rec)
	if len(statuses) != 1 || statuses[0].UtilizationPercent != 50 {
		t.Fatalf("unexpected statuses: %s", rec.Body.String())
	}
}

func TestAnalysisEndpointAndCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 150,
	})

	url := "/api/analysis?granularity=monthly&anchor=2024-01-01"
	rec := doJSON(t, s, http.MethodGet, url, "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis: %d %s", rec.Code, rec.Body.String())
	}
	first := rec.Body.String()
	if !strings.Contains(first, "\"Food\"") {
		t.Fatalf("analysis missing category: %s", first)
	}

	// A new record must be visible on the next read despite the cache.
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-16", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 50,
	})
	rec = doJSON(t, s, http.MethodGet, url, "u1", nil)
	if rec.Body.String() == first {
		t.Fatalf("cache not invalidated after mutation")
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 150, "note": "Lunch",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/export/backup", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("backup: %d", rec.Code)
	}
	backup := rec.Body.Bytes()

	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(backup))
	req.Header.Set("X-User-ID", "u2")
	out := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("import: %d %s", out.Code, out.Body.String())
	}
	res := decode[struct {
		Added int `json:"added"`
	}](t, out)
	if res.Added != 1 {
		t.Fatalf("expected 1 added, got %d", res.Added)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/export/csv", "u1", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "Date,Type,Category,Account,Amount,Note") {
		t.Fatalf("csv export: %d %q", rec.Code, rec.Body.String())
	}
}

func TestImportMalformedPayloadIs400(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("not json"))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRestoreReplacesLedger(t *testing.T) {
	s := newTestServer(t)
	catID, accID := seedCatalog(t, s)
	doJSON(t, s, http.MethodPost, "/api/records", "u1", map[string]any{
		"date": "2024-01-15", "type": "expense",
		"categoryId": catID, "accountId": accID, "amount": 150,
	})
	backup := doJSON(t, s, http.MethodGet, "/api/export/backup", "u1", nil).Body.Bytes()

	req := httptest.NewRequest(http.MethodPost, "/api/restore", bytes.NewReader(backup))
	req.Header.Set("X-User-ID", "u3")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("restore: %d %s", rec.Code, rec.Body.String())
	}

	list := doJSON(t, s, http.MethodGet, "/api/records?granularity=monthly&anchor=2024-01-01", "u3", nil)
	got := decode[struct {
		Records []core.Record `json:"records"`
	}](t, list)
	if len(got.Records) != 1 {
		t.Fatalf("restore lost records: %s", list.Body.String())
	}
}

func TestUnknownGranularityIs422(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/records?granularity=decade", "u1", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
	}
}
