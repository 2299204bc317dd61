package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Stockmasterflex/legend-ai-scanner/database"
	"github.com/Stockmasterflex/legend-ai-scanner/database/patterns"
)

type stubStore struct {
	lastLimit  int
	lastCursor string
	page       *patterns.Page
	status     *patterns.Status
	err        error
}

func (s *stubStore) FetchPage(limit int, cursor string) (*patterns.Page, error) {
	s.lastLimit, s.lastCursor = limit, cursor
	return s.page, s.err
}

func (s *stubStore) Status() (*patterns.Status, error) {
	return s.status, s.err
}

func samplePage() *patterns.Page {
	price := 126.25
	return &patterns.Page{
		Items: []database.PatternRecord{{
			Ticker:     "NVDA",
			Pattern:    "VCP",
			AsOf:       time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC),
			Confidence: 94,
			Price:      &price,
			Meta:       `{"contractions":3}`,
		}},
		NextCursor: "abc",
	}
}

func TestHandlePatterns(t *testing.T) {
	store := &stubStore{page: samplePage()}
	srv := NewServer(store, nil, nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns?limit=10&cursor=tok", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.lastLimit != 10 || store.lastCursor != "tok" {
		t.Errorf("store called with limit=%d cursor=%q", store.lastLimit, store.lastCursor)
	}

	var page patterns.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Ticker != "NVDA" || page.NextCursor != "abc" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestHandlePatternsLimitValidation(t *testing.T) {
	store := &stubStore{page: &patterns.Page{}}
	srv := NewServer(store, nil, nil, nil, nil, "")

	for _, query := range []string{"limit=0", "limit=9999", "limit=abc", ""} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns?"+query, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if store.lastLimit != defaultPageLimit {
			t.Errorf("query %q: limit = %d, want default %d", query, store.lastLimit, defaultPageLimit)
		}
	}
}

func TestHandlePatternsStoreError(t *testing.T) {
	srv := NewServer(&stubStore{err: errors.New("db down")}, nil, nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patterns", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	lastScan := time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)
	span := 42
	srv := NewServer(&stubStore{status: &patterns.Status{
		LastScanTime:          &lastScan,
		RowsTotal:             1234,
		PatternsDailySpanDays: &span,
		Version:               patterns.APIVersion,
	}}, nil, nil, nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status patterns.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.RowsTotal != 1234 || status.Version != patterns.APIVersion {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestHandleScanTriggerAuth(t *testing.T) {
	triggered := false
	trigger := func() bool { triggered = true; return true }
	srv := NewServer(&stubStore{}, nil, nil, nil, trigger, "sekrit")

	// Missing token is rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || triggered {
		t.Fatalf("unauthenticated trigger: status %d, triggered %v", rec.Code, triggered)
	}

	// Bearer token accepted.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted || !triggered {
		t.Fatalf("authenticated trigger: status %d, triggered %v", rec.Code, triggered)
	}
}

func TestHandleScanTriggerBusy(t *testing.T) {
	srv := NewServer(&stubStore{}, nil, nil, nil, func() bool { return false }, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(&stubStore{}, nil, nil, func() error { return nil }, nil, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rec.Code)
	}

	srv = NewServer(&stubStore{}, nil, nil, func() error { return errors.New("no db") }, nil, "")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d", rec.Code)
	}
}
