package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractPlateFromPath(t *testing.T) {
	plate, err := extractPlateFromPath("/api/vehicles/abc-123/daily-fee", "/api/vehicles/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plate != "ABC123" {
		t.Fatalf("unexpected plate: %s", plate)
	}

	if _, err := extractPlateFromPath("/wrong/path", "/api/vehicles/"); err == nil {
		t.Fatalf("expected error for invalid path")
	}
	if _, err := extractPlateFromPath("/api/vehicles//fees", "/api/vehicles/"); err == nil {
		t.Fatalf("expected error for empty plate")
	}
}

func TestParseDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?date=2024-12-17&bad=17.12.2024", nil)

	date, err := parseDate(req, "date")
	if err != nil || !date.Equal(time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v err=%v", date, err)
	}
	if _, err := parseDate(req, "bad"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := parseDate(req, "missing"); err == nil {
		t.Fatalf("expected missing error")
	}
}

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, map[string]string{"ok": "true"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}
