package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		upper bool
		want  time.Time
	}{
		{"2026-02-01", false, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-02-01", true, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
		{"2026-02-01T10:30:00Z", true, time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-02-01T06:00:00-05:00", false, time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, tt.upper)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", tt.in, err)
		}
		if got == nil || !got.Equal(tt.want) {
			t.Errorf("parseDate(%q, %v) = %v, want %v", tt.in, tt.upper, got, tt.want)
		}
		if got != nil && got.Location() != time.UTC {
			t.Errorf("parseDate(%q) kept zone %v, want UTC", tt.in, got.Location())
		}
	}

	if got, err := parseDate("", false); err != nil || got != nil {
		t.Errorf("empty input should yield nil, got %v, %v", got, err)
	}
	if _, err := parseDate("ayer", false); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}

func TestDateRange_RejectsInvertedBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?desde=2026-03-01&hasta=2026-02-01", nil)
	w := httptest.NewRecorder()
	if _, _, ok := dateRange(w, r); ok {
		t.Error("expected desde after hasta to be rejected")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	r = httptest.NewRequest("GET", "/x?desde=2026-02-01&hasta=2026-02-01", nil)
	desde, hasta, ok := dateRange(httptest.NewRecorder(), r)
	if !ok {
		t.Fatal("single day range rejected")
	}
	if hasta.Sub(*desde) != 24*time.Hour {
		t.Errorf("expected a one day window, got %v", hasta.Sub(*desde))
	}
}

func TestSelector(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	r.Header.Set(HeaderCentro, "  guayaquil ")
	if got := selector(r); got != "guayaquil" {
		t.Errorf("selector = %q", got)
	}
}
