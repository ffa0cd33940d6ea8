package wikidata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/soundmap/soundmap/internal/provider"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	limiter := provider.NewRateLimiterMap(time.Millisecond)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewWithEndpoint(limiter, logger, 2, srv.URL)
}

func bindingResponse(variable, value string) string {
	return fmt.Sprintf(`{"results":{"bindings":[{"%s":{"type":"literal","value":"%s"}}]}}`, variable, value)
}

func TestPersonBirthplace(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, "wd:Q5") {
			t.Errorf("expected human class in query: %s", q)
		}
		if !strings.Contains(q, `"Nick Cave"@en`) {
			t.Errorf("expected label literal in query: %s", q)
		}
		w.Write([]byte(bindingResponse("placeLabel", "Warracknabeal"))) //nolint:errcheck
	}))

	place, err := adapter.PersonBirthplace(context.Background(), "Nick Cave")
	if err != nil {
		t.Fatalf("PersonBirthplace: %v", err)
	}
	if place != "Warracknabeal" {
		t.Errorf("got %q", place)
	}
}

func TestBandFormation(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, "wd:Q215380") || !strings.Contains(q, "wdt:P740") {
			t.Errorf("expected band formation query, got: %s", q)
		}
		w.Write([]byte(bindingResponse("placeLabel", "Manchester"))) //nolint:errcheck
	}))

	place, err := adapter.BandFormation(context.Background(), "Oasis")
	if err != nil {
		t.Fatalf("BandFormation: %v", err)
	}
	if place != "Manchester" {
		t.Errorf("got %q", place)
	}
}

func TestSubdivisionCapital(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, "wdt:P36") {
			t.Errorf("expected capital property in query: %s", q)
		}
		w.Write([]byte(bindingResponse("capitalLabel", "Perth"))) //nolint:errcheck
	}))

	capital, err := adapter.SubdivisionCapital(context.Background(), "Western Australia")
	if err != nil {
		t.Fatalf("SubdivisionCapital: %v", err)
	}
	if capital != "Perth" {
		t.Errorf("got %q", capital)
	}
}

func TestQueryLabel_EmptyBindings(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"bindings":[]}}`)) //nolint:errcheck
	}))

	place, err := adapter.PersonBirthplace(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("PersonBirthplace: %v", err)
	}
	if place != "" {
		t.Errorf("expected miss, got %q", place)
	}
}

func TestQueryLabel_EntityIDTreatedAsMiss(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bindingResponse("placeLabel", "Q1370963"))) //nolint:errcheck
	}))

	place, err := adapter.PersonBirthplace(context.Background(), "Somebody")
	if err != nil {
		t.Fatalf("PersonBirthplace: %v", err)
	}
	if place != "" {
		t.Errorf("expected bare entity ID to be a miss, got %q", place)
	}
}

func TestEscapeLiteral(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, `"The \"Quoted\" Band"@en`) {
			t.Errorf("expected escaped quotes in query: %s", q)
		}
		w.Write([]byte(`{"results":{"bindings":[]}}`)) //nolint:errcheck
	}))

	if _, err := adapter.BandFormation(context.Background(), `The "Quoted" Band`); err != nil {
		t.Fatalf("BandFormation: %v", err)
	}
}
