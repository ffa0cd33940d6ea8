package wikipedia

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
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
	return NewWithBaseURL(limiter, logger, 2, srv.URL)
}

func writeParse(t *testing.T, w http.ResponseWriter, wikitext string) {
	t.Helper()
	resp := map[string]any{
		"parse": map[string]any{
			"wikitext": map[string]string{"*": wikitext},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatal(err)
	}
}

func TestFetchOrigin(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "query":
			if got := r.URL.Query().Get("srsearch"); got != "Arctic Monkeys band" {
				t.Errorf("unexpected search: %q", got)
			}
			w.Write([]byte(`{"query":{"search":[{"title":"Arctic Monkeys"}]}}`)) //nolint:errcheck
		case "parse":
			if got := r.URL.Query().Get("page"); got != "Arctic Monkeys" {
				t.Errorf("unexpected page: %q", got)
			}
			if got := r.URL.Query().Get("section"); got != "0" {
				t.Errorf("expected section 0, got %q", got)
			}
			writeParse(t, w, "{{Infobox musical artist\n| name = Arctic Monkeys\n| origin = [[Sheffield]], England\n| genre = rock\n}}")
		default:
			t.Errorf("unexpected action: %s", r.URL.RawQuery)
		}
	}))

	loc, err := adapter.FetchOrigin(context.Background(), "Arctic Monkeys band")
	if err != nil {
		t.Fatalf("FetchOrigin: %v", err)
	}
	if loc != "Sheffield, England" {
		t.Errorf("got %q, want %q", loc, "Sheffield, England")
	}
}

func TestFetchOrigin_BirthPlaceFallback(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "query" {
			w.Write([]byte(`{"query":{"search":[{"title":"Some Singer"}]}}`)) //nolint:errcheck
			return
		}
		writeParse(t, w, "{{Infobox person\n| birth_place = [[Austin]], Texas, U.S.\n}}")
	}))

	loc, err := adapter.FetchOrigin(context.Background(), "Some Singer")
	if err != nil {
		t.Fatalf("FetchOrigin: %v", err)
	}
	if loc != "Austin, Texas, U.S." {
		t.Errorf("got %q", loc)
	}
}

func TestFetchOrigin_EmptySearch(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"search":[]}}`)) //nolint:errcheck
	}))

	loc, err := adapter.FetchOrigin(context.Background(), "nobody at all")
	if err != nil {
		t.Fatalf("FetchOrigin: %v", err)
	}
	if loc != "" {
		t.Errorf("expected empty result, got %q", loc)
	}
}

func TestFetchOrigin_NoInfoboxField(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "query" {
			w.Write([]byte(`{"query":{"search":[{"title":"Plain Article"}]}}`)) //nolint:errcheck
			return
		}
		writeParse(t, w, "Just prose with no infobox at all.")
	}))

	loc, err := adapter.FetchOrigin(context.Background(), "Plain Article")
	if err != nil {
		t.Fatalf("FetchOrigin: %v", err)
	}
	if loc != "" {
		t.Errorf("expected empty result, got %q", loc)
	}
}

func TestFetchOrigin_MissingPage(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "query" {
			w.Write([]byte(`{"query":{"search":[{"title":"Gone"}]}}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`)) //nolint:errcheck
	}))

	loc, err := adapter.FetchOrigin(context.Background(), "Gone")
	if err != nil {
		t.Fatalf("FetchOrigin: %v", err)
	}
	if loc != "" {
		t.Errorf("expected empty result, got %q", loc)
	}
}

func TestCleanLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"piped link keeps target", "[[Sheffield, England|Sheffield]]", "Sheffield, England"},
		{"plain link", "[[London]], England", "London, England"},
		{"template stripped", "{{nowrap|1962}} Liverpool, England", "Liverpool, England"},
		{"nested templates", "{{outer {{inner}} }}Berlin", "Berlin"},
		{"html tags", "Dublin<br />Ireland", "DublinIreland"},
		{"nbsp and whitespace", "New&nbsp;York,   U.S.", "New York, U.S."},
		{"empty after cleaning", "{{citation needed}}", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLocation(tt.in); got != tt.want {
				t.Errorf("CleanLocation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
