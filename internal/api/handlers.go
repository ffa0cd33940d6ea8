package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/soundmap/soundmap/internal/cache"
	"github.com/soundmap/soundmap/internal/geocode"
	"github.com/soundmap/soundmap/internal/resolver"
	"github.com/soundmap/soundmap/internal/version"
)

// Resolver runs the full resolution pipeline for one artist name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (resolver.ResolvedLocation, error)
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	resolver Resolver
	geocoder *geocode.Cascade
	store    cache.Store // nil runs cache-less
	ttl      time.Duration
	delay    time.Duration
	maxBatch int
	logger   *slog.Logger
}

// Health responds to liveness probes.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("X-Soundmap-Version", version.Version)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK")) //nolint:errcheck
}

// NotFound answers unrouted paths.
func (h *Handlers) NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found")) //nolint:errcheck
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cacheGet looks up an artist's cached location. Read errors are logged and
// reported as misses.
func (h *Handlers) cacheGet(ctx context.Context, name string) (resolver.ResolvedLocation, bool) {
	if h.store == nil {
		return resolver.ResolvedLocation{}, false
	}
	raw, ok, err := h.store.Get(ctx, cache.Key(name))
	if err != nil {
		h.logger.Warn("cache read failed",
			slog.String("artist", name),
			slog.String("error", err.Error()))
		return resolver.ResolvedLocation{}, false
	}
	if !ok {
		return resolver.ResolvedLocation{}, false
	}
	var loc resolver.ResolvedLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		h.logger.Warn("cache entry corrupt",
			slog.String("artist", name),
			slog.String("error", err.Error()))
		return resolver.ResolvedLocation{}, false
	}
	return loc, true
}

// cachePut writes a resolved location back. Write errors are logged; the
// response is unaffected. The write survives client disconnects so work
// already done is not lost.
func (h *Handlers) cachePut(ctx context.Context, name string, loc resolver.ResolvedLocation) {
	if h.store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	raw, err := json.Marshal(loc)
	if err != nil {
		h.logger.Error("encoding cache entry",
			slog.String("artist", name),
			slog.String("error", err.Error()))
		return
	}
	if err := h.store.Put(ctx, cache.Key(name), raw, h.ttl); err != nil {
		h.logger.Warn("cache write failed",
			slog.String("artist", name),
			slog.String("error", err.Error()))
	}
}
