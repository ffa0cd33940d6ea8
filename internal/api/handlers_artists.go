package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/soundmap/soundmap/internal/resolver"
)

type artistsRequest struct {
	Artists []string `json:"artists"`
}

// artistLine is one NDJSON line of the streaming response.
type artistLine struct {
	Artist string    `json:"artist"`
	Name   string    `json:"location_name"`
	Coord  []float64 `json:"location_coord"`
}

func line(artist string, loc resolver.ResolvedLocation) artistLine {
	return artistLine{Artist: artist, Name: loc.Name, Coord: loc.Coord}
}

// ResolveArtists streams resolved locations for a batch of artist names as
// NDJSON: serviceable cached entries first, then fresh resolves in input
// order. Partial cached entries count as misses and are re-resolved in full.
func (h *Handlers) ResolveArtists(w http.ResponseWriter, r *http.Request) {
	var req artistsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Artists) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid artists array"})
		return
	}

	names := req.Artists
	if len(names) > h.maxBatch {
		names = names[:h.maxBatch]
	}

	ctx := r.Context()

	type cachedHit struct {
		name string
		loc  resolver.ResolvedLocation
	}
	var cached []cachedHit
	var pending []string
	for _, name := range names {
		if loc, ok := h.cacheGet(ctx, name); ok && loc.IsServiceable() {
			cached = append(cached, cachedHit{name: name, loc: loc})
			continue
		}
		pending = append(pending, name)
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	emit := func(l artistLine) bool {
		if err := enc.Encode(l); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	for _, hit := range cached {
		if !emit(line(hit.name, hit.loc)) {
			return
		}
	}

	for i, name := range pending {
		if i > 0 && h.delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.delay):
			}
		}
		if ctx.Err() != nil {
			return
		}

		loc, err := h.resolver.Resolve(ctx, name)
		if err != nil {
			// Lines already emitted remain valid; the client must
			// tolerate a truncated stream.
			h.logger.Error("resolve failed, closing stream",
				slog.String("artist", name),
				slog.String("error", err.Error()))
			return
		}
		if !emit(line(name, loc)) {
			return
		}
		h.cachePut(ctx, name, loc)
	}
}

// GetArtist serves a single artist, retrying the geocode of partial cache
// entries (a stored name without coordinates) and persisting any repair.
func (h *Handlers) GetArtist(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing artist name"})
		return
	}
	ctx := r.Context()

	loc, ok := h.cacheGet(ctx, name)
	switch {
	case ok && loc.IsServiceable():
		// Serve as-is.
	case ok:
		// Partial entry: a location name that failed to geocode last time.
		if geo := h.geocoder.Geocode(ctx, loc.Name); geo != nil {
			loc = resolver.ResolvedLocation{
				Name:  geo.DisplayName,
				Coord: []float64{geo.Lat, geo.Lon},
			}
			h.cachePut(ctx, name, loc)
		}
	default:
		var err error
		loc, err = h.resolver.Resolve(ctx, name)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		h.cachePut(ctx, name, loc)
	}

	writeJSON(w, http.StatusOK, line(name, loc))
}
