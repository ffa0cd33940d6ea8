package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/soundmap/soundmap/internal/cache"
)

// InvalidateCache deletes the cache entries for the given artist names and
// reports which names were processed.
func (h *Handlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req artistsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Artists) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid artists array"})
		return
	}

	if h.store != nil {
		keys := make([]string, len(req.Artists))
		for i, name := range req.Artists {
			keys[i] = cache.Key(name)
		}
		if err := h.store.Delete(r.Context(), keys...); err != nil {
			h.logger.Warn("cache delete failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache delete failed"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"deleted": req.Artists})
}
