package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterMap holds one rate.Limiter per provider, created once at startup.
// All adapter instances share the map so pacing holds across the process.
type RateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[Name]*rate.Limiter
}

// NewRateLimiterMap creates all provider rate limiters. mbInterval is the
// minimum gap between MusicBrainz requests; the other sources use their
// documented or customary limits.
func NewRateLimiterMap(mbInterval time.Duration) *RateLimiterMap {
	if mbInterval <= 0 {
		mbInterval = 1100 * time.Millisecond
	}
	return &RateLimiterMap{
		limiters: map[Name]*rate.Limiter{
			NameMusicBrainz: rate.NewLimiter(rate.Every(mbInterval), 1),
			// Nominatim's usage policy caps anonymous clients at 1 req/s.
			NameNominatim: rate.NewLimiter(1, 1),
			NameWikipedia: rate.NewLimiter(5, 1),
			NameWikidata:  rate.NewLimiter(5, 1),
			NamePhoton:    rate.NewLimiter(5, 1),
		},
	}
}

// Wait blocks until the rate limiter for the given provider allows a request,
// or the context is canceled.
func (m *RateLimiterMap) Wait(ctx context.Context, name Name) error {
	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
