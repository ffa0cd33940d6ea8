// Package geocode turns location strings into coordinates through a
// two-provider cascade with a country-segment fallback.
package geocode

import (
	"context"
	"log/slog"
	"strings"
)

// Cascade tries Nominatim first, then Photon, then retries both against the
// final comma-separated segment (usually the country) so that even obscure
// localities land somewhere on the map.
type Cascade struct {
	nominatim *Nominatim
	photon    *Photon
	logger    *slog.Logger
}

// NewCascade creates a geocoder cascade over the two providers.
func NewCascade(nominatim *Nominatim, photon *Photon, logger *slog.Logger) *Cascade {
	return &Cascade{
		nominatim: nominatim,
		photon:    photon,
		logger:    logger.With(slog.String("component", "geocode")),
	}
}

// Geocode resolves a location string to coordinates. Upstream errors are
// logged and treated as misses. Returns nil when every provider misses.
func (c *Cascade) Geocode(ctx context.Context, location string) *Result {
	if location == "" {
		return nil
	}

	if result := c.tryProviders(ctx, location); result != nil {
		return result
	}

	// Country fallback: retry with the last comma-separated segment.
	if idx := strings.LastIndex(location, ","); idx >= 0 {
		country := strings.TrimSpace(location[idx+1:])
		if country != "" && country != location {
			c.logger.Debug("retrying with country segment",
				slog.String("location", location),
				slog.String("country", country))
			return c.tryProviders(ctx, country)
		}
	}
	return nil
}

func (c *Cascade) tryProviders(ctx context.Context, location string) *Result {
	result, err := c.nominatim.Search(ctx, location)
	if err != nil {
		c.logger.Warn("nominatim lookup failed",
			slog.String("location", location),
			slog.String("error", err.Error()))
	}
	if result != nil {
		return result
	}

	result, err = c.photon.Search(ctx, location)
	if err != nil {
		c.logger.Warn("photon lookup failed",
			slog.String("location", location),
			slog.String("error", err.Error()))
	}
	return result
}
