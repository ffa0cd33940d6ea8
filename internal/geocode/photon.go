package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundmap/soundmap/internal/provider"
	"github.com/soundmap/soundmap/internal/version"
)

const defaultPhotonBaseURL = "https://photon.komoot.io"

type photonResponse struct {
	Features []struct {
		Geometry struct {
			// GeoJSON order: [lon, lat].
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Type     string `json:"type"`
			OsmValue string `json:"osm_value"`
		} `json:"properties"`
	} `json:"features"`
}

// Photon is the komoot Photon geocoder client.
type Photon struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	baseURL    string
	maxRetries int
}

// NewPhoton creates a Photon client with the default base URL.
func NewPhoton(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int) *Photon {
	return NewPhotonWithBaseURL(limiter, logger, maxRetries, defaultPhotonBaseURL)
}

// NewPhotonWithBaseURL creates a Photon client with a custom base URL (for testing).
func NewPhotonWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int, baseURL string) *Photon {
	return &Photon{
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "photon")),
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
	}
}

// Search geocodes a free-form location string. Photon returns no display
// string, so the original query stands in as the display name. Returns nil
// on a miss.
func (p *Photon) Search(ctx context.Context, location string) (*Result, error) {
	if err := p.limiter.Wait(ctx, provider.NamePhoton); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: provider.NamePhoton,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	params := url.Values{
		"q":     {location},
		"limit": {"1"},
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	body, err := provider.Fetch(ctx, p.client, provider.NamePhoton, p.baseURL+"/api?"+params.Encode(), header, p.maxRetries)
	if err != nil {
		return nil, err
	}

	var resp photonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing photon response: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	feature := resp.Features[0]
	coords := feature.Geometry.Coordinates
	if len(coords) < 2 {
		return nil, nil
	}

	addressType := feature.Properties.Type
	if addressType == "" {
		addressType = feature.Properties.OsmValue
	}

	return &Result{
		Lat:         coords[1],
		Lon:         coords[0],
		DisplayName: location,
		AddressType: addressType,
	}, nil
}
