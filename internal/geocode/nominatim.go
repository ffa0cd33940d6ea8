package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soundmap/soundmap/internal/provider"
	"github.com/soundmap/soundmap/internal/version"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	AddressType string `json:"addresstype"`
	Type        string `json:"type"`
}

// Nominatim is the OSM Nominatim geocoder client.
type Nominatim struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	baseURL    string
	maxRetries int
}

// NewNominatim creates a Nominatim client with the default base URL.
func NewNominatim(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int) *Nominatim {
	return NewNominatimWithBaseURL(limiter, logger, maxRetries, defaultNominatimBaseURL)
}

// NewNominatimWithBaseURL creates a Nominatim client with a custom base URL (for testing).
func NewNominatimWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int, baseURL string) *Nominatim {
	return &Nominatim{
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "nominatim")),
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
	}
}

// Search geocodes a free-form location string. Returns nil on a miss.
func (n *Nominatim) Search(ctx context.Context, location string) (*Result, error) {
	if err := n.limiter.Wait(ctx, provider.NameNominatim); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: provider.NameNominatim,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	params := url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}

	// Nominatim's usage policy requires an identifying User-Agent.
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	body, err := provider.Fetch(ctx, n.client, provider.NameNominatim, n.baseURL+"/search?"+params.Encode(), header, n.maxRetries)
	if err != nil {
		return nil, err
	}

	var hits []nominatimHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("parsing nominatim response: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	hit := hits[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", hit.Lat, err)
	}
	lon, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", hit.Lon, err)
	}

	addressType := hit.AddressType
	if addressType == "" {
		addressType = hit.Type
	}

	return &Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: NormalizeDisplayName(hit.DisplayName),
		AddressType: addressType,
	}, nil
}
