// Package musicbrainz is the MusicBrainz adapter: artist search, area
// hierarchy resolution, and performance-name relationship traversal.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/soundmap/soundmap/internal/provider"
	"github.com/soundmap/soundmap/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// isPersonRelTypeID is the relationship type linking a performance name to
// the underlying person (e.g. "Keli Holiday" -> "Adam Hyde").
const isPersonRelTypeID = "dd9886f2-1dfe-4270-97db-283f6839a666"

// maxAreaDepth bounds the backward "part of" walk; the upstream hierarchy is
// not guaranteed to be acyclic.
const maxAreaDepth = 5

var regionNames = display.Regions(language.English)

// Adapter is the MusicBrainz API client.
type Adapter struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	baseURL    string
	maxRetries int
}

// New creates a MusicBrainz adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int) *Adapter {
	return NewWithBaseURL(limiter, logger, maxRetries, defaultBaseURL)
}

// NewWithBaseURL creates a MusicBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int, baseURL string) *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "musicbrainz")),
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
	}
}

// SearchArtist searches for artists matching the given name as a quoted
// phrase, returning up to five candidates in relevance order.
func (a *Adapter) SearchArtist(ctx context.Context, name string) ([]Artist, error) {
	params := url.Values{
		"query": {fmt.Sprintf("artist:%q", name)},
		"fmt":   {"json"},
		"limit": {"5"},
	}

	body, err := a.doRequest(ctx, a.baseURL+"/artist?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return resp.Artists, nil
}

// ResolveAreaContext walks an area's backward "part of" hierarchy to find the
// enclosing country (and subdivision, when one sits between). The country
// name comes from the area's ISO 3166-1 code; ISO 3166-2 codes serve as a
// last resort by taking their country prefix.
func (a *Adapter) ResolveAreaContext(ctx context.Context, areaID string) (*AreaContext, error) {
	return a.resolveAreaContext(ctx, areaID, 0)
}

func (a *Adapter) resolveAreaContext(ctx context.Context, areaID string, depth int) (*AreaContext, error) {
	if depth > maxAreaDepth {
		return nil, nil
	}

	params := url.Values{
		"inc": {"area-rels"},
		"fmt": {"json"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/area/"+url.PathEscape(areaID)+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var area Area
	if err := json.Unmarshal(body, &area); err != nil {
		return nil, fmt.Errorf("parsing area response: %w", err)
	}

	if len(area.ISO31661) > 0 {
		return &AreaContext{Country: countryName(area.ISO31661[0])}, nil
	}

	var firstParent *Area
	for _, rel := range area.Relations {
		if rel.Type != "part of" || rel.Direction != "backward" || rel.Area == nil {
			continue
		}
		parent := rel.Area
		if firstParent == nil {
			firstParent = parent
		}

		if len(parent.ISO31661) > 0 {
			actx := &AreaContext{Country: countryName(parent.ISO31661[0])}
			if parent.Type == "Subdivision" {
				actx.Subdivision = parent.Name
			}
			return actx, nil
		}
		if len(parent.ISO31662) > 0 && len(parent.ISO31662[0]) >= 2 {
			actx := &AreaContext{Country: countryName(parent.ISO31662[0][:2])}
			if parent.Type == "Subdivision" {
				actx.Subdivision = parent.Name
			}
			return actx, nil
		}
	}

	if firstParent != nil {
		return a.resolveAreaContext(ctx, firstParent.ID, depth+1)
	}
	return nil, nil
}

// RelatedPersonAreas follows the "is person" relationship from a performance
// name to the underlying person and returns that person's artist record with
// its area fields. Returns nil when no such relationship exists.
func (a *Adapter) RelatedPersonAreas(ctx context.Context, mbid string) (*Artist, error) {
	params := url.Values{
		"inc": {"artist-rels"},
		"fmt": {"json"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"/artist/"+url.PathEscape(mbid)+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var artist Artist
	if err := json.Unmarshal(body, &artist); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}

	for _, rel := range artist.Relations {
		if rel.TypeID != isPersonRelTypeID || rel.Artist == nil {
			continue
		}
		a.logger.Debug("following is-person relationship",
			slog.String("from", artist.Name),
			slog.String("to", rel.Artist.Name))
		return a.lookupArtist(ctx, rel.Artist.ID)
	}
	return nil, nil
}

func (a *Adapter) lookupArtist(ctx context.Context, mbid string) (*Artist, error) {
	body, err := a.doRequest(ctx, a.baseURL+"/artist/"+url.PathEscape(mbid)+"?fmt=json")
	if err != nil {
		return nil, err
	}
	var artist Artist
	if err := json.Unmarshal(body, &artist); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}
	return &artist, nil
}

// doRequest executes a rate-limited GET with standard headers.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, provider.NameMusicBrainz); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	a.logger.Debug("requesting", slog.String("url", reqURL))

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set("Accept", "application/json")
	return provider.Fetch(ctx, a.client, provider.NameMusicBrainz, reqURL, header, a.maxRetries)
}

// countryName turns an ISO 3166-1 alpha-2 code into its English display name.
func countryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := regionNames.Name(region); name != "" {
		return name
	}
	return code
}
