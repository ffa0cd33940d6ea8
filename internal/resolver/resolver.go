// Package resolver implements the artist origin resolution pipeline: a
// MusicBrainz candidate search gated by the name matcher, area ranking,
// relationship traversal, Wikidata and Wikipedia fallbacks, the capital-snap
// heuristic, and the final geocode.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundmap/soundmap/internal/geocode"
	"github.com/soundmap/soundmap/internal/provider/musicbrainz"
	"github.com/soundmap/soundmap/internal/provider/wikidata"
	"github.com/soundmap/soundmap/internal/provider/wikipedia"
)

// UnknownName is the sentinel location name recorded when the pipeline
// cannot (or must not) resolve an artist.
const UnknownName = "Unknown"

// ResolvedLocation is the wire- and cache-level result of a resolve.
// Coord is [lat, lon], or null for the Unknown sentinel and partial entries.
type ResolvedLocation struct {
	Name  string    `json:"location_name"`
	Coord []float64 `json:"location_coord"`
}

// Unknown returns the terminal "no location" result.
func Unknown() ResolvedLocation {
	return ResolvedLocation{Name: UnknownName}
}

// IsUnknown reports whether l is the Unknown sentinel.
func (l ResolvedLocation) IsUnknown() bool {
	return l.Name == UnknownName && l.Coord == nil
}

// IsServiceable reports whether a cached entry can be returned as-is: it
// either has coordinates or is the Unknown sentinel. Anything else is a
// partial entry that should be retried.
func (l ResolvedLocation) IsServiceable() bool {
	return len(l.Coord) == 2 || l.IsUnknown()
}

// Resolver orchestrates the multi-source fallback chain.
type Resolver struct {
	mb       *musicbrainz.Adapter
	wd       *wikidata.Adapter
	wp       *wikipedia.Adapter
	geocoder *geocode.Cascade
	logger   *slog.Logger
}

// New creates a Resolver over the given upstream adapters.
func New(mb *musicbrainz.Adapter, wd *wikidata.Adapter, wp *wikipedia.Adapter, geocoder *geocode.Cascade, logger *slog.Logger) *Resolver {
	return &Resolver{
		mb:       mb,
		wd:       wd,
		wp:       wp,
		geocoder: geocoder,
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// searchOutcome is the tagged result of the gated MusicBrainz search.
type searchOutcome struct {
	// noMatch means candidates existed but every one was rejected; the
	// pipeline must return Unknown without consulting encyclopedic sources,
	// which tend to surface famous homonyms.
	noMatch    bool
	candidate  *musicbrainz.Artist
	exactMatch bool
}

// pickCandidate walks search results in order, skipping low-score candidates
// and those failing the name gate against the sort-name (name when sort-name
// is absent).
func pickCandidate(query string, artists []musicbrainz.Artist) searchOutcome {
	if len(artists) == 0 {
		return searchOutcome{}
	}
	for i := range artists {
		a := &artists[i]
		if a.Score < 70 {
			continue
		}
		gateName := a.SortName
		if gateName == "" {
			gateName = a.Name
		}
		if !VerifyArtistMatch(query, gateName) {
			continue
		}
		return searchOutcome{
			candidate:  a,
			exactMatch: IsExactMatch(query, a.Name),
		}
	}
	return searchOutcome{noMatch: true}
}

// Resolve runs the fallback chain for one artist name. Upstream failures are
// logged and treated as misses; the only returned error is context
// cancellation.
func (r *Resolver) Resolve(ctx context.Context, name string) (ResolvedLocation, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedLocation{}, err
	}

	artists, err := r.mb.SearchArtist(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return ResolvedLocation{}, ctx.Err()
		}
		r.logger.Warn("musicbrainz search failed",
			slog.String("artist", name),
			slog.String("error", err.Error()))
	}

	outcome := pickCandidate(name, artists)
	if outcome.noMatch {
		r.logger.Debug("all candidates rejected", slog.String("artist", name))
		return Unknown(), nil
	}

	var bestArea *musicbrainz.Area
	if outcome.candidate != nil {
		bestArea = chooseBestArea(outcome.candidate.BeginArea, outcome.candidate.Area)
	}

	if isCityLevel(bestArea) {
		return r.geocodeMusicBrainzArea(ctx, bestArea), nil
	}

	// A performance name may hide a person with a usable begin-area.
	if outcome.candidate != nil {
		if loc, ok := r.tryRelationships(ctx, name, outcome.candidate.ID); ok {
			return loc, nil
		}
		if err := ctx.Err(); err != nil {
			return ResolvedLocation{}, err
		}
	}

	// An exact-match candidate with no area at all: stop here rather than
	// risk gluing a homonym's encyclopedic data onto this artist.
	if outcome.exactMatch && bestArea == nil {
		return Unknown(), nil
	}

	if loc, ok := r.tryWikidata(ctx, name); ok {
		return loc, nil
	}
	if err := ctx.Err(); err != nil {
		return ResolvedLocation{}, err
	}

	if loc, ok := r.tryWikipedia(ctx, name); ok {
		return loc, nil
	}
	if err := ctx.Err(); err != nil {
		return ResolvedLocation{}, err
	}

	if bestArea != nil {
		return r.geocodeMusicBrainzArea(ctx, bestArea), nil
	}

	return Unknown(), nil
}

// tryRelationships follows the "is person" link and geocodes the person's
// areas when one of them is city-level.
func (r *Resolver) tryRelationships(ctx context.Context, name, mbid string) (ResolvedLocation, bool) {
	person, err := r.mb.RelatedPersonAreas(ctx, mbid)
	if err != nil {
		r.logger.Warn("relationship traversal failed",
			slog.String("artist", name),
			slog.String("error", err.Error()))
		return ResolvedLocation{}, false
	}
	if person == nil {
		return ResolvedLocation{}, false
	}

	area := chooseBestArea(person.BeginArea, person.Area)
	if !isCityLevel(area) {
		return ResolvedLocation{}, false
	}
	r.logger.Debug("resolved via relationship",
		slog.String("artist", name),
		slog.String("person", person.Name),
		slog.String("area", area.Name))
	return r.geocodeMusicBrainzArea(ctx, area), true
}

// tryWikidata asks for a person birthplace, then a band formation location.
func (r *Resolver) tryWikidata(ctx context.Context, name string) (ResolvedLocation, bool) {
	place, err := r.wd.PersonBirthplace(ctx, name)
	if err != nil {
		r.logger.Warn("wikidata person query failed",
			slog.String("artist", name),
			slog.String("error", err.Error()))
	}
	if place == "" {
		place, err = r.wd.BandFormation(ctx, name)
		if err != nil {
			r.logger.Warn("wikidata band query failed",
				slog.String("artist", name),
				slog.String("error", err.Error()))
		}
	}
	if place == "" {
		return ResolvedLocation{}, false
	}
	return r.geocodeString(ctx, place), true
}

// tryWikipedia scrapes article infoboxes with progressively broader queries
// and applies the capital snap when the geocode lands on a region instead of
// a populated place.
func (r *Resolver) tryWikipedia(ctx context.Context, name string) (ResolvedLocation, bool) {
	var location string
	for _, query := range []string{name + " musician", name + " band", name} {
		loc, err := r.wp.FetchOrigin(ctx, query)
		if err != nil {
			r.logger.Warn("wikipedia lookup failed",
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}
		if loc != "" {
			location = loc
			break
		}
	}
	if location == "" {
		return ResolvedLocation{}, false
	}

	geo := r.geocoder.Geocode(ctx, location)
	if geo == nil || !IsCityLevelGeocode(geo.AddressType) {
		if snapped := r.capitalSnap(ctx, location); snapped != nil {
			geo = snapped
		}
	}
	return buildResult(location, geo), true
}

// capitalSnap treats the first comma-separated segment of location as a
// putative subdivision and geocodes its capital instead, so the marker lands
// on a populated place rather than the centroid of a region.
func (r *Resolver) capitalSnap(ctx context.Context, location string) *geocode.Result {
	segment := strings.TrimSpace(strings.SplitN(location, ",", 2)[0])
	if segment == "" {
		return nil
	}
	capital, err := r.wd.SubdivisionCapital(ctx, segment)
	if err != nil {
		r.logger.Warn("capital lookup failed",
			slog.String("subdivision", segment),
			slog.String("error", err.Error()))
		return nil
	}
	if capital == "" {
		return nil
	}
	r.logger.Debug("capital snap",
		slog.String("subdivision", segment),
		slog.String("capital", capital))
	return r.geocoder.Geocode(ctx, capital+", "+location)
}

// geocodeMusicBrainzArea resolves the area's country context, snaps
// subdivisions to their capital, and geocodes progressively shorter
// qualified strings.
func (r *Resolver) geocodeMusicBrainzArea(ctx context.Context, area *musicbrainz.Area) ResolvedLocation {
	actx, err := r.mb.ResolveAreaContext(ctx, area.ID)
	if err != nil {
		r.logger.Warn("area context lookup failed",
			slog.String("area", area.Name),
			slog.String("error", err.Error()))
	}

	var country, subdivision string
	if actx != nil {
		country = actx.Country
		subdivision = actx.Subdivision
	}

	// A subdivision geocodes to its geographic centre, which for large
	// states lands nowhere near anyone. Snap to the capital.
	if strings.EqualFold(area.Type, "Subdivision") {
		capital, err := r.wd.SubdivisionCapital(ctx, area.Name)
		if err != nil {
			r.logger.Warn("capital lookup failed",
				slog.String("subdivision", area.Name),
				slog.String("error", err.Error()))
		}
		if capital != "" {
			query := capital
			if country != "" {
				query = fmt.Sprintf("%s, %s", capital, country)
			}
			if geo := r.geocoder.Geocode(ctx, query); geo != nil {
				return buildResult(query, geo)
			}
		}
	}

	var queries []string
	if subdivision != "" && country != "" {
		queries = append(queries, fmt.Sprintf("%s, %s, %s", area.Name, subdivision, country))
	}
	if subdivision != "" {
		queries = append(queries, fmt.Sprintf("%s, %s", area.Name, subdivision))
	}
	if country != "" {
		queries = append(queries, fmt.Sprintf("%s, %s", area.Name, country))
	}
	queries = append(queries, area.Name)

	for _, q := range queries {
		if geo := r.geocoder.Geocode(ctx, q); geo != nil {
			return buildResult(q, geo)
		}
	}
	return buildResult(area.Name, nil)
}

func (r *Resolver) geocodeString(ctx context.Context, location string) ResolvedLocation {
	return buildResult(location, r.geocoder.Geocode(ctx, location))
}

// buildResult forms the final contract: the geocoder's normalized display
// name with coordinates on success, the raw attempted string with a null
// coordinate otherwise.
func buildResult(raw string, geo *geocode.Result) ResolvedLocation {
	if geo == nil {
		return ResolvedLocation{Name: raw}
	}
	return ResolvedLocation{
		Name:  geo.DisplayName,
		Coord: []float64{geo.Lat, geo.Lon},
	}
}
