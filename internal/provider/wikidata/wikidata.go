// Package wikidata queries the Wikidata SPARQL endpoint for birthplaces,
// band formation locations, and subdivision capitals.
package wikidata

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

const defaultEndpoint = "https://query.wikidata.org/sparql"

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Adapter is the Wikidata SPARQL client.
type Adapter struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	endpoint   string
	maxRetries int
}

// New creates a Wikidata adapter with the default endpoint.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int) *Adapter {
	return NewWithEndpoint(limiter, logger, maxRetries, defaultEndpoint)
}

// NewWithEndpoint creates a Wikidata adapter with a custom endpoint (for testing).
func NewWithEndpoint(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int, endpoint string) *Adapter {
	return &Adapter{
		client:     &http.Client{Timeout: 20 * time.Second},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "wikidata")),
		endpoint:   endpoint,
		maxRetries: maxRetries,
	}
}

// PersonBirthplace returns the birthplace (or formation location) label for a
// human entity with the given English label, or "" on a miss.
func (a *Adapter) PersonBirthplace(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf(`SELECT ?placeLabel WHERE {
  ?person rdfs:label "%s"@en .
  ?person wdt:P31 wd:Q5 .
  { ?person wdt:P19 ?place . } UNION { ?person wdt:P740 ?place . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeLiteral(name))
	return a.queryLabel(ctx, query, "placeLabel")
}

// BandFormation returns the formation location label for a musical group
// with the given English label, or "" on a miss.
func (a *Adapter) BandFormation(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf(`SELECT ?placeLabel WHERE {
  ?band rdfs:label "%s"@en .
  ?band wdt:P31 wd:Q215380 .
  ?band wdt:P740 ?place .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeLiteral(name))
	return a.queryLabel(ctx, query, "placeLabel")
}

// SubdivisionCapital returns the capital city label of a named subdivision,
// or "" on a miss. Used by the capital-snap heuristic.
func (a *Adapter) SubdivisionCapital(ctx context.Context, subdivision string) (string, error) {
	query := fmt.Sprintf(`SELECT ?capitalLabel WHERE {
  ?subdivision rdfs:label "%s"@en .
  ?subdivision wdt:P36 ?capital .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeLiteral(subdivision))
	return a.queryLabel(ctx, query, "capitalLabel")
}

func (a *Adapter) queryLabel(ctx context.Context, query, variable string) (string, error) {
	bindings, err := a.executeSPARQL(ctx, query)
	if err != nil {
		return "", err
	}
	if len(bindings) == 0 {
		return "", nil
	}
	label := bindings[0][variable].Value
	// The label service echoes the entity ID when no English label exists.
	if label == "" || isEntityID(label) {
		return "", nil
	}
	return label, nil
}

func (a *Adapter) executeSPARQL(ctx context.Context, query string) ([]map[string]sparqlValue, error) {
	if err := a.limiter.Wait(ctx, provider.NameWikidata); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: provider.NameWikidata,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	params := url.Values{
		"query":  {query},
		"format": {"json"},
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set("Accept", "application/sparql-results+json")

	a.logger.Debug("executing SPARQL query")

	body, err := provider.Fetch(ctx, a.client, provider.NameWikidata, a.endpoint+"?"+params.Encode(), header, a.maxRetries)
	if err != nil {
		return nil, err
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing SPARQL response: %w", err)
	}
	return resp.Results.Bindings, nil
}

// escapeLiteral escapes a string for interpolation into a SPARQL literal.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// isEntityID reports whether s looks like a bare Wikidata entity ID (Q42).
func isEntityID(s string) bool {
	if len(s) < 2 || s[0] != 'Q' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
