// Package wikipedia extracts artist origin locations from article infoboxes.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/soundmap/soundmap/internal/provider"
	"github.com/soundmap/soundmap/internal/version"
)

const defaultBaseURL = "https://en.wikipedia.org/w/api.php"

// Infobox fields that carry an artist's origin, in priority order.
var originFields = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\|\s*origin\s*=\s*([^\n|]+)`),
	regexp.MustCompile(`(?i)\|\s*birth_place\s*=\s*([^\n|]+)`),
	regexp.MustCompile(`(?i)\|\s*birthplace\s*=\s*([^\n|]+)`),
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type parseResponse struct {
	Parse struct {
		Wikitext struct {
			Content string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
}

// Adapter is the Wikipedia API client.
type Adapter struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	baseURL    string
	maxRetries int
}

// New creates a Wikipedia adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int) *Adapter {
	return NewWithBaseURL(limiter, logger, maxRetries, defaultBaseURL)
}

// NewWithBaseURL creates a Wikipedia adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, maxRetries int, baseURL string) *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "wikipedia")),
		baseURL:    baseURL,
		maxRetries: maxRetries,
	}
}

// FetchOrigin searches for an article matching query and extracts the origin
// or birthplace from its lead-section infobox. Returns "" when the search is
// empty or no infobox field matches.
func (a *Adapter) FetchOrigin(ctx context.Context, query string) (string, error) {
	title, err := a.searchTitle(ctx, query)
	if err != nil || title == "" {
		return "", err
	}

	wikitext, err := a.fetchLeadWikitext(ctx, title)
	if err != nil || wikitext == "" {
		return "", err
	}

	for _, re := range originFields {
		if m := re.FindStringSubmatch(wikitext); m != nil {
			loc := CleanLocation(m[1])
			if loc != "" {
				a.logger.Debug("extracted origin",
					slog.String("title", title),
					slog.String("location", loc))
				return loc, nil
			}
		}
	}
	return "", nil
}

func (a *Adapter) searchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"format":   {"json"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"?"+params.Encode())
	if err != nil || body == nil {
		return "", err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing search response: %w", err)
	}
	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}

func (a *Adapter) fetchLeadWikitext(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":  {"parse"},
		"page":    {title},
		"section": {"0"},
		"prop":    {"wikitext"},
		"format":  {"json"},
	}
	body, err := a.doRequest(ctx, a.baseURL+"?"+params.Encode())
	if err != nil || body == nil {
		return "", err
	}

	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing wikitext response: %w", err)
	}
	return resp.Parse.Wikitext.Content, nil
}

func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, provider.NameWikipedia); err != nil {
		return nil, &provider.ErrUnavailable{
			Provider: provider.NameWikipedia,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	body, err := provider.Fetch(ctx, a.client, provider.NameWikipedia, reqURL, header, a.maxRetries)
	if err != nil {
		return nil, err
	}
	// MediaWiki reports missing pages inside a 200 body.
	if strings.Contains(string(body), `"error"`) {
		var errResp struct {
			Error *struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return nil, nil
		}
	}
	return body, nil
}
