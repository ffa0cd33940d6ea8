// Package provider holds the shared infrastructure for the upstream data
// source adapters: provider names, typed errors, rate limiting, and the
// retrying HTTP fetch helper.
package provider

import (
	"fmt"
	"time"
)

// Name uniquely identifies an upstream data source.
type Name string

// Known provider names.
const (
	NameMusicBrainz Name = "musicbrainz"
	NameWikipedia   Name = "wikipedia"
	NameWikidata    Name = "wikidata"
	NameNominatim   Name = "nominatim"
	NamePhoton      Name = "photon"
)

// DisplayName returns a human-readable name for the provider.
func (n Name) DisplayName() string {
	switch n {
	case NameMusicBrainz:
		return "MusicBrainz"
	case NameWikipedia:
		return "Wikipedia"
	case NameWikidata:
		return "Wikidata"
	case NameNominatim:
		return "Nominatim"
	case NamePhoton:
		return "Photon"
	default:
		return string(n)
	}
}

// ErrUnavailable indicates a transient failure (rate-limited, timeout,
// server error). Callers treat it like any other miss and fall through to the
// next source in the chain.
type ErrUnavailable struct {
	Provider   Name
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested entity.
type ErrNotFound struct {
	Provider Name
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: %s not found", e.Provider, e.ID)
}
