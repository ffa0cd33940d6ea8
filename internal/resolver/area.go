package resolver

import (
	"strings"

	"github.com/soundmap/soundmap/internal/provider/musicbrainz"
)

// cityLevelGeocodeTypes are the geocoder address types specific enough to
// pin a single populated place.
var cityLevelGeocodeTypes = map[string]bool{
	"city":          true,
	"town":          true,
	"village":       true,
	"municipality":  true,
	"suburb":        true,
	"neighbourhood": true,
	"district":      true,
	"borough":       true,
	"locality":      true,
}

// areaSpecificity ranks an administrative area: the more specific, the
// higher. A nil area ranks below everything.
func areaSpecificity(area *musicbrainz.Area) int {
	if area == nil {
		return -1
	}
	switch strings.ToLower(area.Type) {
	case "country":
		return 0
	case "subdivision":
		return 1
	case "county":
		return 2
	case "city", "municipality", "district", "town", "village", "island":
		return 3
	default:
		return 1
	}
}

// chooseBestArea picks the more specific of an artist's begin-area and area,
// preferring area on ties: area tends to hold the country and begin-area the
// city, and when both are countries they are usually the same one.
func chooseBestArea(begin, area *musicbrainz.Area) *musicbrainz.Area {
	if areaSpecificity(area) >= areaSpecificity(begin) {
		return area
	}
	return begin
}

// isCityLevel reports whether an area is specific enough to geocode to a
// single populated place.
func isCityLevel(area *musicbrainz.Area) bool {
	return areaSpecificity(area) >= 3
}

// IsCityLevelGeocode reports whether a geocoder address type names a
// populated place rather than an administrative region.
func IsCityLevelGeocode(addressType string) bool {
	return cityLevelGeocodeTypes[strings.ToLower(addressType)]
}
