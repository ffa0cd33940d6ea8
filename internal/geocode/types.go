package geocode

import "strings"

// Result is a geocoder hit. DisplayName is normalized to "City, Country"
// where possible; AddressType classifies the match (city, state, country...).
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	AddressType string
}

// NormalizeDisplayName collapses a comma-separated geocoder display string to
// "<first>, <last>", dropping the middle administrative layers. A string with
// fewer than two segments is returned trimmed.
func NormalizeDisplayName(display string) string {
	parts := strings.Split(display, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[0] + ", " + parts[len(parts)-1]
}
