package musicbrainz

// searchResponse is the artist search result envelope.
type searchResponse struct {
	Artists []Artist `json:"artists"`
}

// Artist is a MusicBrainz artist as returned by search and lookup.
type Artist struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	SortName  string     `json:"sort-name"`
	Type      string     `json:"type"`
	Score     int        `json:"score"`
	Area      *Area      `json:"area"`
	BeginArea *Area      `json:"begin-area"`
	Relations []Relation `json:"relations"`
}

// Area is a MusicBrainz administrative area. Countries carry ISO 3166-1
// codes, subdivisions ISO 3166-2.
type Area struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	ISO31661  []string   `json:"iso-3166-1-codes"`
	ISO31662  []string   `json:"iso-3166-2-codes"`
	Relations []Relation `json:"relations"`
}

// Relation is a MusicBrainz relationship between entities. Area hierarchy
// uses "part of" relations; artist aliases use the "is person" relation.
type Relation struct {
	Type      string  `json:"type"`
	TypeID    string  `json:"type-id"`
	Direction string  `json:"direction"`
	Area      *Area   `json:"area"`
	Artist    *Artist `json:"artist"`
}

// AreaContext is the country (and optionally enclosing subdivision) derived
// by walking an area's "part of" hierarchy.
type AreaContext struct {
	Country     string
	Subdivision string
}
