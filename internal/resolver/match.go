package resolver

import "strings"

// IsExactMatch reports case-insensitive, whitespace-trimmed equality.
func IsExactMatch(query, name string) bool {
	return strings.EqualFold(strings.TrimSpace(query), strings.TrimSpace(name))
}

// VerifyArtistMatch gates whether a candidate name plausibly matches the
// query. Single-word queries require an exact match, so "GREG" never matches
// "Greg Brown". Multi-word queries tolerate up to 40% missing tokens, with a
// token counting as present when it (or its stem minus the final two
// characters) appears as a substring of the candidate; that lets
// "The Beatles" match "Beatles, The" while "Keli Holiday" still rejects
// "Billie Holiday".
func VerifyArtistMatch(query, candidate string) bool {
	tokens := strings.Fields(query)
	if len(tokens) <= 1 {
		return IsExactMatch(query, candidate)
	}

	cand := strings.ToLower(candidate)
	missing := 0
	for _, token := range tokens {
		t := strings.ToLower(token)
		present := strings.Contains(cand, t)
		if !present && len(t) > 2 {
			present = strings.Contains(cand, t[:len(t)-2])
		}
		if !present {
			missing++
		}
	}
	return float64(missing)/float64(len(tokens)) <= 0.4
}
