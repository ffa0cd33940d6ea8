package wikipedia

import (
	"regexp"
	"strings"
)

var (
	templateRe   = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	pipedLinkRe  = regexp.MustCompile(`\[\[([^\]|]+)\|[^\]]*\]\]`)
	plainLinkRe  = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanLocation strips wikitext markup from an infobox field value, leaving a
// plain place name. Piped links keep their target side, which is typically
// the canonical location name.
func CleanLocation(s string) string {
	// Templates can nest; strip inside-out until stable.
	for {
		cleaned := templateRe.ReplaceAllString(s, "")
		if cleaned == s {
			break
		}
		s = cleaned
	}

	s = pipedLinkRe.ReplaceAllString(s, "$1")
	s = plainLinkRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
