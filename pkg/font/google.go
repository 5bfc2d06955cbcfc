package font

import (
	"net/url"
	"slices"
	"strings"
)

// IsWebFontURL reports whether u points at a font hosting service.
func IsWebFontURL(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(strings.Trim(u, `'"`)))
	if err != nil {
		return false
	}
	return slices.Contains(WebFontHosts, strings.ToLower(parsed.Hostname()))
}

// FamiliesFromURL returns the families a Google Fonts stylesheet URL
// requests, e.g. "Open Sans" and "Lato" for
// https://fonts.googleapis.com/css2?family=Open+Sans:wght@400;700&family=Lato.
// The legacy css endpoint separates families with "|". The query is split
// by hand since url.Query drops pairs containing ';'.
func FamiliesFromURL(u string) []string {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return nil
	}
	var out []string
	for _, pair := range strings.Split(parsed.RawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key != "family" {
			continue
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		for _, f := range strings.Split(value, "|") {
			name, _, _ := strings.Cut(f, ":")
			name = strings.TrimSpace(name)
			if name != "" && !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}
