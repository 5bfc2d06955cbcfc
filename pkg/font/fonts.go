// Package font strips hosted web fonts from a template and gives every
// font-family declaration a fallback email clients have installed.
package font

import (
	"fmt"
	"strings"
)

// Category is the generic family a font falls back to.
type Category string

const (
	Sans  Category = "sans"
	Serif Category = "serif"
	Mono  Category = "mono"
)

// knownFamilies classifies popular hosted fonts whose names do not say
// what they are.
var knownFamilies = map[string]Category{
	"merriweather":      Serif,
	"playfair display":  Serif,
	"lora":              Serif,
	"libre baskerville": Serif,
	"crimson text":      Serif,
	"eb garamond":       Serif,
	"cormorant":         Serif,
	"roboto slab":       Serif,
	"bitter":            Serif,
	"inconsolata":       Mono,
	"fira code":         Mono,
	"jetbrains mono":    Mono,
	"ibm plex mono":     Mono,
}

// Classify returns the category of a font family. Most hosted fonts are
// sans-serif, so that is the default.
func Classify(family string) Category {
	lower := strings.ToLower(strings.TrimSpace(family))
	if c, ok := knownFamilies[lower]; ok {
		return c
	}
	switch {
	case strings.Contains(lower, "mono") || strings.Contains(lower, "code") || strings.Contains(lower, "courier"):
		return Mono
	case strings.Contains(lower, "serif") && !strings.Contains(lower, "sans"):
		return Serif
	}
	return Sans
}

// Stack returns a CSS font stack led by primary with email-safe fallbacks.
func Stack(primary string) string {
	stack := fmt.Sprintf("'%s'", strings.Trim(primary, `'" `))
	switch Classify(primary) {
	case Serif:
		return stack + ", Georgia, 'Times New Roman', Times, serif"
	case Mono:
		return stack + ", 'Courier New', Courier, 'Lucida Console', monospace"
	}
	return stack + ", Arial, Helvetica, sans-serif"
}

// IsSafe reports whether family is installed everywhere or is a generic
// family keyword.
func IsSafe(family string) bool {
	f := strings.ToLower(strings.Trim(strings.TrimSpace(family), `'"`))
	if genericFamilies[f] {
		return true
	}
	for _, s := range SafeFonts {
		if strings.ToLower(s) == f {
			return true
		}
	}
	return false
}

// Families splits a font-family value into unquoted names.
func Families(value string) []string {
	var out []string
	for _, f := range strings.Split(value, ",") {
		f = strings.Trim(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f), "!important")), `'" `)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// HasFallback reports whether a font-family value names at least one
// safe or generic family.
func HasFallback(value string) bool {
	for _, f := range Families(value) {
		if IsSafe(f) {
			return true
		}
	}
	return false
}
