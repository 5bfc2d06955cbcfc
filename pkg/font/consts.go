package font

import "github.com/joeblew999/plat-mailfix/pkg/check"

// IDWebFonts is the check web font removal reports under.
const IDWebFonts = "P05_WEB_FONTS"

// WebFontHosts serve hosted font stylesheets and font files.
var WebFontHosts = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"fonts.bunny.net",
	"use.typekit.net",
	"p.typekit.net",
	"fast.fonts.net",
	"use.fontawesome.com",
}

// SafeFonts ship with the platforms of every major email client.
var SafeFonts = []string{
	"Arial",
	"Helvetica",
	"Georgia",
	"Times",
	"Times New Roman",
	"Courier",
	"Courier New",
	"Verdana",
	"Tahoma",
	"Impact",
	"Comic Sans MS",
	"Trebuchet MS",
	"Arial Black",
	"Palatino",
	"Lucida Console",
	"Lucida Sans Unicode",
	"Segoe UI",
	"Helvetica Neue",
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "-apple-system": true, "blinkmacsystemfont": true,
	"inherit": true, "initial": true,
}

// Phase returns the web font phase. When disabled it only records that
// it was skipped.
func Phase(enabled bool) check.Phase {
	if !enabled {
		return check.Phase{Name: "web-fonts", Run: func(c *check.Context) {
			c.Skipped(IDWebFonts, "web font removal disabled")
		}}
	}
	return check.Phase{Name: "web-fonts", Run: Remove}
}
