// Package sanitize fixes gross document malformations before any
// structural phase runs. Each step is idempotent and logs its own check.
package sanitize

import (
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

const (
	IDBOM            = "S01_BOM"
	IDLineEndings    = "S02_LINE_ENDINGS"
	IDDupStructure   = "S03_DUP_STRUCTURE"
	IDDupTitle       = "S03b_DUP_TITLE"
	IDDupCharset     = "S03c_DUP_CHARSET"
	IDDupAttributes  = "S04_DUP_ATTRIBUTES"
	IDHrefWhitespace = "S05_HREF_WHITESPACE"
	IDHrefNewline    = "S05b_HREF_NEWLINE"
	IDCMSResidue     = "S06_CMS_RESIDUE"
	IDSelfClosing    = "S07_SELF_CLOSING"
	IDMojibake       = "S11_MOJIBAKE"
)

// Phases returns the sanitizer steps in execution order. Mojibake runs
// before charset resolution so repaired text is never re-declared.
func Phases() []check.Phase {
	return []check.Phase{
		{Name: "bom", Run: stripBOM},
		{Name: "line-endings", Run: normalizeLineEndings},
		{Name: "dup-structure", Run: collapseStructure},
		{Name: "dup-title", Run: dedupeTitle},
		{Name: "mojibake", Run: repairMojibake},
		{Name: "dup-charset", Run: resolveCharset},
		{Name: "dup-attributes", Run: dedupeAttributes},
		{Name: "href-whitespace", Run: cleanHrefs},
		{Name: "cms-residue", Run: stripCMSResidue},
		{Name: "self-closing", Run: expandSelfClosing},
	}
}

// Run applies every sanitizer step to c.
func Run(c *check.Context) {
	for _, p := range Phases() {
		p.Run(c)
	}
}

const bom = "\uFEFF"

func stripBOM(c *check.Context) {
	n := 0
	for strings.HasPrefix(c.Text, bom) {
		c.Text = c.Text[len(bom):]
		n++
	}
	if n == 0 {
		c.Pass(IDBOM, "no byte order mark")
		return
	}
	c.Fixed(IDBOM, "removed %d leading byte order mark(s)", n)
}

func normalizeLineEndings(c *check.Context) {
	crlf := strings.Count(c.Text, "\r\n")
	text := strings.ReplaceAll(c.Text, "\r\n", "\n")
	cr := strings.Count(text, "\r")
	if crlf+cr == 0 {
		c.Pass(IDLineEndings, "line endings are LF")
		return
	}
	c.Text = strings.ReplaceAll(text, "\r", "\n")
	c.Fixed(IDLineEndings, "normalized %d CRLF and %d stray CR line ending(s)", crlf, cr)
}

func repairMojibake(c *check.Context) {
	text, n := RepairMojibake(c.Text)
	if n == 0 {
		c.Pass(IDMojibake, "no double-encoded characters")
		return
	}
	c.Text = text
	c.Fixed(IDMojibake, "repaired %d double-encoded character sequence(s)", n)
}
