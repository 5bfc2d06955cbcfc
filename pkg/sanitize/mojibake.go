package sanitize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type mojibakeEntry struct {
	garbled string
	fixed   string
}

// mojibakeIndex maps the first rune of a garbled sequence to its
// candidates, longest first, so a mis-encoded dash is consumed before
// the two-rune umlaut sequences it contains.
var mojibakeIndex = buildMojibakeIndex()

var mojibakeRanges = [][2]rune{
	{0x00A0, 0x00FF}, // Latin-1 supplement
	{0x0100, 0x017F}, // Latin Extended-A
	{0x0192, 0x0192},
	{0x02C6, 0x02DC},
	{0x2000, 0x206F}, // general punctuation, zero-width characters
	{0x20AC, 0x20AC},
	{0x2122, 0x2122},
}

func buildMojibakeIndex() map[rune][]mojibakeEntry {
	seen := map[string]bool{}
	index := map[rune][]mojibakeEntry{}
	add := func(garbled, fixed string) {
		if garbled == fixed || seen[garbled] {
			return
		}
		seen[garbled] = true
		first, _ := utf8.DecodeRuneInString(garbled)
		index[first] = append(index[first], mojibakeEntry{garbled: garbled, fixed: fixed})
	}

	for _, rg := range mojibakeRanges {
		for r := rg[0]; r <= rg[1]; r++ {
			fixed := string(r)
			if g, ok := misdecode(fixed, charmap.Windows1252); ok {
				add(g, fixed)
			}
			if g, ok := misdecode(fixed, charmap.ISO8859_1); ok {
				add(g, fixed)
			}
		}
	}

	for first := range index {
		entries := index[first]
		sort.SliceStable(entries, func(i, j int) bool {
			return len(entries[i].garbled) > len(entries[j].garbled)
		})
	}
	return index
}

// misdecode returns what s looks like after its UTF-8 bytes were read as
// a single-byte charset and written out again as UTF-8.
func misdecode(s string, cm *charmap.Charmap) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		r := cm.DecodeByte(s[i])
		if r == utf8.RuneError {
			return "", false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// RepairMojibake replaces double-encoded UTF-8 sequences with the
// characters they stood for and returns the number of replacements.
func RepairMojibake(text string) (string, int) {
	var b strings.Builder
	count := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if entries, ok := mojibakeIndex[r]; ok {
			matched := false
			for _, e := range entries {
				if strings.HasPrefix(text[i:], e.garbled) {
					if count == 0 {
						b.Grow(len(text))
						b.WriteString(text[:i])
					}
					b.WriteString(e.fixed)
					i += len(e.garbled)
					count++
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		if count > 0 {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	if count == 0 {
		return text, 0
	}
	return b.String(), count
}
