package sanitize

import (
	"regexp"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var (
	htmlOpenTag   = regexp.MustCompile(`(?i)<html\b[^>]*>`)
	htmlCloseTag  = regexp.MustCompile(`(?i)</html\s*>`)
	headOpenTag   = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	headCloseTag  = regexp.MustCompile(`(?i)</head\s*>`)
	bodyOpenTag   = regexp.MustCompile(`(?i)<body\b[^>]*>`)
	bodyCloseTag  = regexp.MustCompile(`(?i)</body\s*>`)
	titleElement  = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	genericTitles = map[string]bool{
		"": true, "untitled": true, "untitled document": true, "document": true,
		"email": true, "newsletter": true, "title": true, "template": true,
		"page title": true, "new message": true, "email template": true,
	}
)

// removeMatchesExcept deletes every match in matches except the one at keep.
func removeMatchesExcept(text string, matches [][]int, keep int) (string, int) {
	removed := 0
	for i := len(matches) - 1; i >= 0; i-- {
		if i == keep {
			continue
		}
		text = text[:matches[i][0]] + text[matches[i][1]:]
		removed++
	}
	return text, removed
}

func keepFirst([][]int, string) int { return 0 }

func keepLast(m [][]int, _ string) int { return len(m) - 1 }

func keepHeadClose(m [][]int, text string) int {
	body := mask.FindOutside(bodyOpenTag, text)
	if len(body) == 0 {
		return 0
	}
	keep := 0
	for i, loc := range m {
		if loc[0] < body[0][0] {
			keep = i
		}
	}
	return keep
}

// collapseStructure removes duplicated <html>/<head>/<body> wrappers left by
// pasting one full document into another.
func collapseStructure(c *check.Context) {
	rules := []struct {
		re   *regexp.Regexp
		keep func([][]int, string) int
	}{
		{htmlOpenTag, keepFirst},
		{bodyOpenTag, keepFirst},
		{headOpenTag, keepFirst},
		{headCloseTag, keepHeadClose},
		{bodyCloseTag, keepLast},
		{htmlCloseTag, keepLast},
	}

	text := c.Text
	total := 0
	for _, r := range rules {
		matches := mask.FindOutside(r.re, text)
		if len(matches) < 2 {
			continue
		}
		var n int
		text, n = removeMatchesExcept(text, matches, r.keep(matches, text))
		total += n
	}
	if total == 0 {
		c.Pass(IDDupStructure, "no duplicated html/head/body tags")
		return
	}
	c.Text = text
	c.Fixed(IDDupStructure, "removed %d duplicated html/head/body tags", total)
}

// dedupeTitle keeps one title element carrying the first title text that
// is not a generic placeholder.
func dedupeTitle(c *check.Context) {
	matches := mask.FindOutside(titleElement, c.Text)
	if len(matches) < 2 {
		c.Pass(IDDupTitle, "%d title element(s)", len(matches))
		return
	}
	keep := 0
	for i, m := range matches {
		title := strings.ToLower(strings.TrimSpace(c.Text[m[2]:m[3]]))
		if !genericTitles[title] {
			keep = i
			break
		}
	}
	kept := c.Text[matches[keep][2]:matches[keep][3]]
	text, n := removeMatchesExcept(c.Text, matches, 0)
	// the surviving element stays where the first title was
	first := matches[0]
	c.Text = text[:first[2]] + kept + text[first[3]:]
	c.Fixed(IDDupTitle, "removed %d duplicate title(s), kept %q", n, strings.TrimSpace(kept))
}
