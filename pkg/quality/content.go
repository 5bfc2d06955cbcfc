package quality

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
	"github.com/joeblew999/plat-mailfix/pkg/placeholder"
)

// ClipThreshold is the size above which Gmail clips a message.
const ClipThreshold = 102 * 1024

// minWordsPerImage is the text density below which spam filters start to
// treat a message as image-only.
const minWordsPerImage = 30

func templateSize(c *check.Context) {
	n := len(c.Text)
	kb := float64(n) / 1024
	switch {
	case n > ClipThreshold:
		c.Warn(IDTemplateSize, "template is %.1fKB; Gmail clips messages over 102KB", kb)
	case n > ClipThreshold*9/10:
		c.Info(IDTemplateSize, "template is %.1fKB, close to Gmail's 102KB clipping limit", kb)
	default:
		c.Pass(IDTemplateSize, "template is %.1fKB", kb)
	}
}

var textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// VisibleWords counts the words a reader sees. Styles, scripts, comments
// and hidden preheaders are removed before the markup is stripped.
func VisibleWords(text string) int {
	text = withoutCode(text)
	pre := placeholder.FindPreheaders(text)
	for i := len(pre) - 1; i >= 0; i-- {
		text = text[:pre[i].Start] + " " + text[pre[i].End:]
	}
	plain := html.UnescapeString(textPolicy.Sanitize(text))
	return len(strings.Fields(plain))
}

func textImageRatio(c *check.Context) {
	words := VisibleWords(c.Text)
	images := 0
	for _, img := range byTag(elements(c.Text), "img") {
		if !isPixel(img) {
			images++
		}
	}
	switch {
	case images == 0:
		c.Pass(IDTextImageRatio, "%d word(s), no images", words)
	case words == 0:
		c.Warn(IDTextImageRatio, "image-only message (%d image(s), no text); likely to be filtered as spam", images)
	case words/images < minWordsPerImage:
		c.Warn(IDTextImageRatio, "%d word(s) for %d image(s); add text to balance the images", words, images)
	default:
		c.Pass(IDTextImageRatio, "%d word(s) for %d image(s)", words, images)
	}
}

var unsubscribeHint = regexp.MustCompile(`(?i)unsub|opt[\s-]?out|email preferences|manage (?:your )?(?:subscription|preferences)`)

func (s *Suite) unsubscribe(c *check.Context) {
	visible := withoutCode(c.Text)
	if unsubscribeHint.MatchString(visible) {
		c.Pass(IDUnsubscribe, "unsubscribe link present")
		return
	}
	if s.cfg.FooterToken != "" && strings.Contains(c.Text, s.cfg.FooterToken) {
		c.Info(IDUnsubscribe, "no unsubscribe link; expected from the %s footer", s.cfg.FooterToken)
		return
	}
	c.Warn(IDUnsubscribe, "no unsubscribe link; required by most mailbox providers")
}

var genericGreeting = regexp.MustCompile(`(?i)\b(dear|hello|hi)(\s+)(?:valued\s+customer|customer|sir\s*(?:/|or)\s*madam|sir|madam|member|user|subscriber|friend|client)\b`)

// salutation finds greetings addressed to nobody in particular and
// personalises them when a merge field is configured.
func (s *Suite) salutation(c *check.Context) {
	var found [][]int
	for _, m := range mask.FindOutside(genericGreeting, c.Text) {
		if !insideTag(c.Text, m[0]) {
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		c.Pass(IDSalutation, "no generic salutation")
		return
	}
	first := c.Text[found[0][0]:found[0][1]]
	if s.cfg.Salutation == "" {
		c.Warn(IDSalutation, "generic salutation %q; personalise it with a merge field", first)
		return
	}
	for i := len(found) - 1; i >= 0; i-- {
		m := found[i]
		greeting := c.Text[m[2]:m[3]] + c.Text[m[4]:m[5]]
		c.Replace(m[0], m[1], greeting+s.cfg.Salutation)
	}
	c.Fixed(IDSalutation, "replaced %d generic salutation(s) with %s", len(found), s.cfg.Salutation)
}

func insideTag(text string, pos int) bool {
	return strings.LastIndexByte(text[:pos], '<') > strings.LastIndexByte(text[:pos], '>')
}

var unbalancedBraces = regexp.MustCompile(`\{\{|\}\}`)

// mergeFields reports the templating notations in use. Mixing notations
// usually means a block was pasted from another platform.
func mergeFields(c *check.Context) {
	visible := withoutCode(c.Text)
	opens, closes := 0, 0
	for _, m := range unbalancedBraces.FindAllString(visible, -1) {
		if m == "{{" {
			opens++
		} else {
			closes++
		}
	}
	if opens != closes {
		c.Warn(IDMergeFields, "unbalanced merge field braces: %d {{ against %d }}", opens, closes)
		return
	}

	counts := MergeFields(visible)
	var syntaxes []string
	total := 0
	for name, n := range counts {
		syntaxes = append(syntaxes, name)
		total += n
	}
	sort.Strings(syntaxes)
	switch len(syntaxes) {
	case 0:
		c.Pass(IDMergeFields, "no merge fields")
	case 1:
		c.Info(IDMergeFields, "%d merge field(s) using %s", total, syntaxes[0])
	default:
		c.Warn(IDMergeFields, "mixed merge field notations: %s", strings.Join(syntaxes, ", "))
	}
}
