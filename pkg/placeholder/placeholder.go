// Package placeholder keeps exactly one header token, one footer token and
// one preheader in a template, inserting them at client-specific anchors.
package placeholder

import (
	"errors"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const (
	IDPreheader    = "P06_PREHEADER"
	IDHeader       = "P07_HEADER"
	IDFooter       = "P08_FOOTER"
	IDThemeWrapper = "P09_THEME_WRAPPER"
)

const (
	DefaultHeaderToken  = "{{HEADER}}"
	DefaultFooterToken  = "{{FOOTER}}"
	DefaultWrapperClass = "email-theme"
	DefaultThemeColor   = "#ffffff"
)

var (
	errNoBody      = errors.New("no <body> tag")
	errNoBodyClose = errors.New("no </body> tag")
)

// Config selects tokens and anchors.
type Config struct {
	HeaderToken   string
	FooterToken   string
	PreheaderText string
	// Themed wraps header and footer inside a brand-colored container.
	Themed       bool
	WrapperClass string
	ThemeColor   string
}

func (cfg Config) withDefaults() Config {
	if cfg.HeaderToken == "" {
		cfg.HeaderToken = DefaultHeaderToken
	}
	if cfg.FooterToken == "" {
		cfg.FooterToken = DefaultFooterToken
	}
	if cfg.WrapperClass == "" {
		cfg.WrapperClass = DefaultWrapperClass
	}
	if cfg.ThemeColor == "" {
		cfg.ThemeColor = DefaultThemeColor
	}
	cfg.PreheaderText = strings.TrimSpace(cfg.PreheaderText)
	return cfg
}

// Manager runs the placeholder phases for one configuration.
type Manager struct {
	cfg Config
}

// New returns a Manager with defaults filled in.
func New(cfg Config) *Manager {
	return &Manager{cfg: cfg.withDefaults()}
}

// Phases returns the placeholder phases in execution order. The preheader
// comes first because the header anchors after it.
func (m *Manager) Phases() []check.Phase {
	phases := []check.Phase{{Name: "preheader", Run: m.preheader}}
	if m.cfg.Themed {
		phases = append(phases, check.Phase{Name: "theme-wrapper", Run: m.themeWrapper})
	}
	return append(phases,
		check.Phase{Name: "header", Run: m.header},
		check.Phase{Name: "footer", Run: m.footer},
	)
}

// tokenPositions returns the offsets of every occurrence of token.
func tokenPositions(text, token string) []int {
	var out []int
	for i := 0; ; {
		j := strings.Index(text[i:], token)
		if j < 0 {
			return out
		}
		out = append(out, i+j)
		i += j + len(token)
	}
}

// dedupeToken removes every occurrence of token after the first.
func dedupeToken(text, token string) (string, int) {
	pos := tokenPositions(text, token)
	for i := len(pos) - 1; i > 0; i-- {
		text = text[:pos[i]] + text[pos[i]+len(token):]
	}
	return text, max(len(pos)-1, 0)
}

func (m *Manager) header(c *check.Context) {
	m.ensureToken(c, IDHeader, m.cfg.HeaderToken, m.headerAnchor)
}

func (m *Manager) footer(c *check.Context) {
	m.ensureToken(c, IDFooter, m.cfg.FooterToken, m.footerAnchor)
}

func (m *Manager) ensureToken(c *check.Context, id, token string, anchor func(string) (int, string, error)) {
	switch n := len(tokenPositions(c.Text, token)); {
	case n == 1:
		c.Pass(id, "%s present once", token)
	case n > 1:
		var removed int
		c.Text, removed = dedupeToken(c.Text, token)
		c.Fixed(id, "removed %d duplicate %s token(s)", removed, token)
	default:
		at, where, err := anchor(c.Text)
		if err != nil {
			c.Fail(id, "cannot place %s: %v", token, err)
			return
		}
		c.Text = c.Text[:at] + "\n" + token + "\n" + c.Text[at:]
		c.Fixed(id, "inserted %s %s", token, where)
	}
}

// headerAnchor is just inside the theme wrapper when there is one, else
// just after <body>, and in both cases after a preheader sitting there.
func (m *Manager) headerAnchor(text string) (int, string, error) {
	at, where := -1, ""
	if m.cfg.Themed {
		if w, ok := m.findWrapper(text); ok {
			at, where = w.openEnd, "inside ."+m.cfg.WrapperClass+" wrapper"
		}
	}
	if at < 0 {
		body := mask.FindOutside(bodyOpenTag, text)
		if len(body) == 0 {
			return 0, "", errNoBody
		}
		at, where = body[0][1], "after <body>"
	}
	for _, p := range FindPreheaders(text) {
		if p.Start >= at && strings.TrimSpace(text[at:p.Start]) == "" {
			at = p.End
			where += " and preheader"
			break
		}
	}
	return at, where, nil
}

// footerAnchor is just before the theme wrapper's closing tag, else just
// before the last </body>.
func (m *Manager) footerAnchor(text string) (int, string, error) {
	if m.cfg.Themed {
		if w, ok := m.findWrapper(text); ok && w.closeStart >= 0 {
			return w.closeStart, "at the end of ." + m.cfg.WrapperClass + " wrapper", nil
		}
	}
	closes := mask.FindOutside(bodyCloseTag, text)
	if len(closes) == 0 {
		return 0, "", errNoBodyClose
	}
	return closes[len(closes)-1][0], "before </body>", nil
}

type wrapper struct {
	openStart  int
	openEnd    int
	closeStart int
	closeEnd   int
}

func (m *Manager) findWrapper(text string) (wrapper, bool) {
	for _, d := range mask.FindOutside(divOpenTag, text) {
		if !markup.HasClass(text[d[0]:d[1]], m.cfg.WrapperClass) {
			continue
		}
		cs, ce := mask.MatchClose(text, d[0])
		return wrapper{openStart: d[0], openEnd: d[1], closeStart: cs, closeEnd: ce}, true
	}
	return wrapper{}, false
}
