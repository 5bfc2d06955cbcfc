package placeholder

import (
	"fmt"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

const msoOpenMarker = "<!--[if mso]>"

// Outlook ignores div backgrounds, so the themed container is paired with
// a conditional table carrying the same color.
func (m *Manager) msoOpen() string {
	return fmt.Sprintf(`<!--[if mso]><table role="presentation" width="100%%" cellpadding="0" cellspacing="0" border="0"><tr><td style="background-color:%s;"><![endif]-->`, m.cfg.ThemeColor)
}

const msoClose = `<!--[if mso]></td></tr></table><![endif]-->`

func (m *Manager) wrapperOpen() string {
	return fmt.Sprintf(`<div class="%s" style="background-color:%s;">`, m.cfg.WrapperClass, m.cfg.ThemeColor)
}

// themeWrapper makes sure the themed container exists and is bracketed by
// the Outlook conditional table.
func (m *Manager) themeWrapper(c *check.Context) {
	w, ok := m.findWrapper(c.Text)
	if !ok {
		m.insertWrapper(c)
		return
	}
	if w.closeStart < 0 {
		c.Warn(IDThemeWrapper, ".%s wrapper is never closed", m.cfg.WrapperClass)
		return
	}

	before := c.Text[max(0, w.openStart-400):w.openStart]
	hasOpen := strings.Contains(before, msoOpenMarker) &&
		strings.HasSuffix(strings.TrimSpace(before), "<![endif]-->")
	after := c.Text[w.closeEnd:min(len(c.Text), w.closeEnd+200)]
	hasClose := strings.HasPrefix(strings.TrimSpace(after), msoOpenMarker)
	if hasOpen && hasClose {
		c.Pass(IDThemeWrapper, ".%s wrapper has an Outlook conditional table", m.cfg.WrapperClass)
		return
	}

	text := c.Text
	if !hasClose {
		text = text[:w.closeEnd] + msoClose + text[w.closeEnd:]
	}
	if !hasOpen {
		text = text[:w.openStart] + m.msoOpen() + text[w.openStart:]
	}
	c.Text = text
	c.Fixed(IDThemeWrapper, "added Outlook conditional table around .%s wrapper", m.cfg.WrapperClass)
}

func (m *Manager) insertWrapper(c *check.Context) {
	body := mask.FindOutside(bodyOpenTag, c.Text)
	closes := mask.FindOutside(bodyCloseTag, c.Text)
	if len(body) == 0 || len(closes) == 0 {
		c.Fail(IDThemeWrapper, "no <body> to wrap in .%s", m.cfg.WrapperClass)
		return
	}
	open := body[0][1]
	for _, p := range FindPreheaders(c.Text) {
		if strings.TrimSpace(c.Text[open:p.Start]) == "" {
			open = p.End
			break
		}
	}
	end := closes[len(closes)-1][0]
	if end < open {
		c.Fail(IDThemeWrapper, "</body> precedes body content")
		return
	}

	c.Text = c.Text[:open] + "\n" + m.msoOpen() + m.wrapperOpen() +
		c.Text[open:end] +
		"</div>" + msoClose + "\n" + c.Text[end:]
	c.Fixed(IDThemeWrapper, "wrapped body content in .%s (%s)", m.cfg.WrapperClass, m.cfg.ThemeColor)
}
