package quality

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

var genericLinkText = map[string]bool{
	"click": true, "click here": true, "here": true, "link": true, "this link": true,
	"more": true, "read more": true, "this": true, "go": true,
}

var placeholderHosts = map[string]bool{
	"example.com": true, "example.org": true, "example.net": true,
	"domain.com": true, "yourdomain.com": true, "yoursite.com": true,
	"website.com": true, "yourwebsite.com": true, "test.com": true,
}

func links(c *check.Context) []element {
	var out []element
	for _, a := range byTag(elements(c.Text), "a") {
		if _, ok := a.attr("href"); ok {
			out = append(out, a)
		}
	}
	return out
}

func linkText(c *check.Context) {
	var bad []string
	for _, a := range links(c) {
		t := strings.ToLower(strings.Trim(a.Text, " .:!>»→"))
		switch {
		case t == "":
			bad = append(bad, fmt.Sprintf("link to %s has no text", a.Attrs["href"]))
		case genericLinkText[t]:
			bad = append(bad, fmt.Sprintf("%q", a.Text))
		}
	}
	if len(bad) > 0 {
		c.Warn(IDLinkText, "%d link(s) without descriptive text: %s", len(bad), summarize(bad))
		return
	}
	c.Pass(IDLinkText, "link text is descriptive")
}

func emptyHref(c *check.Context) {
	n := 0
	for _, a := range links(c) {
		if h := strings.TrimSpace(a.Attrs["href"]); h == "" || h == "#" {
			n++
		}
	}
	if n > 0 {
		c.Warn(IDEmptyHref, "%d link(s) with an empty or \"#\" href", n)
		return
	}
	c.Pass(IDEmptyHref, "every link has a target")
}

// BrokenReason explains why href can not work in a delivered email, or
// returns "" when it looks fine. Hrefs holding a merge field are left to
// the sending platform.
func BrokenReason(href string) string {
	h := strings.TrimSpace(href)
	lower := strings.ToLower(h)
	switch {
	case h == "" || strings.HasPrefix(h, "#"):
		return ""
	case HasMergeField(h):
		return ""
	case strings.HasPrefix(lower, "javascript:"):
		return "javascript URL"
	case lower == "undefined" || lower == "null" || lower == "none":
		return "unresolved value"
	case strings.ContainsAny(h, " \t\n"):
		return "contains whitespace"
	}
	u, err := url.Parse(h)
	if err != nil {
		return "unparseable URL"
	}
	switch u.Scheme {
	case "":
		if strings.HasPrefix(lower, "www.") {
			return "missing http(s) scheme"
		}
		return "relative URL"
	case "http", "https":
	default:
		return ""
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "":
		return "missing host"
	case host == "localhost" || host == "127.0.0.1":
		return "local address"
	case placeholderHosts[strings.TrimPrefix(host, "www.")]:
		return "placeholder domain"
	}
	return ""
}

func brokenLinks(c *check.Context) {
	var bad []string
	for _, a := range links(c) {
		href := a.Attrs["href"]
		if r := BrokenReason(href); r != "" {
			bad = append(bad, fmt.Sprintf("%s (%s)", href, r))
		}
	}
	if len(bad) > 0 {
		c.Warn(IDBrokenLinks, "%d broken or placeholder link(s): %s", len(bad), summarize(bad))
		return
	}
	c.Pass(IDBrokenLinks, "no broken links")
}

func insecureURLs(c *check.Context) {
	var imgs, hrefs int
	for _, e := range elements(c.Text) {
		switch e.Tag {
		case "img":
			if isHTTP(e.Attrs["src"]) {
				imgs++
			}
		case "a":
			if isHTTP(e.Attrs["href"]) {
				hrefs++
			}
		}
	}
	if imgs+hrefs > 0 {
		c.Warn(IDInsecureURLs, "%d image(s) and %d link(s) use http://; clients block or flag insecure content", imgs, hrefs)
		return
	}
	c.Pass(IDInsecureURLs, "all URLs use https")
}

func isHTTP(u string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u)), "http://")
}

func mailtoLinks(c *check.Context) {
	total := 0
	var bad []string
	for _, a := range links(c) {
		href := strings.TrimSpace(a.Attrs["href"])
		if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			continue
		}
		total++
		if err := validMailto(href[len("mailto:"):]); err != nil {
			bad = append(bad, fmt.Sprintf("%s (%v)", href, err))
		}
	}
	switch {
	case len(bad) > 0:
		c.Warn(IDMailto, "%d invalid mailto link(s): %s", len(bad), summarize(bad))
	case total == 0:
		c.Pass(IDMailto, "no mailto links")
	default:
		c.Pass(IDMailto, "%d mailto link(s) valid", total)
	}
}

func validMailto(rest string) error {
	addrs, _, _ := strings.Cut(rest, "?")
	addrs, err := url.PathUnescape(addrs)
	if err != nil {
		return err
	}
	if strings.TrimSpace(addrs) == "" {
		return fmt.Errorf("no address")
	}
	for _, addr := range strings.Split(addrs, ",") {
		addr = strings.TrimSpace(addr)
		if HasMergeField(addr) {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("%q: %w", addr, err)
		}
	}
	return nil
}

// summarize joins up to five items for a check message.
func summarize(items []string) string {
	const limit = 5
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:limit], ", "), len(items)-limit)
}
