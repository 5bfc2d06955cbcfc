package cta

import (
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/joeblew999/plat-mailfix/pkg/markup"
	"github.com/joeblew999/plat-mailfix/pkg/mask"
)

var (
	styleBlock   = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style\s*>`)
	classInRule  = regexp.MustCompile(`\.([a-zA-Z_][\w-]*)`)
	gradientFunc = regexp.MustCompile(`(?i)linear-gradient\s*\(`)
)

// classRule is the merged top-level declarations of one CSS class.
type classRule struct {
	decls []markup.Decl
}

func (r classRule) value(prop string) string {
	v := ""
	for _, d := range r.decls {
		if d.Property == prop {
			v = d.Value
		}
	}
	return v
}

// backgroundClasses returns the classes whose top-level rules paint a
// background. Rules inside @media and other at-rule blocks are ignored:
// a background that only applies on some screens does not make a button.
func backgroundClasses(html string) map[string]classRule {
	rules := map[string]classRule{}
	for _, m := range mask.FindOutside(styleBlock, html) {
		for _, r := range topLevelRules(html[m[2]:m[3]]) {
			for _, sel := range r.Selectors {
				for _, cls := range lastCompoundClasses(sel) {
					cr := rules[cls]
					for _, d := range r.Declarations {
						cr.decls = append(cr.decls, declOf(d))
					}
					rules[cls] = cr
				}
			}
		}
	}
	for cls, r := range rules {
		if !paintsBackground(r.decls) {
			delete(rules, cls)
		}
	}
	return rules
}

func paintsBackground(decls []markup.Decl) bool {
	for _, d := range decls {
		switch d.Property {
		case "background-color":
			if !isTransparent(d.Value) {
				return true
			}
		case "background", "background-image":
			if gradientFunc.MatchString(d.Value) || (d.Property == "background" && markup.FirstColor(d.Value) != "" && !isTransparent(d.Value)) {
				return true
			}
		}
	}
	return false
}

func isTransparent(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "none" || strings.HasPrefix(v, "transparent") || v == "inherit"
}

// topLevelRules returns the qualified rules outside any at-rule block.
// Parsing stops at the first syntax error; rules before it are kept.
func topLevelRules(sheet string) []*css.Rule {
	rules, _ := parser.NewParser(strings.TrimPrefix(sheet, "\ufeff")).ParseRules()
	var out []*css.Rule
	for _, r := range rules {
		if r.Kind == css.QualifiedRule {
			out = append(out, r)
		}
	}
	return out
}

func declOf(d *css.Declaration) markup.Decl {
	v := d.Value
	if d.Important {
		v += " !important"
	}
	return markup.Decl{Property: strings.ToLower(d.Property), Value: v}
}

// lastCompoundClasses returns the classes of the element a selector
// targets, e.g. "btn" for both "table .btn" and "a.btn".
func lastCompoundClasses(sel string) []string {
	fields := strings.Fields(strings.NewReplacer(">", " ", "+", " ", "~", " ").Replace(sel))
	if len(fields) == 0 {
		return nil
	}
	last := fields[len(fields)-1]
	// interaction states do not describe the resting button
	for _, state := range []string{":hover", ":active", ":focus"} {
		if strings.Contains(last, state) {
			return nil
		}
	}
	var out []string
	for _, m := range classInRule.FindAllStringSubmatch(last, -1) {
		out = append(out, m[1])
	}
	return out
}
