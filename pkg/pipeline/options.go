package pipeline

import (
	"fmt"
	"strings"

	"github.com/joeblew999/plat-mailfix/pkg/placeholder"
)

// Checklist selects the optional phases and placeholder anchors.
type Checklist string

const (
	ChecklistStandard Checklist = "standard"
	// ChecklistThemed wraps header and footer in a brand-colored container.
	ChecklistThemed Checklist = "themed"
)

// ParseChecklist accepts the checklist names case-insensitively. An empty
// name selects the standard checklist.
func ParseChecklist(s string) (Checklist, error) {
	switch Checklist(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChecklistStandard:
		return ChecklistStandard, nil
	case ChecklistThemed:
		return ChecklistThemed, nil
	}
	return "", fmt.Errorf("unknown checklist %q (want %s or %s)", s, ChecklistStandard, ChecklistThemed)
}

// Options configures one run.
type Options struct {
	Checklist     Checklist `json:"checklist,omitempty" yaml:"checklist,omitempty"`
	PreheaderText string    `json:"preheaderText,omitempty" yaml:"preheaderText,omitempty"`
	RemoveFonts   bool      `json:"removeFonts,omitempty" yaml:"removeFonts,omitempty"`
	TitleText     string    `json:"titleText,omitempty" yaml:"titleText,omitempty"`

	HeaderToken       string `json:"headerToken,omitempty" yaml:"headerToken,omitempty"`
	FooterToken       string `json:"footerToken,omitempty" yaml:"footerToken,omitempty"`
	ThemeWrapperClass string `json:"themeWrapperClass,omitempty" yaml:"themeWrapperClass,omitempty"`
	ThemeColor        string `json:"themeColor,omitempty" yaml:"themeColor,omitempty"`

	// Salutation, when set, replaces generic greetings such as
	// "Dear Customer" with this merge field.
	Salutation string `json:"salutation,omitempty" yaml:"salutation,omitempty"`
}

// Themed reports whether the themed checklist is selected.
func (o Options) Themed() bool { return o.Checklist == ChecklistThemed }

// WithDefaults fills every empty field.
func (o Options) WithDefaults() Options {
	if o.Checklist == "" {
		o.Checklist = ChecklistStandard
	}
	if o.HeaderToken == "" {
		o.HeaderToken = placeholder.DefaultHeaderToken
	}
	if o.FooterToken == "" {
		o.FooterToken = placeholder.DefaultFooterToken
	}
	if o.ThemeWrapperClass == "" {
		o.ThemeWrapperClass = placeholder.DefaultWrapperClass
	}
	if o.ThemeColor == "" {
		o.ThemeColor = placeholder.DefaultThemeColor
	}
	return o
}

// Merge returns o with its empty fields taken from base. RemoveFonts is
// enabled when either side enables it.
func (o Options) Merge(base Options) Options {
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	o.Checklist = Checklist(pick(string(o.Checklist), string(base.Checklist)))
	o.PreheaderText = pick(o.PreheaderText, base.PreheaderText)
	o.TitleText = pick(o.TitleText, base.TitleText)
	o.HeaderToken = pick(o.HeaderToken, base.HeaderToken)
	o.FooterToken = pick(o.FooterToken, base.FooterToken)
	o.ThemeWrapperClass = pick(o.ThemeWrapperClass, base.ThemeWrapperClass)
	o.ThemeColor = pick(o.ThemeColor, base.ThemeColor)
	o.Salutation = pick(o.Salutation, base.Salutation)
	o.RemoveFonts = o.RemoveFonts || base.RemoveFonts
	return o
}
