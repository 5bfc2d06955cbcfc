package doctype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mailfix/pkg/check"
)

func TestNormalizeStates(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		status  check.Status
		message string
	}{
		{"missing", `<html><body>x</body></html>`, check.StatusFixed, "inserted"},
		{"canonical", Canonical + "\n<html></html>", check.StatusPass, "present"},
		{"extra whitespace", strings.Replace(Canonical, " PUBLIC ", "  PUBLIC\n  ", 1) + "<html></html>", check.StatusFixed, "whitespace"},
		{"html5", "<!DOCTYPE html>\n<html></html>", check.StatusFixed, string(FamilyHTML5)},
		{"html4", `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN"><html></html>`, check.StatusFixed, string(FamilyHTML4)},
		{"strict", `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd"><html></html>`, check.StatusFixed, string(FamilyStrict)},
		{"several", "<!DOCTYPE html>" + Canonical + "<html></html>", check.StatusFixed, "replaced 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := check.NewContext(tt.in)
			Normalize(c)
			assert.True(t, strings.HasPrefix(c.Text, Canonical))
			assert.Equal(t, 1, strings.Count(strings.ToLower(c.Text), "<!doctype"))
			got := c.Find(IDDoctype)
			require.Len(t, got, 1)
			assert.Equal(t, tt.status, got[0].Status)
			assert.Contains(t, got[0].Message, tt.message)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"<table><tr><td>x",
		"  <!DOCTYPE html>\n<html><body></body></html>",
		"<!-- lead -->\n" + Canonical + "<html></html>",
	}
	for _, in := range inputs {
		first := check.NewContext(in)
		Normalize(first)
		second := check.NewContext(first.Text)
		Normalize(second)
		assert.Equal(t, first.Text, second.Text)
		assert.Equal(t, check.StatusPass, second.Checks[0].Status)
	}
}

func TestNormalizeIgnoresCommentedDoctype(t *testing.T) {
	c := check.NewContext(Canonical + "<!-- <!DOCTYPE html> --><html></html>")
	Normalize(c)
	assert.Equal(t, check.StatusPass, c.Checks[0].Status)
}

func TestEnforceXmlns(t *testing.T) {
	c := check.NewContext(`<html lang="de" dir="ltr" xmlns="http://example.com"><body></body></html>`)
	EnforceXmlns(c)
	assert.Equal(t, `<html lang="de" dir="ltr" xmlns="http://www.w3.org/1999/xhtml" xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office"><body></body></html>`, c.Text)
	assert.Equal(t, check.StatusFixed, c.Checks[0].Status)

	again := check.NewContext(c.Text)
	EnforceXmlns(again)
	assert.Equal(t, check.StatusPass, again.Checks[0].Status)
}

func TestEnforceXmlnsWithoutHTMLFails(t *testing.T) {
	c := check.NewContext(`<table><tr><td>x`)
	EnforceXmlns(c)
	assert.Equal(t, check.StatusFail, c.Checks[0].Status)
}

func TestEnsureCharset(t *testing.T) {
	c := check.NewContext(`<html><head><title>x</title></head></html>`)
	EnsureCharset(c)
	assert.Contains(t, c.Text, "<head>\n"+metaCharsetTag)
	assert.Equal(t, check.StatusFixed, c.Checks[0].Status)
}

func TestEnsureTitle(t *testing.T) {
	c := check.NewContext(`<html><head></head></html>`)
	EnsureTitle("Spring & Summer")(c)
	assert.Contains(t, c.Text, "<title>Spring &amp; Summer</title>")

	again := check.NewContext(c.Text)
	EnsureTitle("Spring & Summer")(again)
	assert.Equal(t, check.StatusPass, again.Checks[0].Status)

	empty := check.NewContext(`<head><title> </title></head>`)
	EnsureTitle("")(empty)
	assert.Equal(t, check.StatusWarn, empty.Checks[0].Status)
}
