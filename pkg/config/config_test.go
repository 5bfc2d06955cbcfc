package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	t.Setenv("MAILFIX_DATA_PATH", "/tmp/mailfix")
	t.Setenv("MAILFIX_OUT_DIR", "")
	assert.Equal(t, "/tmp/mailfix", GetDataPath())
	assert.Equal(t, filepath.Join("/tmp/mailfix", "repaired"), GetOutDir())

	t.Setenv("MAILFIX_OUT_DIR", "/srv/out")
	assert.Equal(t, "/srv/out", GetOutDir())
}

func TestDefaults(t *testing.T) {
	t.Setenv("MAILFIX_CHECKLIST", "")
	t.Setenv("MAILFIX_LOG_LEVEL", "")
	assert.Equal(t, "standard", GetChecklist())
	assert.Equal(t, "error", GetLogLevel())

	t.Setenv("MAILFIX_CHECKLIST", " Themed ")
	t.Setenv("MAILFIX_LOG_LEVEL", "DEBUG")
	assert.Equal(t, "themed", GetChecklist())
	assert.Equal(t, "debug", GetLogLevel())
}

func TestGetSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("SMTP_USERNAME", "qa@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_FROM_NAME", "")

	s := GetSMTP()
	assert.Equal(t, "smtp.example.com", s.Host)
	assert.Equal(t, 587, s.Port)
	assert.Equal(t, "qa@example.com", s.From)
	assert.Equal(t, "Mailfix Test", s.FromName)

	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	s = GetSMTP()
	assert.Equal(t, 2525, s.Port)
	assert.Equal(t, "noreply@example.com", s.From)
}
