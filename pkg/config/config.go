// Package config reads the environment fallbacks shared by the CLI and
// the test-send path.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GetDataPath returns the data directory path.
// It checks for MAILFIX_DATA_PATH, otherwise uses .data under the working directory.
func GetDataPath() string {
	if path := os.Getenv("MAILFIX_DATA_PATH"); path != "" {
		return path
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Join(cwd, ".data")
}

// GetOutDir returns where repaired templates are written.
// It checks for MAILFIX_OUT_DIR, otherwise uses the repaired directory under the data path.
func GetOutDir() string {
	if path := os.Getenv("MAILFIX_OUT_DIR"); path != "" {
		return path
	}

	return filepath.Join(GetDataPath(), "repaired")
}

// GetChecklist returns the default checklist name, "standard" when unset.
func GetChecklist() string {
	if v := strings.TrimSpace(os.Getenv("MAILFIX_CHECKLIST")); v != "" {
		return strings.ToLower(v)
	}
	return "standard"
}

// GetLogLevel returns the CLI log level, "error" when unset so that
// reports stay readable.
func GetLogLevel() string {
	if v := strings.TrimSpace(os.Getenv("MAILFIX_LOG_LEVEL")); v != "" {
		return strings.ToLower(v)
	}
	return "error"
}

// SMTP holds the SMTP_* settings.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// GetSMTP reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD,
// SMTP_FROM and SMTP_FROM_NAME. The port defaults to 587 and the sender
// address to the username.
func GetSMTP() SMTP {
	s := SMTP{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		FromName: os.Getenv("SMTP_FROM_NAME"),
	}
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		s.Port = p
	}
	if s.From == "" {
		s.From = s.Username
	}
	if s.FromName == "" {
		s.FromName = "Mailfix Test"
	}
	return s
}
