// Package log configures go-zero's logx for command-line use.
package log

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

var (
	levels    = []string{"debug", "info", "error", "severe"}
	encodings = []string{"plain", "json"}
)

// Setup points logx at the console with the given level ("debug",
// "info", "error" or "severe") and encoding ("plain" or "json").
// Empty values select error and plain.
func Setup(level, encoding string) error {
	conf, err := Conf(level, encoding)
	if err != nil {
		return err
	}
	if err := logx.SetUp(conf); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logx.DisableStat()
	return nil
}

// Conf validates level and encoding and returns the console LogConf.
func Conf(level, encoding string) (logx.LogConf, error) {
	level, err := pick("log level", level, "error", levels)
	if err != nil {
		return logx.LogConf{}, err
	}
	encoding, err = pick("log encoding", encoding, "plain", encodings)
	if err != nil {
		return logx.LogConf{}, err
	}
	return logx.LogConf{
		Mode:     "console",
		Encoding: encoding,
		Level:    level,
	}, nil
}

func pick(what, v, fallback string, allowed []string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q (want one of %s)", what, v, strings.Join(allowed, ", "))
}
