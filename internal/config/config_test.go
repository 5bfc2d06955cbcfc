package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"

	"github.com/joeblew999/plat-mailfix/pkg/pipeline"
)

const sample = `
Name: mailfix-mcp
Port: 8081
API:
  Name: mailfix-api
  Port: 8082
Pipeline:
  Checklist: themed
  TitleText: Weekly digest
Limits:
  RateLimit: 10
`

func TestLoadDefaults(t *testing.T) {
	var c Config
	require.NoError(t, conf.LoadFromYamlBytes([]byte(sample), &c))

	assert.Equal(t, 8082, c.API.Port)
	assert.Equal(t, "{{HEADER}}", c.Pipeline.HeaderToken)
	assert.Equal(t, "email-theme", c.Pipeline.ThemeWrapperClass)
	assert.Equal(t, 1048576, c.Limits.MaxBytes)

	sc := c.ServiceConfig()
	assert.Equal(t, 10, sc.RateLimit)
	assert.Equal(t, pipeline.ChecklistThemed, sc.Defaults.Checklist)
	assert.True(t, sc.Defaults.Themed())
	assert.Equal(t, "Weekly digest", sc.Defaults.TitleText)
	assert.Equal(t, "#ffffff", sc.Defaults.ThemeColor)
}

func TestLoadRejectsUnknownChecklist(t *testing.T) {
	var c Config
	err := conf.LoadFromYamlBytes([]byte(`
Name: mailfix-mcp
Port: 8081
Pipeline:
  Checklist: fancy
`), &c)
	assert.Error(t, err)
}
