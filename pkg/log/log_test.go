package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConf(t *testing.T) {
	c, err := Conf("", "")
	require.NoError(t, err)
	assert.Equal(t, "console", c.Mode)
	assert.Equal(t, "error", c.Level)
	assert.Equal(t, "plain", c.Encoding)

	c, err = Conf(" DEBUG", "json")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Level)
	assert.Equal(t, "json", c.Encoding)

	_, err = Conf("verbose", "")
	assert.ErrorContains(t, err, "unknown log level")
	_, err = Conf("info", "xml")
	assert.ErrorContains(t, err, "unknown log encoding")
}
