package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "debug", false)
	logger.Debug().Str("op", "fetch").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "fetch", entry["op"])
	assert.Equal(t, "hello", entry["message"])
}

func TestSetupDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "not-a-level", false)
	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
