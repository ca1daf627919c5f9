package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/erpbot/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("hidden")
	Info().Str("session_id", "s1").Msg("visible")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "visible", line["message"])
	assert.Equal(t, "s1", line["session_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, levelFor(&LoggerOpts{Environment: core.Production}))
	assert.Equal(t, zerolog.DebugLevel, levelFor(&LoggerOpts{Environment: core.Staging}))
	assert.Equal(t, zerolog.WarnLevel, levelFor(&LoggerOpts{Environment: core.Production, Level: " WARN "}))
	assert.Equal(t, zerolog.DebugLevel, levelFor(&LoggerOpts{Environment: core.Development, Level: "loud"}))
}
