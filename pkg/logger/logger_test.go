package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Caisse-api/pkg/logger"
)

func TestFromWriter_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "warn")

	log.Info().Msg("ignorado")
	assert.Zero(t, buf.Len())

	log.Component("sales").Warn().Str("session_id", "s1").Msg("varianza")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sales", line["component"])
	assert.Equal(t, "s1", line["session_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("x") })
}

func TestFromWriter_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "ruidoso")

	log.Debug().Msg("ignorado")
	assert.Zero(t, buf.Len())
	log.Info().Msg("visible")
	assert.NotZero(t, buf.Len())
}
