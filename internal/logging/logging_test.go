package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/videotube-server/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "PROD", "warn")

	logger.Info().Msg("dropped")
	logger.Warn().Str("user_id", "u1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "u1", entry["user_id"])
	require.Equal(t, "warn", entry["level"])
}

func TestSetupWriterUnknownLevelDefaultsToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "PROD", "chatty")
	logger.Debug().Msg("dropped")
	require.Zero(t, buf.Len())
	logger.Info().Msg("kept")
	require.NotZero(t, buf.Len())
}
