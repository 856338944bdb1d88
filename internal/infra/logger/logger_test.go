package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithWriter("debug", "json", &buf))
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := For("queue")
	l.Info().Int("due", 3).Msg("pass complete")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "queue", line["component"])
	require.Equal(t, "pass complete", line["message"])
	require.EqualValues(t, 3, line["due"])
}

func TestInitRejectsBadInput(t *testing.T) {
	require.Error(t, InitWithWriter("loud", "json", &bytes.Buffer{}))
	require.Error(t, InitWithWriter("info", "xml", &bytes.Buffer{}))
}
