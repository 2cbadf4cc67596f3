package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { Init() })

	log.Debug().Msg("hidden")
	log.Info().Str("session_id", "s1").Msg("turn handled")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Contains(t, entry, "caller")

	buf.Reset()
	InitWriter(&buf, Config{Debug: true})
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
