package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[LogLevel]zerolog.Level{
		DebugLevel: zerolog.DebugLevel,
		WarnLevel:  zerolog.WarnLevel,
		ErrorLevel: zerolog.ErrorLevel,
		"verbose":  zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), string(in))
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf, Service: "npresec"})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	Info().Msg("dropped")
	httpLog := WithComponent("http")
	httpLog.Warn().Str("path", "/admin").Msg("slow request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "npresec", entry["service"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slow request", entry["message"])
}
