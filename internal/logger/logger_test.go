package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"upper case", "DEBUG", zerolog.DebugLevel},
		{"invalid level", "loud", zerolog.InfoLevel},
		{"default level", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetForTesting()
			t.Cleanup(ResetForTesting)

			var buf bytes.Buffer
			Setup(Config{Level: tt.level, Format: FormatJSON, Output: &buf})

			log := Get()
			require.NotNil(t, log)
			assert.Equal(t, tt.expected, log.GetLevel())
		})
	}
}

func TestSetupOnlyOnce(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)

	var first, second bytes.Buffer
	Setup(Config{Level: "info", Format: FormatJSON, Output: &first})
	Setup(Config{Level: "debug", Format: FormatJSON, Output: &second})

	Get().Info("hello")
	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String())

	ForceSetup(Config{Level: "debug", Format: FormatJSON, Output: &second})
	Get().Info("again")
	assert.Contains(t, second.String(), "again")
	assert.Equal(t, zerolog.DebugLevel, Get().GetLevel())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseLogFormat("json"))
	assert.Equal(t, FormatJSON, ParseLogFormat(" JSON "))
	assert.Equal(t, FormatConsole, ParseLogFormat("console"))
	assert.Equal(t, FormatConsole, ParseLogFormat(""))
	assert.Equal(t, FormatConsole, ParseLogFormat("xml"))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestLogMethodsWriteFields(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel), level: zerolog.DebugLevel}

	log.Debug("debug message", map[string]interface{}{"item_id": "li_1"})
	log.Info("info message")
	log.Warn("warn message", map[string]interface{}{"count": 3})
	log.Error("error message", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "debug message", entry["message"])
	assert.Equal(t, "li_1", entry["item_id"])

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := &Logger{Logger: zerolog.New(&buf).Level(zerolog.WarnLevel), level: zerolog.WarnLevel}

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{Logger: zerolog.New(&buf), level: zerolog.InfoLevel}

	assert.Same(t, base, base.WithFields(nil))
	assert.Same(t, base, base.With(map[string]interface{}{}))

	child := base.With(map[string]interface{}{"component": "catalog"})
	require.NotSame(t, base, child)
	assert.Equal(t, base.GetLevel(), child.GetLevel())

	child.Info("built")
	assert.Contains(t, buf.String(), `"component":"catalog"`)
}

func TestNilLoggerIsSafe(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	Setup(Config{Output: &bytes.Buffer{}})

	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.Debug("nothing")
		l.Warn("nothing")
		l.Error("nothing")
		l.Infof("%d", 1)
	})
	assert.Equal(t, zerolog.NoLevel, l.GetLevel())
	assert.NotNil(t, l.With(map[string]interface{}{"a": 1}))
}

func TestContext(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	Setup(Config{Output: &bytes.Buffer{}})

	custom := Get().With(map[string]interface{}{"command": "sync"})

	ctx := NewContext(context.Background(), custom)
	assert.Same(t, custom, FromContext(ctx))

	assert.Same(t, Get(), FromContext(context.Background()))
	assert.Equal(t, context.Background(), NewContext(context.Background(), nil))
}

func TestSetupBindsZerologGlobalLogger(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)

	var buf bytes.Buffer
	ForceSetup(Config{Level: "warn", Format: FormatJSON, Output: &buf})

	zlog.Debug().Msg("hidden debug")
	zlog.Info().Msg("hidden info")
	zlog.Warn().Msg("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warning")
}
