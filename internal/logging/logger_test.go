package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		vars      map[string]string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default is info", wantInfo: true},
		{name: "debug flag", debug: true, wantDebug: true, wantInfo: true},
		{name: "env overrides flag", debug: true, vars: map[string]string{"CATAPULT_LOG_LEVEL": "warn"}},
		{name: "env debug", vars: map[string]string{"CATAPULT_LOG_LEVEL": "DEBUG"}, wantDebug: true, wantInfo: true},
		{name: "unknown env keeps default", vars: map[string]string{"CATAPULT_LOG_LEVEL": "loud"}, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(&config.RuntimeConfig{Debug: tt.debug}, &buf, env(tt.vars))

			assert.Equal(t, tt.wantDebug, log.Enabled(t.Context(), slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, log.Enabled(t.Context(), slog.LevelInfo))
			assert.True(t, log.Enabled(t.Context(), slog.LevelError))
		})
	}
}

func TestNewLoggerDropsTime(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(nil, &buf, env(nil))
	log.Info("node started", "component", "AnvilManager")

	out := buf.String()
	assert.NotContains(t, out, "time=")
	assert.Contains(t, out, `msg="node started"`)
	assert.Contains(t, out, "component=AnvilManager")
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(nil, &buf, env(map[string]string{"CATAPULT_LOG_FORMAT": "json"}))
	log.Warn("fallback account pool", "accounts", 10)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "fallback account pool", line["msg"])
	assert.EqualValues(t, 10, line["accounts"])
	assert.NotContains(t, line, "time")
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/executor.go", shortPath("/home/dev/src/catapult/internal/usecase/executor.go"))
	assert.Equal(t, "usecase/executor.go", shortPath("/tmp/build/usecase/executor.go"))
}
