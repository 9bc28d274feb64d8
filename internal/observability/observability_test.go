package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zyra-incident-service/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")

	logger.Info("dropped")
	logger.Warn("kept", "incident_id", "inc-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "inc-1", entry["incident_id"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text", "debug")
	logger.Debug("hello", "lga", "Ikeja")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "lga=Ikeja")
}

func TestNewLoggerTo_UsesConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &config.Config{LogFormat: "text", LogLevel: "error"})
	logger.Warn("dropped")
	logger.Error("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.ReportsTotal.WithLabelValues("ledger").Inc()
	assert.Equal(t, 1.0, counterValue(t, a.ReportsTotal.WithLabelValues("ledger")))
	assert.Equal(t, 0.0, counterValue(t, b.ReportsTotal.WithLabelValues("ledger")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
