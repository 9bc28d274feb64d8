package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.True(t, cfg.LedgerEnabled)
	assert.Equal(t, "dfx", cfg.LedgerDfxPath)
	assert.Equal(t, "uxrrr-q7777-77774-qaaaq-cai", cfg.LedgerCanisterID)
	assert.Equal(t, "local", cfg.LedgerNetwork)
	assert.Equal(t, "icp", cfg.LedgerProjectDir)
	assert.Equal(t, 30*time.Second, cfg.LedgerTimeout)

	assert.Equal(t, "data/incidents.json", cfg.LocalStorePath)
	assert.Equal(t, "data/seed_incidents.json", cfg.SeedPath)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "agri-incidents", cfg.KafkaIncidentTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("LEDGER_DFX_PATH", "/opt/dfx/bin/dfx")
	t.Setenv("LEDGER_CANISTER_ID", "rrkah-fqaaa-aaaaa-aaaaq-cai")
	t.Setenv("LEDGER_NETWORK", "ic")
	t.Setenv("LEDGER_PROJECT_DIR", "/srv/icp")
	t.Setenv("LEDGER_TIMEOUT", "5s")
	t.Setenv("LOCAL_STORE_PATH", "/var/lib/zyra/incidents.json")
	t.Setenv("SEED_PATH", "seed.yaml")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_INCIDENT_TOPIC", "incidents")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/opt/dfx/bin/dfx", cfg.LedgerDfxPath)
	assert.Equal(t, "rrkah-fqaaa-aaaaa-aaaaq-cai", cfg.LedgerCanisterID)
	assert.Equal(t, "ic", cfg.LedgerNetwork)
	assert.Equal(t, "/srv/icp", cfg.LedgerProjectDir)
	assert.Equal(t, 5*time.Second, cfg.LedgerTimeout)
	assert.Equal(t, "/var/lib/zyra/incidents.json", cfg.LocalStorePath)
	assert.Equal(t, "seed.yaml", cfg.SeedPath)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "incidents", cfg.KafkaIncidentTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidLedgerTimeout(t *testing.T) {
	for _, v := range []string{"bad", "0s", "-5s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("LEDGER_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "LEDGER_TIMEOUT")
		})
	}
}

func TestLoad_LedgerDisabled(t *testing.T) {
	t.Setenv("LEDGER_ENABLED", "false")
	t.Setenv("LEDGER_CANISTER_ID", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LedgerEnabled)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithDefaultBroker(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
}
