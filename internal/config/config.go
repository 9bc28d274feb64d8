package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Ledger canister invoked through the dfx CLI.
	LedgerEnabled    bool
	LedgerDfxPath    string
	LedgerCanisterID string
	LedgerNetwork    string
	LedgerProjectDir string
	LedgerTimeout    time.Duration

	LocalStorePath string
	SeedPath       string

	// Incident event publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaIncidentTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	ledgerTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("LEDGER_TIMEOUT", "30s"))
	if err != nil || ledgerTimeout <= 0 {
		return nil, errors.New("invalid LEDGER_TIMEOUT")
	}

	ledgerEnabled := true
	if v := os.Getenv("LEDGER_ENABLED"); v != "" {
		ledgerEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_BROKERS") != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LedgerEnabled:    ledgerEnabled,
		LedgerDfxPath:    sharedcfg.EnvOrDefault("LEDGER_DFX_PATH", "dfx"),
		LedgerCanisterID: sharedcfg.EnvOrDefault("LEDGER_CANISTER_ID", "uxrrr-q7777-77774-qaaaq-cai"),
		LedgerNetwork:    sharedcfg.EnvOrDefault("LEDGER_NETWORK", "local"),
		LedgerProjectDir: sharedcfg.EnvOrDefault("LEDGER_PROJECT_DIR", "icp"),
		LedgerTimeout:    ledgerTimeout,

		LocalStorePath: sharedcfg.EnvOrDefault("LOCAL_STORE_PATH", "data/incidents.json"),
		SeedPath:       sharedcfg.EnvOrDefault("SEED_PATH", "data/seed_incidents.json"),

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaIncidentTopic: sharedcfg.EnvOrDefault("KAFKA_INCIDENT_TOPIC", "agri-incidents"),
	}

	if cfg.LedgerEnabled && cfg.LedgerCanisterID == "" {
		return nil, errors.New("LEDGER_ENABLED is true but LEDGER_CANISTER_ID is empty")
	}
	if cfg.LedgerEnabled && cfg.LedgerDfxPath == "" {
		return nil, errors.New("LEDGER_DFX_PATH is required when the ledger is enabled")
	}
	if cfg.LocalStorePath == "" {
		return nil, errors.New("LOCAL_STORE_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaIncidentTopic == "" {
		return nil, errors.New("KAFKA_INCIDENT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}
