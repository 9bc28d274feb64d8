package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/zyra-incident-service/internal/adapter/kafka"
	"github.com/couchcryptid/zyra-incident-service/internal/adapter/ledger"
	"github.com/couchcryptid/zyra-incident-service/internal/adapter/localstore"
	"github.com/couchcryptid/zyra-incident-service/internal/config"
	"github.com/couchcryptid/zyra-incident-service/internal/observability"
	"github.com/couchcryptid/zyra-incident-service/internal/service"
)

// newMetrics registers collectors on the default registry served at /metrics.
var newMetrics = observability.NewMetrics

// app holds the wired collaborators shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	ledger    *ledger.Client
	publisher *kafkaadapter.Publisher
	svc       *service.Service
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  observability.NewLoggerTo(logOut, cfg),
		metrics: newMetrics(),
	}

	// Untyped nils keep the service in local-only or no-events mode.
	var (
		l service.Ledger
		p service.Publisher
	)
	if cfg.LedgerEnabled {
		runner := ledger.NewExecRunner(cfg.LedgerDfxPath, cfg.LedgerProjectDir, cfg.LedgerTimeout)
		a.ledger = ledger.NewClient(runner, cfg.LedgerCanisterID, cfg.LedgerNetwork, a.metrics, a.logger)
		l = a.ledger
		a.logger.Info("ledger enabled", "canister_id", cfg.LedgerCanisterID, "network", cfg.LedgerNetwork, "timeout", cfg.LedgerTimeout)
	} else {
		a.logger.Info("ledger disabled, incidents are stored locally", "path", cfg.LocalStorePath)
	}
	if cfg.KafkaEnabled {
		a.publisher = kafkaadapter.NewPublisher(cfg, a.logger)
		p = a.publisher
		a.logger.Info("incident events enabled", "topic", cfg.KafkaIncidentTopic)
	}

	store := localstore.New(cfg.LocalStorePath, a.logger)
	a.svc = service.New(l, store, p, a.logger, a.metrics)
	return a, nil
}

// Close flushes the event publisher.
func (a *app) Close() {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka publisher close error", "error", err)
	}
}

// Ping checks that the ledger answers and returns how many incidents it holds.
func (a *app) Ping(ctx context.Context) (int, error) {
	if a.ledger == nil {
		return 0, service.ErrLedgerDisabled
	}
	if err := a.ledger.Ping(ctx); err != nil {
		return 0, err
	}
	return a.ledger.Count(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
