package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/zyra-incident-service/internal/codec"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	"github.com/couchcryptid/zyra-incident-service/internal/observability"
)

// Client calls the incident canister through a Runner.
type Client struct {
	runner     Runner
	canisterID string
	network    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a ledger client for the given canister and network.
func NewClient(runner Runner, canisterID, network string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		runner:     runner,
		canisterID: canisterID,
		network:    network,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateIncident writes a completed incident and returns the id the canister assigned.
func (c *Client) CreateIncident(ctx context.Context, inc domain.Incident) (string, error) {
	out, err := c.call(ctx, "create_incident", true, codec.Args(codec.Encode(inc)))
	if err != nil {
		return "", err
	}
	id, err := codec.DecodeText(out)
	if err != nil {
		c.metrics.DecodeFailures.Inc()
		return "", fmt.Errorf("decode create_incident response: %w", err)
	}
	return id, nil
}

// GetIncident fetches one incident. A missing incident yields codec.ErrNotFound.
func (c *Client) GetIncident(ctx context.Context, id string) (domain.Incident, error) {
	out, err := c.call(ctx, "get_incident", false, codec.Args(codec.Quote(id)))
	if err != nil {
		return domain.Incident{}, err
	}
	inc, err := codec.Decode(out)
	if err != nil {
		c.countDecodeFailure(err)
		return domain.Incident{}, fmt.Errorf("decode get_incident response: %w", err)
	}
	return inc, nil
}

// ListIncidentsByLga returns the incidents the canister holds for an area.
func (c *Client) ListIncidentsByLga(ctx context.Context, lga string) ([]domain.Incident, error) {
	return c.list(ctx, "list_incidents_by_lga", codec.Args(codec.Quote(lga)))
}

// ListAll returns every incident.
func (c *Client) ListAll(ctx context.Context) ([]domain.Incident, error) {
	return c.list(ctx, "get_all_incidents", "()")
}

// ListByStatus returns incidents in the given status.
func (c *Client) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Incident, error) {
	return c.list(ctx, "get_incidents_by_status", codec.Args(codec.Quote(string(status))))
}

// ListHighSeverity returns incidents at or above the high severity threshold.
func (c *Client) ListHighSeverity(ctx context.Context) ([]domain.Incident, error) {
	return c.list(ctx, "get_high_severity_incidents", "()")
}

// Count returns the number of stored incidents.
func (c *Client) Count(ctx context.Context) (int, error) {
	out, err := c.call(ctx, "get_incident_count", false, "()")
	if err != nil {
		return 0, err
	}
	n, err := codec.DecodeNat(out)
	if err != nil {
		c.metrics.DecodeFailures.Inc()
		return 0, fmt.Errorf("decode get_incident_count response: %w", err)
	}
	return n, nil
}

// AddRecommendation appends a recommendation to a stored incident.
func (c *Client) AddRecommendation(ctx context.Context, id string, rec domain.Recommendation) error {
	_, err := c.call(ctx, "add_recommendation", true, codec.Args(codec.Quote(id), codec.EncodeRecommendation(rec)))
	return err
}

// SetStatus records a status change on a stored incident.
func (c *Client) SetStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := c.call(ctx, "set_status", true, codec.Args(codec.Quote(id), codec.Quote(string(status))))
	return err
}

// RaiseResourceRequest flags a stored incident as needing aid.
func (c *Client) RaiseResourceRequest(ctx context.Context, id string, t domain.ResourceType, notes string) error {
	_, err := c.call(ctx, "raise_resource_request", true, codec.Args(codec.Quote(id), codec.Quote(string(t)), codec.Quote(notes)))
	return err
}

// Ping checks that the replica answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "ping", "--network", c.network)
	return err
}

func (c *Client) list(ctx context.Context, method, arg string) ([]domain.Incident, error) {
	out, err := c.call(ctx, method, false, arg)
	if err != nil {
		return nil, err
	}
	incs, err := codec.DecodeList(out)
	if err != nil {
		c.countDecodeFailure(err)
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	return incs, nil
}

func (c *Client) call(ctx context.Context, method string, update bool, arg string) (string, error) {
	if c.canisterID == "" {
		return "", fmt.Errorf("%w: no canister id configured", ErrUnavailable)
	}

	args := []string{"canister", "call"}
	if update {
		args = append(args, "--update")
	}
	args = append(args, "--network", c.network, c.canisterID, method, arg)

	start := time.Now()
	out, err := c.runner.Run(ctx, args...)
	c.metrics.LedgerCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.LedgerCalls.WithLabelValues(method, "error").Inc()
		c.logger.Warn("ledger call failed", "method", method, "error", err)
		return "", err
	}
	c.metrics.LedgerCalls.WithLabelValues(method, "success").Inc()
	c.logger.Debug("ledger call", "method", method, "bytes", len(out))
	return out, nil
}

func (c *Client) countDecodeFailure(err error) {
	if !errors.Is(err, codec.ErrNotFound) {
		c.metrics.DecodeFailures.Inc()
	}
}
