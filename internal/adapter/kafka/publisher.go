package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/zyra-incident-service/internal/config"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys set on every incident message.
const (
	HeaderCategory      = "category"
	HeaderSeverity      = "severity"
	HeaderLedgerWritten = "ledger_written"
	HeaderCorrelationID = "correlation_id"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces incident events to a Kafka topic.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured incident topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaIncidentTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one incident event. Messages are keyed by incident id so
// events for the same incident land on the same partition.
func (p *Publisher) Publish(ctx context.Context, ev domain.IncidentEvent) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish incident %s: %w", ev.Incident.IncidentID, err)
	}
	p.logger.Debug("incident published", "incident_id", ev.Incident.IncidentID, "correlation_id", ev.CorrelationID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an incident event into a Kafka message.
func serializeToMessage(ev domain.IncidentEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev.Incident)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.Incident.IncidentID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderCategory, Value: []byte(ev.Incident.Category)},
			{Key: HeaderSeverity, Value: []byte(strconv.Itoa(ev.Incident.Enriched.SeverityScore))},
			{Key: HeaderLedgerWritten, Value: []byte(strconv.FormatBool(ev.LedgerWritten))},
			{Key: HeaderCorrelationID, Value: []byte(ev.CorrelationID)},
		},
	}, nil
}
