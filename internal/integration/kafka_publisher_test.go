//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/zyra-incident-service/internal/adapter/kafka"
	"github.com/couchcryptid/zyra-incident-service/internal/adapter/localstore"
	"github.com/couchcryptid/zyra-incident-service/internal/config"
	"github.com/couchcryptid/zyra-incident-service/internal/domain"
	"github.com/couchcryptid/zyra-incident-service/internal/observability"
	"github.com/couchcryptid/zyra-incident-service/internal/service"
)

const testIncidentTopic = "test-agri-incidents"

// publishedMessage holds a deserialized message read from the incident topic.
type publishedMessage struct {
	Incident domain.Incident
	Key      string
	Headers  map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("zyra-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testIncidentTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// readPublished reads a single message from the incident topic and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from incident topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var inc domain.Incident
	require.NoError(t, json.Unmarshal(msg.Value, &inc), "unmarshal incident message")

	return publishedMessage{Incident: inc, Key: string(msg.Key), Headers: headers}
}

// TestPublisher_RoundTrip publishes an incident event and reads it back from Kafka.
func TestPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testIncidentTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaIncidentTopic: testIncidentTopic}
	pub := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	geo, err := domain.NewGeo(6.6, 3.35)
	require.NoError(t, err)
	inc := domain.Process(domain.Report{
		FarmerID: "F-1001", LGA: "Ikeja", State: "Lagos", Geo: geo,
		Crop: domain.CropMaize, Category: domain.CategoryPest,
		Description: "severe armyworm on young plants",
	})
	inc.IncidentID = "inc-000001"

	require.NoError(t, pub.Publish(ctx, domain.IncidentEvent{Incident: inc, LedgerWritten: true, CorrelationID: "corr-1"}))

	got := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "inc-000001", got.Key)
	assert.Equal(t, "pest", got.Headers[kafka.HeaderCategory])
	assert.Equal(t, strconv.Itoa(inc.Enriched.SeverityScore), got.Headers[kafka.HeaderSeverity])
	assert.Equal(t, "true", got.Headers[kafka.HeaderLedgerWritten])
	assert.Equal(t, "corr-1", got.Headers[kafka.HeaderCorrelationID])
	assert.Equal(t, inc.Recommendations[0].Step, got.Incident.Recommendations[0].Step)
}

// TestService_ReportPublishesLocallyQueuedIncident runs a report through the
// service with the ledger disabled and checks the event Kafka receives.
func TestService_ReportPublishesLocallyQueuedIncident(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testIncidentTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaIncidentTopic: testIncidentTopic}
	pub := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	store := localstore.New(filepath.Join(t.TempDir(), "incidents.json"), discardLogger())
	svc := service.New(nil, store, pub, discardLogger(), observability.NewMetricsForTesting())

	sub, err := svc.Report(ctx, domain.RawReport{
		FarmerID: "F-2002", LGA: "Kano Municipal", State: "Kano", Lat: 12.0, Lon: 8.5,
		Crop: "sorghum", Category: "drought", Description: "dry spell, critical wilting",
	})
	require.NoError(t, err)
	require.False(t, sub.LedgerWritten)

	got := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, sub.Incident.IncidentID, got.Key)
	assert.Equal(t, "false", got.Headers[kafka.HeaderLedgerWritten])
	assert.Equal(t, sub.CorrelationID, got.Headers[kafka.HeaderCorrelationID])
	assert.Equal(t, domain.AuditQueuedLocally, got.Incident.Audit[len(got.Incident.Audit)-1].Event)
}
