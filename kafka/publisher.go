package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Publisher wraps Kafka producer. Messages are keyed by item id so every
// event of one item lands on one partition, in order.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer, brokers), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, brokers []string) *Publisher {
	return &Publisher{producer: producer, brokers: brokers}
}

// PublishMovement implements command.MovementPublisher
func (p *Publisher) PublishMovement(ctx context.Context, eventType string, m domain.MovementRecord) error {
	event := MovementEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Movement:  m,
		Timestamp: time.Now().UTC(),
	}
	return p.send(ctx, TopicMovements, eventType, event.EventID, m.ItemID, event,
		attribute.String("movement.id", m.ID),
		attribute.String("movement.type", string(m.Type)),
	)
}

// Notify implements domain.NotificationSink
func (p *Publisher) Notify(ctx context.Context, n domain.LowStockNotification) error {
	event := LowStockEvent{
		EventID:      n.ID,
		EventType:    EventTypeLowStock,
		Notification: n,
		Timestamp:    time.Now().UTC(),
	}
	return p.send(ctx, TopicLowStock, EventTypeLowStock, event.EventID, n.ID, event,
		attribute.Int("low_stock.items", len(n.Items)),
	)
}

// RelayChange implements feed.Relay
func (p *Publisher) RelayChange(ctx context.Context, c domain.Change) error {
	return p.send(ctx, TopicChanges, EventTypeChange, uuid.NewString(), c.ItemID, c,
		attribute.String("change.kind", string(c.Kind)),
		attribute.String("change.op", string(c.Op)),
	)
}

func (p *Publisher) send(ctx context.Context, topic, eventType, eventID, key string, payload any, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Debug(ctx).
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
