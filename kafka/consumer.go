package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/eapache/go-resiliency/retrier"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

var (
	errNoEventType    = errors.New("message without event_type header")
	errNoHandler      = errors.New("no handler registered")
	errMalformedEvent = errors.New("malformed event")
)

// Redelivery defaults: a transiently failing message is retried in place
// before the claim is given up unmarked
const (
	defaultRedeliveries    = 5
	defaultRedeliveryDelay = 200 * time.Millisecond
	maxRedeliveryDelay     = 5 * time.Second
)

// Consumer wraps Kafka consumer
type Consumer struct {
	consumer      sarama.ConsumerGroup
	brokers       []string
	groupID       string
	topics        []string
	handlers      map[string]EventHandler
	handlersMutex sync.RWMutex

	redeliveries    int
	redeliveryDelay time.Duration
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event ProductPurchasedEvent) error

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, groupID string, topics []string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Strs("topics", topics).
		Msg("Kafka consumer initialized")

	c := newConsumer(topics)
	c.consumer = consumer
	c.brokers = brokers
	c.groupID = groupID
	return c, nil
}

func newConsumer(topics []string) *Consumer {
	return &Consumer{
		topics:          topics,
		handlers:        make(map[string]EventHandler),
		redeliveries:    defaultRedeliveries,
		redeliveryDelay: defaultRedeliveryDelay,
	}
}

// RegisterHandler registers an event handler for a specific event type
func (c *Consumer) RegisterHandler(eventType string, handler EventHandler) {
	c.handlersMutex.Lock()
	defer c.handlersMutex.Unlock()
	c.handlers[eventType] = handler
	logger.Logger.Info().
		Str("event_type", eventType).
		Msg("Event handler registered")
}

// Run consumes messages until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	handler := &consumerGroupHandler{consumer: c}

	go func() {
		for err := range c.consumer.Errors() {
			logger.Logger.Error().
				Err(err).
				Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")

	for {
		if err := c.consumer.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			logger.Logger.Error().
				Err(err).
				Msg("Error from consumer")
		}
		if ctx.Err() != nil {
			logger.Logger.Info().Msg("Consumer context cancelled, stopping...")
			return nil
		}
	}
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.consumer != nil {
		return c.consumer.Close()
	}
	return nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message once it was handled or rejected for good. A
// message that keeps failing transiently ends the claim unmarked, so the
// group resumes from it on the next session.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.consumer.deliver(session.Context(), message); err != nil {
			return err
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// settled reports whether err is final for the message: redelivering it
// would fail the same way
func settled(err error) bool {
	if err == nil ||
		errors.Is(err, errNoEventType) ||
		errors.Is(err, errNoHandler) ||
		errors.Is(err, errMalformedEvent) {
		return true
	}
	switch domain.KindOf(err) {
	case domain.ErrValidation, domain.ErrInsufficientStock, domain.ErrNotFound, domain.ErrInvalidMovementType:
		return true
	}
	return false
}

type redeliveryClassifier struct{}

func (redeliveryClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case settled(err):
		return retrier.Fail
	default:
		return retrier.Retry
	}
}

// deliver handles message, retrying transient failures. It returns nil when
// the message may be marked.
func (c *Consumer) deliver(ctx context.Context, message *sarama.ConsumerMessage) error {
	rt := retrier.New(
		retrier.LimitedExponentialBackoff(c.redeliveries, c.redeliveryDelay, maxRedeliveryDelay),
		redeliveryClassifier{},
	)
	err := rt.RunCtx(ctx, func(ctx context.Context) error {
		return c.handleMessage(ctx, message)
	})
	if settled(err) {
		return nil
	}
	logger.Error(ctx).
		Err(err).
		Str("topic", message.Topic).
		Int32("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Message left unmarked for redelivery")
	return fmt.Errorf("message %s/%d/%d not handled: %w", message.Topic, message.Partition, message.Offset, err)
}

func (c *Consumer) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	// Extract trace context from Kafka headers
	carrier := propagation.MapCarrier{}
	eventType := ""
	eventID := ""
	for _, header := range message.Headers {
		switch key := string(header.Key); key {
		case "traceparent", "tracestate":
			carrier[key] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume."+message.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.String("messaging.source_kind", "topic"),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
		),
	)
	defer span.End()

	logger.Debug(ctx).
		Str("topic", message.Topic).
		Int32("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Received message")

	if eventType == "" {
		span.SetStatus(codes.Error, "Message without event_type header")
		logger.Warn(ctx).Msg("Message without event_type header")
		return errNoEventType
	}

	span.SetAttributes(
		attribute.String("event.type", eventType),
		attribute.String("event.id", eventID),
	)

	c.handlersMutex.RLock()
	handler, exists := c.handlers[eventType]
	c.handlersMutex.RUnlock()

	if !exists {
		span.SetStatus(codes.Error, "No handler registered")
		logger.Warn(ctx).
			Str("event_type", eventType).
			Msg("No handler registered for event type")
		return errNoHandler
	}

	var event ProductPurchasedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal event")
		logger.Error(ctx).
			Err(err).
			Str("event_type", eventType).
			Msg("Failed to unmarshal event")
		return fmt.Errorf("failed to unmarshal event: %w: %w", errMalformedEvent, err)
	}
	if event.EventID == "" {
		event.EventID = eventID
	}

	span.SetAttributes(
		attribute.String("item.id", event.ItemID),
		attribute.Int64("item.quantity", event.Quantity),
	)

	if err := handler(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to handle event")
		logger.Error(ctx).
			Err(err).
			Str("event_type", eventType).
			Str("event_id", event.EventID).
			Msg("Failed to handle event")
		return err
	}

	span.SetStatus(codes.Ok, "Event handled successfully")
	logger.Info(ctx).
		Str("event_type", eventType).
		Str("event_id", event.EventID).
		Str("item_id", event.ItemID).
		Int64("quantity", event.Quantity).
		Msg("Event handled successfully")
	return nil
}
