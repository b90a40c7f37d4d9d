package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/platform/metrics"
)

// DefaultTopic receives order lifecycle events.
const DefaultTopic = "orders.events"

// EventTypeOrderCreated is set on events emitted after a successful insert.
const EventTypeOrderCreated = "OrderCreated"

var _ ports.EventPublisher = (*Publisher)(nil)

// OrderEvent is the JSON payload written to the topic.
type OrderEvent struct {
	EventType  string          `json:"eventType"`
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Version    int64           `json:"version"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	Lines      []EventLine     `json:"lines"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// EventLine is one order line inside an OrderEvent.
type EventLine struct {
	ArticleID string          `json:"articleId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int32           `json:"quantity"`
}

// Publisher writes order events to Kafka through a synchronous producer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.OrdersMetrics
	now      func() time.Time
	timeout  time.Duration
}

// DefaultPublishTimeout bounds a publish when the caller's ctx has no deadline.
const DefaultPublishTimeout = time.Second

// Option configures the publisher.
type Option func(*Publisher)

func WithTopic(topic string) Option {
	return func(p *Publisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.OrdersMetrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithPublishTimeout bounds each publish. Non-positive values keep the default.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewProducer dials the brokers with acks from all in-sync replicas and idempotent writes.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// NewPublisher wraps an existing producer. The caller owns its lifecycle unless Close is used.
func NewPublisher(producer sarama.SyncProducer, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    DefaultTopic,
		logger:   slog.Default().With(slog.String("component", "kafka-publisher")),
		now:      time.Now,
		timeout:  DefaultPublishTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

// PublishOrderCreated sends an OrderCreated event keyed by order ID. It stops
// waiting at the earlier of ctx's deadline and the publish timeout; the send
// itself keeps running in the producer and its outcome is still counted.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := json.Marshal(newOrderEvent(order, p.now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := order.ID.String()
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: p.now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(EventTypeOrderCreated)},
		},
	}

	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		p.metrics.RecordEventPublished(err == nil)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to send message: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("failed to send message: %w", res.err)
		}
		p.logger.LogAttrs(ctx, slog.LevelDebug, "order event sent to kafka",
			slog.String("topic", p.topic),
			slog.String("key", key),
			slog.Int("partition", int(res.partition)),
			slog.Int64("offset", res.offset))
		return nil
	}
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

func newOrderEvent(order domain.Order, at time.Time) OrderEvent {
	event := OrderEvent{
		EventType:  EventTypeOrderCreated,
		OrderID:    order.ID.String(),
		CustomerID: order.CustomerID.String(),
		Version:    order.Version,
		Date:       order.Date.Format(time.DateOnly),
		Total:      order.Total(),
		Lines:      make([]EventLine, 0, len(order.Lines)),
		OccurredAt: at,
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, EventLine{
			ArticleID: line.ArticleID.String(),
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return event
}
