package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/bpc-market/storefront-service/internal/config"
	"github.com/bpc-market/storefront-service/internal/logging"
	"github.com/bpc-market/storefront-service/internal/middleware"
	"github.com/bpc-market/storefront-service/internal/models"
)

// EventType represents the type of storefront event.
type EventType string

const (
	EventTypeQuoteRequested EventType = "quote.requested"
)

// QuoteEvent is the envelope written to the quotes topic.
type QuoteEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	QuoteID       string            `json:"quote_id"`
	SessionID     string            `json:"session_id"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// Publisher is what the quote service needs from an event sink.
type Publisher interface {
	PublishQuoteRequested(ctx context.Context, quote *models.Quote) error
	Close() error
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*NoopPublisher)(nil)
	_ Publisher = (*MockEventPublisher)(nil)
)

// KafkaPublisher publishes quote events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *logging.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.QuotesTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.QuotesTopic,
		logger: logger.Named("events"),
	}
}

// PublishQuoteRequested publishes the full quote snapshot.
func (p *KafkaPublisher) PublishQuoteRequested(ctx context.Context, quote *models.Quote) error {
	p.logger.Debug("Publishing quote requested event", logging.Fields{
		"quote_id": quote.ID,
	})

	event, err := NewQuoteEvent(ctx, EventTypeQuoteRequested, quote)
	if err != nil {
		return err
	}
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, event *QuoteEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.QuoteID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"quote_id":   event.QuoteID,
			"topic":      p.topic,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"quote_id":   event.QuoteID,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// NewQuoteEvent wraps a quote in an event envelope, carrying the request ID
// from ctx as the correlation ID.
func NewQuoteEvent(ctx context.Context, eventType EventType, quote *models.Quote) (*QuoteEvent, error) {
	data, err := json.Marshal(quote)
	if err != nil {
		return nil, err
	}

	event := &QuoteEvent{
		ID:        generateEventID(),
		Type:      eventType,
		QuoteID:   quote.ID,
		SessionID: quote.SessionID,
		Data:      data,
		Metadata: map[string]string{
			"district": quote.District,
			"currency": quote.Totals.Currency,
		},
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}
	return event, nil
}

func generateEventID() string {
	return "evt_" + uuid.NewString()
}

// NoopPublisher drops events. Used when quote events are turned off.
type NoopPublisher struct{}

func (NoopPublisher) PublishQuoteRequested(ctx context.Context, quote *models.Quote) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// MockEventPublisher records events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*QuoteEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*QuoteEvent, 0),
	}
}

func (m *MockEventPublisher) PublishQuoteRequested(ctx context.Context, quote *models.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, &QuoteEvent{
		Type:      EventTypeQuoteRequested,
		QuoteID:   quote.ID,
		SessionID: quote.SessionID,
	})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// Published returns a copy of the recorded events.
func (m *MockEventPublisher) Published() []*QuoteEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*QuoteEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
