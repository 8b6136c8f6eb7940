package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ssg-mis/order-to-dispatch-backend/pkg/events"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/metrics"
)

// Producer publishes event envelopes to Kafka topics. Writers are
// created lazily per topic and reused.
type Producer struct {
	mu      sync.Mutex
	writers map[string]*kafka.Writer
	config  *Config
	metrics *metrics.Metrics
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config, m *metrics.Metrics) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
		metrics: m,
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
		Transport:    &kafka.Transport{ClientID: p.config.ClientID},
	}

	p.writers[topic] = writer
	return writer
}

// PublishEvent publishes an envelope to the specified topic. The order
// number is used as the message key so all events for one order land on
// the same partition in order.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event *events.Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.OrderNo
	if key == "" {
		key = event.Subject
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte(event.SpecVersion)},
			{Key: "ce-type", Value: []byte(event.Type)},
			{Key: "ce-source", Value: []byte(event.Source)},
			{Key: "ce-id", Value: []byte(event.ID)},
			{Key: "ce-time", Value: []byte(event.Time.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte(event.DataContentType)},
		},
		Time: event.Time,
	}

	if event.OrderNo != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-dispatchorderno", Value: []byte(event.OrderNo)})
	}
	if event.Stage != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-dispatchstage", Value: []byte(event.Stage)})
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ce-dispatchcorrelationid", Value: []byte(event.CorrelationID)})
	}

	start := time.Now()
	err = p.getWriter(topic).WriteMessages(ctx, msg)
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("failed to publish event to topic %s: %w", topic, err)
	}

	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
