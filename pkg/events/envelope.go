// Package events carries the CloudEvents-style envelope the dispatch
// pipeline publishes to Kafka on stage transitions.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SpecVersion is the CloudEvents spec version emitted
const SpecVersion = "1.0"

// Envelope is a CloudEvents 1.0 attribute envelope with dispatch
// pipeline extension attributes
type Envelope struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	Subject         string      `json:"subject,omitempty"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data,omitempty"`

	// Dispatch extensions
	OrderNo       string `json:"dispatchorderno,omitempty"`
	Stage         string `json:"dispatchstage,omitempty"`
	CorrelationID string `json:"dispatchcorrelationid,omitempty"`
}

// Factory builds envelopes with a fixed source URI
type Factory struct {
	source string
}

// NewFactory creates an envelope factory for the given source
func NewFactory(source string) *Factory {
	return &Factory{source: source}
}

// CreateEvent builds an envelope for the given type, subject and payload
func (f *Factory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *Envelope {
	env := &Envelope{
		SpecVersion:     SpecVersion,
		ID:              uuid.New().String(),
		Source:          f.source,
		Type:            eventType,
		Subject:         subject,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		env.CorrelationID = correlationID
	}
	return env
}

// WithOrder attaches the dispatch extension attributes
func (e *Envelope) WithOrder(orderNo, stage string) *Envelope {
	e.OrderNo = orderNo
	e.Stage = stage
	return e
}

type contextKey string

const correlationIDKey contextKey = "correlationId"

// WithCorrelationID stores a correlation ID on the context for
// downstream event creation
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext extracts the correlation ID, "" when unset
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}
