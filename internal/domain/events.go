package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseDomainEvent contains common event fields
type BaseDomainEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateId string    `json:"aggregateId"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() string   { return e.AggregateId }

func newBaseEvent(eventType, orderNo string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateId: orderNo,
		Timestamp:   time.Now().UTC(),
	}
}

// OrderPunchedEvent is raised when a new order enters the pipeline
type OrderPunchedEvent struct {
	BaseDomainEvent
	OrderNo       string  `json:"orderNo"`
	CustomerName  string  `json:"customerName"`
	SkuName       string  `json:"skuName,omitempty"`
	OrderQuantity float64 `json:"orderQuantity"`
}

// NewOrderPunchedEvent creates a new OrderPunchedEvent
func NewOrderPunchedEvent(order *Order) *OrderPunchedEvent {
	return &OrderPunchedEvent{
		BaseDomainEvent: newBaseEvent("dispatch.order.punched", order.OrderNo),
		OrderNo:         order.OrderNo,
		CustomerName:    order.CustomerName,
		SkuName:         order.SkuName,
		OrderQuantity:   order.OrderQuantity,
	}
}

// StagePlannedEvent is raised when a stage gets a planned timestamp
type StagePlannedEvent struct {
	BaseDomainEvent
	OrderNo    string    `json:"orderNo"`
	StageIndex int       `json:"stageIndex"`
	Stage      StageID   `json:"stage"`
	PlannedAt  time.Time `json:"plannedAt"`
}

// NewStagePlannedEvent creates a new StagePlannedEvent
func NewStagePlannedEvent(order *Order, stageIndex int, plannedAt time.Time) *StagePlannedEvent {
	return &StagePlannedEvent{
		BaseDomainEvent: newBaseEvent("dispatch.stage.planned", order.OrderNo),
		OrderNo:         order.OrderNo,
		StageIndex:      stageIndex,
		Stage:           StageAt(stageIndex).ID,
		PlannedAt:       plannedAt,
	}
}

// StageCompletedEvent is raised when a stage actual is stamped
type StageCompletedEvent struct {
	BaseDomainEvent
	OrderNo     string    `json:"orderNo"`
	StageIndex  int       `json:"stageIndex"`
	Stage       StageID   `json:"stage"`
	CompletedAt time.Time `json:"completedAt"`
}

// NewStageCompletedEvent creates a new StageCompletedEvent
func NewStageCompletedEvent(order *Order, stageIndex int, completedAt time.Time) *StageCompletedEvent {
	return &StageCompletedEvent{
		BaseDomainEvent: newBaseEvent("dispatch.stage.completed", order.OrderNo),
		OrderNo:         order.OrderNo,
		StageIndex:      stageIndex,
		Stage:           StageAt(stageIndex).ID,
		CompletedAt:     completedAt,
	}
}

// DispatchRecordedEvent is raised when a (possibly partial) dispatch is
// applied against the order's balance
type DispatchRecordedEvent struct {
	BaseDomainEvent
	OrderNo      string  `json:"orderNo"`
	DispatchQty  float64 `json:"dispatchQty"`
	RemainingQty float64 `json:"remainingQty"`
	Completed    bool    `json:"completed"`
}

// NewDispatchRecordedEvent creates a new DispatchRecordedEvent
func NewDispatchRecordedEvent(order *Order, qty, remaining float64, completed bool) *DispatchRecordedEvent {
	return &DispatchRecordedEvent{
		BaseDomainEvent: newBaseEvent("dispatch.order.dispatched", order.OrderNo),
		OrderNo:         order.OrderNo,
		DispatchQty:     qty,
		RemainingQty:    remaining,
		Completed:       completed,
	}
}

// OrderCancelledEvent is raised when an order is cancelled or rejected
type OrderCancelledEvent struct {
	BaseDomainEvent
	OrderNo string `json:"orderNo"`
	Reason  string `json:"reason,omitempty"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: newBaseEvent("dispatch.order.cancelled", order.OrderNo),
		OrderNo:         order.OrderNo,
		Reason:          reason,
	}
}
