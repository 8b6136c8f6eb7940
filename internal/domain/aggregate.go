package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the Order aggregate
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderCancelled   = errors.New("order has been cancelled")
	ErrStageOutOfRange  = errors.New("stage index out of range")
	ErrStageOutOfOrder  = errors.New("previous stage is not complete")
	ErrStageNotPlanned  = errors.New("stage has not been planned")
	ErrStageAlreadyDone = errors.New("stage already completed")
	ErrInvalidDispatch  = errors.New("dispatch quantity must be positive")
	ErrMissingOrderNo   = errors.New("order number is required")
	ErrMissingCustomer  = errors.New("customer name is required")
	ErrInvalidQuantity  = errors.New("order quantity must be positive")
)

// StageSlot holds the planned/actual timestamp pair for one tracked stage
type StageSlot struct {
	Planned *time.Time `bson:"planned,omitempty" json:"planned,omitempty"`
	Actual  *time.Time `bson:"actual,omitempty" json:"actual,omitempty"`
}

// Done reports whether the stage has an actual timestamp
func (s StageSlot) Done() bool {
	return s.Actual != nil
}

// Order is the aggregate root for a dispatch order (or one product line
// of a multi-line order). It carries one planned/actual slot pair per
// tracked pipeline stage; Order Punch is represented by CreatedAt.
type Order struct {
	ID                   primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	OrderNo              string                  `bson:"orderNo" json:"orderNo"`
	CustomerName         string                  `bson:"customerName" json:"customerName"`
	ProductName          string                  `bson:"productName,omitempty" json:"productName,omitempty"`
	SkuName              string                  `bson:"skuName,omitempty" json:"skuName,omitempty"`
	OilType              string                  `bson:"oilType,omitempty" json:"oilType,omitempty"`
	OrderQuantity        float64                 `bson:"orderQuantity" json:"orderQuantity"`
	UOM                  string                  `bson:"uom,omitempty" json:"uom,omitempty"`
	AlternateQtyKg       float64                 `bson:"alternateQtyKg,omitempty" json:"alternateQtyKg,omitempty"`
	ApprovalQty          *float64                `bson:"approvalQty,omitempty" json:"approvalQty,omitempty"`
	RemainingDispatchQty *float64                `bson:"remainingDispatchQty,omitempty" json:"remainingDispatchQty,omitempty"`
	OverallStatus        string                  `bson:"overallStatus,omitempty" json:"overallStatus,omitempty"`
	DeliveryDate         *time.Time              `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	Slots                [TrackedSlots]StageSlot `bson:"slots" json:"slots"`
	CreatedAt            time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time               `bson:"updatedAt" json:"updatedAt"`

	// Domain events - transient, not persisted
	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// NewOrder punches a new order into the pipeline
func NewOrder(orderNo, customerName, skuName string, quantity float64, uom string) (*Order, error) {
	if strings.TrimSpace(orderNo) == "" {
		return nil, ErrMissingOrderNo
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrMissingCustomer
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now().UTC()
	order := &Order{
		OrderNo:       orderNo,
		CustomerName:  customerName,
		SkuName:       skuName,
		OrderQuantity: quantity,
		UOM:           uom,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order.addDomainEvent(NewOrderPunchedEvent(order))
	return order, nil
}

// Slot returns the stage slot for a 1-based tracked stage index,
// or nil when the index is out of range
func (o *Order) Slot(index int) *StageSlot {
	if index < 1 || index > TrackedSlots {
		return nil
	}
	return &o.Slots[index-1]
}

// StageDone reports whether the stage at the given pipeline index is
// complete. Index 0 (Order Punch) is always done once the record exists.
func (o *Order) StageDone(index int) bool {
	if index == 0 {
		return true
	}
	slot := o.Slot(index)
	return slot != nil && slot.Done()
}

// StageActual returns the actual timestamp for a pipeline index, nil if unset
func (o *Order) StageActual(index int) *time.Time {
	slot := o.Slot(index)
	if slot == nil {
		return nil
	}
	return slot.Actual
}

// StagePlanned returns the planned timestamp for a pipeline index, nil if unset
func (o *Order) StagePlanned(index int) *time.Time {
	slot := o.Slot(index)
	if slot == nil {
		return nil
	}
	return slot.Planned
}

// PlanStage sets the planned timestamp for a stage. The pipeline is
// strictly sequential: stage i may only be planned once stage i-1 has
// an actual timestamp.
func (o *Order) PlanStage(index int, at time.Time) error {
	slot := o.Slot(index)
	if slot == nil {
		return ErrStageOutOfRange
	}
	if o.IsCancelled() {
		return ErrOrderCancelled
	}
	if !o.StageDone(index - 1) {
		return ErrStageOutOfOrder
	}

	at = at.UTC()
	slot.Planned = &at
	o.UpdatedAt = time.Now().UTC()

	o.addDomainEvent(NewStagePlannedEvent(o, index, at))
	return nil
}

// CompleteStage stamps the actual timestamp for a stage. A stage is
// completed exactly once; re-submission is a conflict, not an update.
func (o *Order) CompleteStage(index int, at time.Time) error {
	slot := o.Slot(index)
	if slot == nil {
		return ErrStageOutOfRange
	}
	if o.IsCancelled() {
		return ErrOrderCancelled
	}
	if slot.Planned == nil {
		return ErrStageNotPlanned
	}
	if slot.Actual != nil {
		return ErrStageAlreadyDone
	}

	at = at.UTC()
	slot.Actual = &at
	o.UpdatedAt = time.Now().UTC()

	o.addDomainEvent(NewStageCompletedEvent(o, index, at))
	return nil
}

// Cancel marks the order rejected/cancelled via its overall status text
func (o *Order) Cancel(reason string) {
	status := "Cancelled"
	if strings.TrimSpace(reason) != "" {
		status = "Cancelled: " + strings.TrimSpace(reason)
	}
	o.OverallStatus = status
	o.UpdatedAt = time.Now().UTC()
	o.addDomainEvent(NewOrderCancelledEvent(o, reason))
}

// IsTerminal reports whether the order reached Final Delivery
func (o *Order) IsTerminal() bool {
	return o.StageDone(FinalStageIndex)
}

// IsCancelled reports whether the overall status marks the order
// rejected or cancelled (substring match, case-insensitive)
func (o *Order) IsCancelled() bool {
	status := strings.ToLower(o.OverallStatus)
	return strings.Contains(status, "reject") || strings.Contains(status, "cancel")
}

// DomainEvents returns pending domain events
func (o *Order) DomainEvents() []DomainEvent {
	return o.domainEvents
}

// ClearDomainEvents clears pending domain events after publication
func (o *Order) ClearDomainEvents() {
	o.domainEvents = nil
}

func (o *Order) addDomainEvent(event DomainEvent) {
	o.domainEvents = append(o.domainEvents, event)
}

// FormatOrderNo builds a DO-NNN business key from a sequence number.
// Multi-line orders get a letter suffix per line: DO-416A, DO-416B.
func FormatOrderNo(seq int64, line int) string {
	base := fmt.Sprintf("DO-%d", seq)
	if line <= 0 {
		return base
	}
	if line > 26 {
		line = 26
	}
	return base + string(rune('A'+line-1))
}

// OrderNoBase strips the multi-line letter suffix so DO-416A and
// DO-416B both report DO-416
func OrderNoBase(orderNo string) string {
	return strings.TrimRight(orderNo, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}
