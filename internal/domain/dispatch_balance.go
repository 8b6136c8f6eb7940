package domain

import "time"

// DispatchBalance tracks the quantity still to be dispatched for an
// order. The balance moves through exactly two states:
//
//	Pending   remaining > 0
//	Completed remaining <= 0 (clamped at 0)
//
// Once a dispatch drives the balance to zero the dispatch-planning
// stage is considered complete.
type DispatchBalance struct {
	Remaining float64
}

// Apply subtracts a dispatched quantity and returns the new balance
// plus whether the balance is now exhausted. The remaining quantity
// never goes below zero, even on over-dispatch.
func (b DispatchBalance) Apply(qty float64) (DispatchBalance, bool) {
	remaining := b.Remaining - qty
	if remaining <= 0 {
		return DispatchBalance{Remaining: 0}, true
	}
	return DispatchBalance{Remaining: remaining}, false
}

// DispatchBalance returns the order's current balance. When no
// dispatch has been recorded yet the available quantity falls back to
// the approved quantity, then the ordered quantity.
func (o *Order) DispatchBalance() DispatchBalance {
	if o.RemainingDispatchQty != nil {
		return DispatchBalance{Remaining: *o.RemainingDispatchQty}
	}
	if o.ApprovalQty != nil {
		return DispatchBalance{Remaining: *o.ApprovalQty}
	}
	return DispatchBalance{Remaining: o.OrderQuantity}
}

// RecordDispatch applies a (possibly partial) dispatch against the
// order's balance. When the balance reaches zero the dispatch-planning
// stage actual is stamped. Returns whether this dispatch completed the
// stage.
func (o *Order) RecordDispatch(qty float64, at time.Time) (bool, error) {
	if qty <= 0 {
		return false, ErrInvalidDispatch
	}
	if o.IsCancelled() {
		return false, ErrOrderCancelled
	}
	slot := o.Slot(PlanningStageIndex)
	if slot.Planned == nil {
		return false, ErrStageNotPlanned
	}
	if slot.Actual != nil {
		return false, ErrStageAlreadyDone
	}

	balance, completed := o.DispatchBalance().Apply(qty)
	o.RemainingDispatchQty = &balance.Remaining
	o.UpdatedAt = time.Now().UTC()

	if completed {
		at = at.UTC()
		slot.Actual = &at
		o.addDomainEvent(NewStageCompletedEvent(o, PlanningStageIndex, at))
	}

	o.addDomainEvent(NewDispatchRecordedEvent(o, qty, balance.Remaining, completed))
	return completed, nil
}
