package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("DO-416A", "Acme Traders", "XYZ SBO 15KG", 100, "BOX")
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func stamp(o *Order, index int, planned, actual time.Time) {
	slot := o.Slot(index)
	p, a := planned.UTC(), actual.UTC()
	slot.Planned = &p
	slot.Actual = &a
}

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name         string
		orderNo      string
		customerName string
		quantity     float64
		expectError  error
	}{
		{
			name:         "Valid order",
			orderNo:      "DO-416A",
			customerName: "Acme Traders",
			quantity:     100,
			expectError:  nil,
		},
		{
			name:         "Missing order number",
			orderNo:      "  ",
			customerName: "Acme Traders",
			quantity:     100,
			expectError:  ErrMissingOrderNo,
		},
		{
			name:         "Missing customer",
			orderNo:      "DO-417",
			customerName: "",
			quantity:     100,
			expectError:  ErrMissingCustomer,
		},
		{
			name:         "Non-positive quantity",
			orderNo:      "DO-418",
			customerName: "Acme Traders",
			quantity:     0,
			expectError:  ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(tt.orderNo, tt.customerName, "SKU", tt.quantity, "BOX")

			if tt.expectError != nil {
				assert.Equal(t, tt.expectError, err)
				assert.Nil(t, order)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, order)
			assert.Equal(t, tt.orderNo, order.OrderNo)
			assert.False(t, order.CreatedAt.IsZero())
			assert.Len(t, order.DomainEvents(), 1)
			assert.Equal(t, "dispatch.order.punched", order.DomainEvents()[0].EventType())
		})
	}
}

func TestPlanStageSequencing(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	// Stage 1 can always be planned: Order Punch is done once the record exists
	require.NoError(t, order.PlanStage(1, now))
	assert.NotNil(t, order.StagePlanned(1))

	// Stage 2 cannot be planned until stage 1 has an actual
	assert.Equal(t, ErrStageOutOfOrder, order.PlanStage(2, now))

	require.NoError(t, order.CompleteStage(1, now))
	require.NoError(t, order.PlanStage(2, now))

	// Out-of-range indexes are rejected
	assert.Equal(t, ErrStageOutOfRange, order.PlanStage(0, now))
	assert.Equal(t, ErrStageOutOfRange, order.PlanStage(TrackedSlots+1, now))
}

func TestCompleteStage(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	// Cannot complete an unplanned stage
	assert.Equal(t, ErrStageNotPlanned, order.CompleteStage(1, now))

	require.NoError(t, order.PlanStage(1, now))
	require.NoError(t, order.CompleteStage(1, now))
	assert.True(t, order.StageDone(1))

	// A stage actual is stamped exactly once
	assert.Equal(t, ErrStageAlreadyDone, order.CompleteStage(1, now))
}

func TestCancelBlocksStageSubmission(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	order.Cancel("customer withdrew")
	assert.True(t, order.IsCancelled())
	assert.Contains(t, order.OverallStatus, "Cancelled")

	assert.Equal(t, ErrOrderCancelled, order.PlanStage(1, now))
}

func TestIsCancelledMatchesStatusText(t *testing.T) {
	tests := []struct {
		status    string
		cancelled bool
	}{
		{"Approved", false},
		{"REJECTED by QA", true},
		{"order cancelled", true},
		{"Cancel requested", true},
		{"", false},
		{"Pending", false},
	}

	for _, tt := range tests {
		order := createTestOrder(t)
		order.OverallStatus = tt.status
		assert.Equal(t, tt.cancelled, order.IsCancelled(), "status %q", tt.status)
	}
}

func TestRecordDispatchPartialThenComplete(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	// Walk the order up to a planned Dispatch Planning stage
	for i := 1; i < PlanningStageIndex; i++ {
		require.NoError(t, order.PlanStage(i, now))
		require.NoError(t, order.CompleteStage(i, now))
	}
	require.NoError(t, order.PlanStage(PlanningStageIndex, now))
	order.ClearDomainEvents()

	// Partial dispatch keeps the stage pending
	completed, err := order.RecordDispatch(60, now)
	require.NoError(t, err)
	assert.False(t, completed)
	require.NotNil(t, order.RemainingDispatchQty)
	assert.InDelta(t, 40, *order.RemainingDispatchQty, 0.001)
	assert.Nil(t, order.StageActual(PlanningStageIndex))

	// Second dispatch exhausts the balance and stamps the stage
	completed, err = order.RecordDispatch(60, now)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 0.0, *order.RemainingDispatchQty, "remaining is capped at zero on over-dispatch")
	assert.NotNil(t, order.StageActual(PlanningStageIndex))

	// Events: stage completed + dispatch recorded for the final submission
	types := make([]string, 0)
	for _, ev := range order.DomainEvents() {
		types = append(types, ev.EventType())
	}
	assert.Contains(t, types, "dispatch.stage.completed")
	assert.Contains(t, types, "dispatch.order.dispatched")

	// Stage is complete, further dispatches are a conflict
	_, err = order.RecordDispatch(10, now)
	assert.Equal(t, ErrStageAlreadyDone, err)
}

func TestRecordDispatchValidation(t *testing.T) {
	order := createTestOrder(t)
	now := time.Now().UTC()

	_, err := order.RecordDispatch(0, now)
	assert.Equal(t, ErrInvalidDispatch, err)

	// Dispatch planning must be planned before dispatches are recorded
	_, err = order.RecordDispatch(10, now)
	assert.Equal(t, ErrStageNotPlanned, err)
}

func TestDispatchBalanceFallbacks(t *testing.T) {
	order := createTestOrder(t)
	assert.Equal(t, 100.0, order.DispatchBalance().Remaining, "falls back to order quantity")

	approval := 80.0
	order.ApprovalQty = &approval
	assert.Equal(t, 80.0, order.DispatchBalance().Remaining, "approval quantity wins over order quantity")

	remaining := 25.0
	order.RemainingDispatchQty = &remaining
	assert.Equal(t, 25.0, order.DispatchBalance().Remaining, "running balance wins over both")
}

func TestDispatchBalanceApply(t *testing.T) {
	balance := DispatchBalance{Remaining: 50}

	balance, completed := balance.Apply(20)
	assert.False(t, completed)
	assert.Equal(t, 30.0, balance.Remaining)

	balance, completed = balance.Apply(45)
	assert.True(t, completed)
	assert.Equal(t, 0.0, balance.Remaining, "never goes negative")
}

func TestFormatOrderNo(t *testing.T) {
	assert.Equal(t, "DO-416", FormatOrderNo(416, 0))
	assert.Equal(t, "DO-416A", FormatOrderNo(416, 1))
	assert.Equal(t, "DO-416B", FormatOrderNo(416, 2))
}

func TestOrderNoBase(t *testing.T) {
	assert.Equal(t, "DO-416", OrderNoBase("DO-416A"))
	assert.Equal(t, "DO-416", OrderNoBase("DO-416"))
	assert.Equal(t, "DO-7", OrderNoBase("DO-7C"))
}
