package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRegistryShape(t *testing.T) {
	require.Equal(t, 14, NumStages)
	require.Equal(t, 13, TrackedSlots)

	// Order Punch has no slot of its own
	assert.Equal(t, StageOrderPunch, Pipeline[0].ID)
	assert.Equal(t, 0, Pipeline[0].Slot)

	// Tracked stages map 1:1, in order, onto slots 1..13
	for i := 1; i < NumStages; i++ {
		assert.Equal(t, i, Pipeline[i].Slot, "stage %s", Pipeline[i].ID)
	}

	assert.Equal(t, StageFinalDelivery, Pipeline[NumStages-1].ID)
}

func TestPipelineWellKnownIndexes(t *testing.T) {
	assert.Equal(t, StageDispatchPlanning, Pipeline[PlanningStageIndex].ID)
	assert.Equal(t, StageActualDispatch, Pipeline[DispatchStageIndex].ID)
	assert.Equal(t, StageMakeInvoice, Pipeline[InvoiceStageIndex].ID)
	assert.Equal(t, StageGateOut, Pipeline[GateOutStageIndex].ID)
	assert.Equal(t, StageMaterialReceipt, Pipeline[ReceiptStageIndex].ID)
	assert.Equal(t, StageFinalDelivery, Pipeline[FinalStageIndex].ID)
}

func TestStageByID(t *testing.T) {
	def, ok := StageByID(StageGateOut)
	require.True(t, ok)
	assert.Equal(t, 10, def.Slot)

	_, ok = StageByID("No Such Stage")
	assert.False(t, ok)
}

func TestStageAtClamps(t *testing.T) {
	assert.Equal(t, StageOrderPunch, StageAt(-1).ID)
	assert.Equal(t, StageFinalDelivery, StageAt(NumStages).ID)
	assert.Equal(t, StageVehicleDetails, StageAt(5).ID)
}
