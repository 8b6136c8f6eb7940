package domain

// StageID identifies a pipeline stage
type StageID string

const (
	StageOrderPunch       StageID = "Order Punch"
	StagePreApproval      StageID = "Pre-Approval"
	StageOrderApproval    StageID = "Approval Of Order"
	StageDispatchPlanning StageID = "Dispatch Planning"
	StageActualDispatch   StageID = "Actual Dispatch"
	StageVehicleDetails   StageID = "Vehicle Details"
	StageMaterialLoad     StageID = "Material Load"
	StageSecurityApproval StageID = "Security Approval"
	StageMakeInvoice      StageID = "Make Invoice"
	StageCheckInvoice     StageID = "Check Invoice"
	StageGateOut          StageID = "Gate Out"
	StageMaterialReceipt  StageID = "Material Receipt"
	StageDamageAdjustment StageID = "Damage Adjustment"
	StageFinalDelivery    StageID = "Final Delivery"
)

// StageDefinition describes one stage of the dispatch pipeline.
// Slot is the 1-based planned/actual timestamp slot on the order;
// slot 0 means the stage has no slot of its own (Order Punch is
// keyed to the order's creation timestamp).
type StageDefinition struct {
	ID    StageID `json:"id"`
	Label string  `json:"label"`
	Slot  int     `json:"slot"`
}

// Pipeline is the canonical ordered stage registry. Index order IS
// pipeline order; every progress, delay and dashboard computation
// walks this list and must never reorder it.
var Pipeline = [...]StageDefinition{
	{ID: StageOrderPunch, Label: "Order Punch", Slot: 0},
	{ID: StagePreApproval, Label: "Pre Approval", Slot: 1},
	{ID: StageOrderApproval, Label: "Approval of Order", Slot: 2},
	{ID: StageDispatchPlanning, Label: "Dispatch Planning", Slot: 3},
	{ID: StageActualDispatch, Label: "Actual Dispatch", Slot: 4},
	{ID: StageVehicleDetails, Label: "Vehicle Details", Slot: 5},
	{ID: StageMaterialLoad, Label: "Material Load", Slot: 6},
	{ID: StageSecurityApproval, Label: "Security Guard Approval", Slot: 7},
	{ID: StageMakeInvoice, Label: "Invoice (Proforma)", Slot: 8},
	{ID: StageCheckInvoice, Label: "Check Invoice", Slot: 9},
	{ID: StageGateOut, Label: "Gate Out", Slot: 10},
	{ID: StageMaterialReceipt, Label: "Confirm Material Receipt", Slot: 11},
	{ID: StageDamageAdjustment, Label: "Damage Adjustment", Slot: 12},
	{ID: StageFinalDelivery, Label: "Final Delivery", Slot: 13},
}

// NumStages is the total number of pipeline stages including Order Punch
const NumStages = len(Pipeline)

// TrackedSlots is the number of planned/actual slot pairs carried per order
const TrackedSlots = NumStages - 1

// Well-known stage indexes used by the aggregators
const (
	PlanningStageIndex = 3  // Dispatch Planning
	DispatchStageIndex = 4  // Actual Dispatch
	InvoiceStageIndex  = 8  // Invoice (Proforma)
	GateOutStageIndex  = 10 // Gate Out, treated as "completed" for reporting
	ReceiptStageIndex  = 11 // Confirm Material Receipt
	FinalStageIndex    = NumStages - 1
)

// StageByID returns the stage definition for the given ID
func StageByID(id StageID) (StageDefinition, bool) {
	for _, def := range Pipeline {
		if def.ID == id {
			return def, true
		}
	}
	return StageDefinition{}, false
}

// StageAt returns the stage definition at the given pipeline index.
// Out-of-range indexes clamp to Final Delivery, mirroring how the
// progress scan treats a fully completed order.
func StageAt(index int) StageDefinition {
	if index < 0 {
		return Pipeline[0]
	}
	if index >= NumStages {
		return Pipeline[NumStages-1]
	}
	return Pipeline[index]
}
