package application

import "time"

// PunchOrderCommand creates a new dispatch order. Lines > 1 produce
// letter-suffixed order numbers sharing one base sequence number.
type PunchOrderCommand struct {
	CustomerName string
	SkuName      string
	OilType      string
	Quantity     float64
	UOM          string
	Lines        int
}

// PlanStageCommand sets the planned timestamp for a pipeline stage
type PlanStageCommand struct {
	OrderNo    string
	StageIndex int
	PlannedAt  time.Time
}

// CompleteStageCommand stamps the actual timestamp for a pipeline stage
type CompleteStageCommand struct {
	OrderNo    string
	StageIndex int
	ActualAt   time.Time
}

// SubmitDispatchCommand records a (possibly partial) dispatch quantity
type SubmitDispatchCommand struct {
	OrderNo     string
	DispatchQty float64
}

// CancelOrderCommand cancels or rejects an order
type CancelOrderCommand struct {
	OrderNo string
	Reason  string
}
