package application

import (
	"time"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
)

// DashboardSnapshot is the full dashboard view model, recomputed from
// the order set on every request
type DashboardSnapshot struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Delayed   int `json:"delayed"`
	Cancelled int `json:"cancelled"`

	StageCounts []StageCount `json:"stageCounts"`

	RecentOrders    []OrderSummary `json:"recentOrders"`
	PendingOrders   []OrderSummary `json:"pendingOrdersList"`
	CompletedOrders []OrderSummary `json:"completedOrdersList"`

	CreatedToday    int `json:"createdToday"`
	DispatchedToday int `json:"dispatchedToday"`
	InvoicedToday   int `json:"invoicedToday"`
	DeliveredToday  int `json:"deliveredToday"`
}

// StageCount carries per-stage pending/completed totals
type StageCount struct {
	ID        domain.StageID `json:"id"`
	Label     string         `json:"label"`
	Pending   int            `json:"pending"`
	Completed int            `json:"completed"`
}

// OrderSummary is one enriched dashboard row
type OrderSummary struct {
	OrderNo         string         `json:"orderNo"`
	CustomerName    string         `json:"customerName"`
	CreatedAt       time.Time      `json:"createdAt"`
	Stage           domain.StageID `json:"stage"`
	StageLabel      string         `json:"stageLabel"`
	StageIndex      int            `json:"stageIndex"`
	CompletedStages int            `json:"completedStages"`
	TotalStages     int            `json:"totalStages"`
	Delayed         bool           `json:"delayed"`
	Status          string         `json:"status"`
}

// LegacyStats mirrors the original four-stage dashboard counters kept
// for older dashboard clients that only read slots 1-4
type LegacyStats struct {
	TotalOrders        int `json:"totalOrders"`
	PendingPreApproval int `json:"pendingPreApproval"`
	PendingApproval    int `json:"pendingApproval"`
	CompletedOrders    int `json:"completedOrders"`
}

// Report is the filtered reporting view model
type Report struct {
	Summary       ReportSummary        `json:"summary"`
	TopSkus       []TopSku             `json:"topSkus"`
	OrderTimeline []OrderTimelineEntry `json:"orderTimeline"`
}

// ReportSummary carries the cross-order KPI rollup
type ReportSummary struct {
	TotalReceived        int     `json:"totalReceived"`
	TotalReceivedKg      float64 `json:"totalReceivedKg"`
	TotalPendingCount    int     `json:"totalPendingCount"`
	TotalPendingKg       float64 `json:"totalPendingKg"`
	TotalDispatchedCount int     `json:"totalDispatchedCount"`
	TotalDispatchedKg    float64 `json:"totalDispatchedKg"`
	TotalCompletedCount  int     `json:"totalCompletedCount"`
	TotalCompletedKg     float64 `json:"totalCompletedKg"`
	TotalRemainingKg     float64 `json:"totalRemainingKg"`
}

// TopSku is one row of the top-selling SKU ranking
type TopSku struct {
	OilType       string  `json:"oilType"`
	Sku           string  `json:"sku"`
	TotalKg       float64 `json:"totalKg"`
	TotalQty      float64 `json:"totalQty"`
	TotalQtyKg    float64 `json:"totalQtyKg"`
	SkuWeight     float64 `json:"skuWeight"`
	NosPerMainUOM float64 `json:"nosPerMainUom"`
	MainUOM       string  `json:"mainUom,omitempty"`
	AlternateUOM  string  `json:"alternateUom,omitempty"`
	OrderCount    int     `json:"orderCount"`
}

// OrderTimelineEntry is the per-order stage timeline with timing flags
type OrderTimelineEntry struct {
	OrderNo         string              `json:"orderNo"`
	CustomerName    string              `json:"customerName"`
	OilType         string              `json:"oilType"`
	SkuName         string              `json:"skuName"`
	OrderQuantity   float64             `json:"orderQuantity"`
	OrderQuantityKg float64             `json:"orderQuantityKg"`
	SkuWeight       float64             `json:"skuWeight"`
	AlternateQtyKg  float64             `json:"alternateQtyKg"`
	UOM             string              `json:"uom,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	DeliveryDate    *time.Time          `json:"deliveryDate,omitempty"`
	Stages          []domain.StageDelay `json:"stages"`
}

// OrderDTO is the full order detail returned by the write side
type OrderDTO struct {
	ID                   string               `json:"id,omitempty"`
	OrderNo              string               `json:"orderNo"`
	CustomerName         string               `json:"customerName"`
	SkuName              string               `json:"skuName,omitempty"`
	OilType              string               `json:"oilType,omitempty"`
	OrderQuantity        float64              `json:"orderQuantity"`
	UOM                  string               `json:"uom,omitempty"`
	RemainingDispatchQty *float64             `json:"remainingDispatchQty,omitempty"`
	OverallStatus        string               `json:"overallStatus,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	Progress             domain.StageProgress `json:"progress"`
}

func toOrderDTO(order *domain.Order) *OrderDTO {
	dto := &OrderDTO{
		OrderNo:              order.OrderNo,
		CustomerName:         order.CustomerName,
		SkuName:              order.SkuName,
		OilType:              order.OilType,
		OrderQuantity:        order.OrderQuantity,
		UOM:                  order.UOM,
		RemainingDispatchQty: order.RemainingDispatchQty,
		OverallStatus:        order.OverallStatus,
		CreatedAt:            order.CreatedAt,
		Progress:             domain.ComputeStageProgress(order),
	}
	if !order.ID.IsZero() {
		dto.ID = order.ID.Hex()
	}
	return dto
}
