package application

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
)

func reportOrder(t *testing.T, orderNo, skuName, oilType string, qty float64) domain.Order {
	t.Helper()
	order, err := domain.NewOrder(orderNo, "Acme Traders", skuName, qty, "BOX")
	require.NoError(t, err)
	order.ClearDomainEvents()
	order.OilType = oilType
	return *order
}

func TestComputeReportSummary(t *testing.T) {
	now := time.Now().UTC()

	dispatched := reportOrder(t, "DO-100", "XYZ SBO 15KG", "", 100)
	completeThrough(&dispatched, domain.DispatchStageIndex, now)

	gatedOut := reportOrder(t, "DO-101", "XYZ RBO 15KG", "", 50)
	completeThrough(&gatedOut, domain.GateOutStageIndex, now)

	pending := reportOrder(t, "DO-102", "XYZ PALM 15KG", "", 25)

	report := ComputeReport([]domain.Order{dispatched, gatedOut, pending}, nil)
	summary := report.Summary

	assert.Equal(t, 3, summary.TotalReceived)
	assert.Equal(t, 175.0, summary.TotalReceivedKg)
	assert.Equal(t, 2, summary.TotalDispatchedCount)
	assert.Equal(t, 150.0, summary.TotalDispatchedKg)
	assert.Equal(t, 1, summary.TotalCompletedCount)
	assert.Equal(t, 50.0, summary.TotalCompletedKg)
	// Pending means not yet gated out, dispatched or not
	assert.Equal(t, 2, summary.TotalPendingCount)
	assert.Equal(t, 125.0, summary.TotalPendingKg)
	assert.Equal(t, 25.0, summary.TotalRemainingKg)
}

func TestComputeReportTopSkuRanking(t *testing.T) {
	orders := []domain.Order{
		reportOrder(t, "DO-200", "XYZ SBO 15KG", "", 100),
		reportOrder(t, "DO-201", "XYZ RBO 15KG", "", 300),
		reportOrder(t, "DO-202", "XYZ PALM 15KG", "", 200),
		reportOrder(t, "DO-203", "XYZ RBO 15KG", "", 50),
	}

	report := ComputeReport(orders, nil)

	require.Len(t, report.TopSkus, 3)
	assert.Equal(t, "XYZ RBO 15KG", report.TopSkus[0].Sku)
	assert.Equal(t, 350.0, report.TopSkus[0].TotalKg)
	assert.Equal(t, 2, report.TopSkus[0].OrderCount)
	assert.Equal(t, "XYZ PALM 15KG", report.TopSkus[1].Sku)
	assert.Equal(t, "XYZ SBO 15KG", report.TopSkus[2].Sku)
}

func TestComputeReportTopSkuCap(t *testing.T) {
	orders := make([]domain.Order, 0, TopSkuLimit+5)
	for i := 0; i < TopSkuLimit+5; i++ {
		sku := fmt.Sprintf("SKU-%02d SBO 1L", i)
		orders = append(orders, reportOrder(t, fmt.Sprintf("DO-3%02d", i), sku, "", float64(i+1)))
	}

	report := ComputeReport(orders, nil)

	assert.Len(t, report.TopSkus, TopSkuLimit)
	// Highest volumes survive the cut
	assert.Equal(t, float64(TopSkuLimit+5), report.TopSkus[0].TotalKg)
	for i := 1; i < len(report.TopSkus); i++ {
		assert.GreaterOrEqual(t, report.TopSkus[i-1].TotalKg, report.TopSkus[i].TotalKg)
	}
}

func TestComputeReportDerivedOilTypeCoalesces(t *testing.T) {
	// One order with an explicit oil type, one deriving the same label
	// from the SKU name: both land in a single bucket
	explicit := reportOrder(t, "DO-400", "XYZ SBO 15KG", "Soya Oil", 100)
	derived := reportOrder(t, "DO-401", "XYZ SBO 15KG", "", 40)
	unknown := reportOrder(t, "DO-402", "XYZ SBO 15KG", "unknown", 10)

	report := ComputeReport([]domain.Order{explicit, derived, unknown}, nil)

	require.Len(t, report.TopSkus, 1)
	assert.Equal(t, domain.OilTypeSoya, report.TopSkus[0].OilType)
	assert.Equal(t, 150.0, report.TopSkus[0].TotalKg)
	assert.Equal(t, 3, report.TopSkus[0].OrderCount)
}

func TestComputeReportUsesSkuWeights(t *testing.T) {
	refs := []domain.SkuReference{
		{SkuName: "XYZ SBO 15KG", SkuWeight: 15, NosPerMainUOM: 1, MainUOM: "BOX", AlternateUOM: "NOS"},
	}

	order := reportOrder(t, "DO-500", "XYZ SBO 15KG", "", 10)
	order.AlternateQtyKg = 10

	report := ComputeReport([]domain.Order{order}, refs)

	require.Len(t, report.TopSkus, 1)
	top := report.TopSkus[0]
	assert.Equal(t, 15.0, top.SkuWeight)
	assert.Equal(t, 10.0, top.TotalQty)
	assert.Equal(t, 150.0, top.TotalQtyKg)

	require.Len(t, report.OrderTimeline, 1)
	entry := report.OrderTimeline[0]
	assert.Equal(t, 10.0, entry.OrderQuantity)
	assert.Equal(t, 150.0, entry.OrderQuantityKg)
	assert.Equal(t, 15.0, entry.SkuWeight)
}

func TestComputeReportUnknownSkuKeepsRawQuantity(t *testing.T) {
	order := reportOrder(t, "DO-501", "MYSTERY PRODUCT", "", 42)

	report := ComputeReport([]domain.Order{order}, nil)

	require.Len(t, report.OrderTimeline, 1)
	// No reference weight: quantities pass through as kilograms
	assert.Equal(t, 42.0, report.OrderTimeline[0].OrderQuantityKg)
	assert.Equal(t, 0.0, report.OrderTimeline[0].SkuWeight)
}

func TestComputeReportUnknownLabels(t *testing.T) {
	order := reportOrder(t, "DO-502", "BLANK PRODUCT", "", 10)
	order.SkuName = ""
	order.ProductName = ""
	order.OilType = ""

	report := ComputeReport([]domain.Order{order}, nil)

	require.Len(t, report.TopSkus, 1)
	assert.Equal(t, "Unknown", report.TopSkus[0].Sku)
	assert.Equal(t, "Unknown", report.TopSkus[0].OilType)
}

func TestComputeReportTimelineStages(t *testing.T) {
	now := time.Now().UTC()

	order := reportOrder(t, "DO-600", "XYZ SBO 15KG", "", 100)
	completeThrough(&order, 2, now.Add(-2*time.Hour))

	report := ComputeReport([]domain.Order{order}, nil)

	require.Len(t, report.OrderTimeline, 1)
	stages := report.OrderTimeline[0].Stages
	// Only touched stages appear in the timeline
	require.Len(t, stages, 2)
	assert.Equal(t, domain.Pipeline[1].ID, stages[0].Stage)
	require.NotNil(t, stages[0].OnTime)
	assert.True(t, *stages[0].OnTime)
}

func TestPreferredSkuName(t *testing.T) {
	order := reportOrder(t, "DO-700", "XYZ SBO 15KG", "", 10)
	assert.Equal(t, "XYZ SBO 15KG", preferredSkuName(&order))

	order.SkuName = ""
	order.ProductName = "Fallback Product"
	assert.Equal(t, "Fallback Product", preferredSkuName(&order))
}
