package application

import (
	"context"
	"sort"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/logging"
)

// TopSkuLimit caps the top-selling SKU ranking
const TopSkuLimit = 20

// ReportService builds the filtered reporting view model: summary
// KPIs, top-SKU rankings and per-order stage timelines
type ReportService struct {
	orders domain.OrderRepository
	skus   domain.SkuReferenceRepository
	logger *logging.Logger
}

// NewReportService creates a new ReportService
func NewReportService(orders domain.OrderRepository, skus domain.SkuReferenceRepository, logger *logging.Logger) *ReportService {
	return &ReportService{
		orders: orders,
		skus:   skus,
		logger: logger,
	}
}

// GetReport loads the filtered order set plus the SKU reference table
// and computes the report
func (s *ReportService) GetReport(ctx context.Context, filter domain.OrderFilter) (*Report, error) {
	orders, err := s.orders.FindWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to load orders for report", "error", err)
		return nil, err
	}

	skuRefs, err := s.skus.FindAll(ctx)
	if err != nil {
		// The SKU table is reference data for unit conversion only;
		// a failed load degrades to raw quantities rather than
		// failing the whole report.
		s.logger.Warn("Failed to load SKU references, reporting raw quantities", "error", err)
		skuRefs = nil
	}

	report := ComputeReport(orders, skuRefs)
	s.logger.Debug("Report computed",
		"orders", report.Summary.TotalReceived,
		"topSkus", len(report.TopSkus),
	)
	return report, nil
}

// ComputeReport derives the report from an already-filtered order set
// and the SKU reference table. Pure and input-preserving, like
// ComputeDashboard.
func ComputeReport(orders []domain.Order, skuRefs []domain.SkuReference) *Report {
	skuIndex := domain.NewSkuIndex(skuRefs)

	report := &Report{
		TopSkus:       make([]TopSku, 0),
		OrderTimeline: make([]OrderTimelineEntry, 0, len(orders)),
	}
	summary := &report.Summary
	summary.TotalReceived = len(orders)

	type skuKey struct {
		oilType string
		sku     string
	}
	buckets := make(map[skuKey]*TopSku)
	order := make([]skuKey, 0)

	for i := range orders {
		o := &orders[i]
		qty := o.OrderQuantity

		summary.TotalReceivedKg += qty
		if o.StageActual(domain.DispatchStageIndex) != nil {
			summary.TotalDispatchedCount++
			summary.TotalDispatchedKg += qty
		}
		if o.StageActual(domain.GateOutStageIndex) != nil {
			summary.TotalCompletedCount++
			summary.TotalCompletedKg += qty
		} else {
			summary.TotalPendingCount++
			summary.TotalPendingKg += qty
		}

		// Grouping uses the derived oil type so differently cased or
		// missing raw values coalesce into one bucket
		skuName := preferredSkuName(o)
		oilType := domain.DeriveOilType(o.OilType, skuName)
		key := skuKey{oilType: labelOrUnknown(oilType), sku: labelOrUnknown(skuName)}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &TopSku{
				OilType: key.oilType,
				Sku:     key.sku,
			}
			if ref, found := skuIndex.Lookup(skuName); found {
				bucket.SkuWeight = ref.SkuWeight
				bucket.NosPerMainUOM = ref.NosPerMainUOM
				bucket.MainUOM = ref.MainUOM
				bucket.AlternateUOM = ref.AlternateUOM
			}
			buckets[key] = bucket
			order = append(order, key)
		}

		bucket.TotalKg += qty
		bucket.TotalQty += o.AlternateQtyKg
		bucket.TotalQtyKg += o.AlternateQtyKg * bucket.SkuWeight
		bucket.OrderCount++

		report.OrderTimeline = append(report.OrderTimeline, OrderTimelineEntry{
			OrderNo:         o.OrderNo,
			CustomerName:    o.CustomerName,
			OilType:         oilType,
			SkuName:         skuName,
			OrderQuantity:   qty,
			OrderQuantityKg: skuIndex.QuantityKg(skuName, qty),
			SkuWeight:       skuIndex.Weight(skuName),
			AlternateQtyKg:  o.AlternateQtyKg,
			UOM:             o.UOM,
			CreatedAt:       o.CreatedAt,
			DeliveryDate:    o.DeliveryDate,
			Stages:          domain.StageDelays(o),
		})
	}

	summary.TotalRemainingKg = summary.TotalReceivedKg - summary.TotalDispatchedKg
	if summary.TotalRemainingKg < 0 {
		summary.TotalRemainingKg = 0
	}

	// Rank by total kg descending; insertion order breaks ties so
	// equal inputs always rank identically
	ranked := make([]TopSku, 0, len(buckets))
	for _, key := range order {
		ranked = append(ranked, *buckets[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalKg > ranked[j].TotalKg
	})
	if len(ranked) > TopSkuLimit {
		ranked = ranked[:TopSkuLimit]
	}
	report.TopSkus = ranked

	return report
}

// preferredSkuName picks the SKU name, falling back to the product name
func preferredSkuName(o *domain.Order) string {
	if o.SkuName != "" {
		return o.SkuName
	}
	return o.ProductName
}

func labelOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
