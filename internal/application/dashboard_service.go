package application

import (
	"context"
	"strings"
	"time"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/logging"
)

// DashboardService aggregates the whole order set into the dashboard
// view model. The computation itself is a pure function of the loaded
// orders and the current time; the service only adds data loading and
// logging around it.
type DashboardService struct {
	orders domain.OrderRepository
	gauge  DelayedOrdersGauge
	logger *logging.Logger
}

// DelayedOrdersGauge receives the delayed-order count each time the
// dashboard is computed.
type DelayedOrdersGauge interface {
	SetDelayedOrders(count int)
}

// NewDashboardService creates a new DashboardService. The gauge may be
// nil when metrics are not wired.
func NewDashboardService(orders domain.OrderRepository, gauge DelayedOrdersGauge, logger *logging.Logger) *DashboardService {
	return &DashboardService{
		orders: orders,
		gauge:  gauge,
		logger: logger,
	}
}

// GetDashboard loads all orders and computes the dashboard snapshot
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardSnapshot, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load orders for dashboard", "error", err)
		return nil, err
	}

	snapshot := ComputeDashboard(orders, time.Now())
	if s.gauge != nil {
		s.gauge.SetDelayedOrders(snapshot.Delayed)
	}
	s.logger.Debug("Dashboard computed",
		"total", snapshot.Total,
		"active", snapshot.Active,
		"delayed", snapshot.Delayed,
	)
	return snapshot, nil
}

// GetStats loads all orders and computes the legacy four-stage counters
func (s *DashboardService) GetStats(ctx context.Context) (*LegacyStats, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load orders for stats", "error", err)
		return nil, err
	}
	return ComputeLegacyStats(orders), nil
}

// ComputeDashboard derives the dashboard snapshot from an order set.
// Pure: it never mutates its inputs, so it is safe to call from
// concurrent requests, and two calls with the same orders and the same
// now produce identical snapshots.
func ComputeDashboard(orders []domain.Order, now time.Time) *DashboardSnapshot {
	snapshot := &DashboardSnapshot{
		Total:       len(orders),
		StageCounts: make([]StageCount, domain.NumStages),
	}

	for i, def := range domain.Pipeline {
		snapshot.StageCounts[i] = StageCount{ID: def.ID, Label: def.Label}
	}
	// Order Punch: every punched order has completed it
	snapshot.StageCounts[0].Completed = len(orders)

	today := startOfDay(now)
	summaries := make([]OrderSummary, 0, len(orders))

	for i := range orders {
		order := &orders[i]

		if !order.IsTerminal() {
			snapshot.Active++
		}
		if order.StageDone(domain.GateOutStageIndex) {
			snapshot.Completed++
		}
		if domain.IsDelayed(order, now) {
			snapshot.Delayed++
		}
		if order.IsCancelled() {
			snapshot.Cancelled++
		}

		// Per-stage counts. Pending means the previous stage is done
		// but this one is not: the order is sitting in this stage's
		// queue right now.
		for idx := 1; idx < domain.NumStages; idx++ {
			if order.StageDone(idx) {
				snapshot.StageCounts[idx].Completed++
			} else if order.StageDone(idx - 1) {
				snapshot.StageCounts[idx].Pending++
			}
		}

		summaries = append(summaries, summarizeOrder(order, now))

		if !order.CreatedAt.Before(today) {
			snapshot.CreatedToday++
		}
		if stampedToday(order.StageActual(domain.DispatchStageIndex), today) {
			snapshot.DispatchedToday++
		}
		if stampedToday(order.StageActual(domain.InvoiceStageIndex), today) {
			snapshot.InvoicedToday++
		}
		delivered := order.StageActual(domain.ReceiptStageIndex)
		if delivered == nil {
			delivered = order.StageActual(domain.FinalStageIndex)
		}
		if stampedToday(delivered, today) {
			snapshot.DeliveredToday++
		}
	}

	snapshot.RecentOrders = summaries
	snapshot.PendingOrders = make([]OrderSummary, 0, len(summaries))
	snapshot.CompletedOrders = make([]OrderSummary, 0)
	for i := range orders {
		if !orders[i].IsTerminal() {
			snapshot.PendingOrders = append(snapshot.PendingOrders, summaries[i])
		}
		if orders[i].StageDone(domain.GateOutStageIndex) {
			snapshot.CompletedOrders = append(snapshot.CompletedOrders, summaries[i])
		}
	}

	return snapshot
}

// ComputeLegacyStats derives the original four-counter stats block
func ComputeLegacyStats(orders []domain.Order) *LegacyStats {
	stats := &LegacyStats{TotalOrders: len(orders)}
	for i := range orders {
		order := &orders[i]
		if order.StagePlanned(1) != nil && order.StageActual(1) == nil {
			stats.PendingPreApproval++
		}
		if order.StagePlanned(2) != nil && order.StageActual(2) == nil {
			stats.PendingApproval++
		}
		if order.StageActual(domain.PlanningStageIndex) != nil {
			stats.CompletedOrders++
		}
	}
	return stats
}

func summarizeOrder(order *domain.Order, now time.Time) OrderSummary {
	progress := domain.ComputeStageProgress(order)
	return OrderSummary{
		OrderNo:         order.OrderNo,
		CustomerName:    order.CustomerName,
		CreatedAt:       order.CreatedAt,
		Stage:           progress.CurrentStageID,
		StageLabel:      progress.CurrentStageLabel,
		StageIndex:      progress.CurrentStageIndex,
		CompletedStages: progress.CompletedStages,
		TotalStages:     progress.TotalStages,
		Delayed:         domain.IsDelayed(order, now),
		Status:          orderStatus(order),
	}
}

// orderStatus derives the display status: orders past Gate Out read as
// completed, otherwise the overall status text (lowercased) or pending
func orderStatus(order *domain.Order) string {
	if order.StageDone(domain.FinalStageIndex) || order.StageDone(domain.GateOutStageIndex) {
		return "completed"
	}
	if order.OverallStatus != "" {
		return strings.ToLower(order.OverallStatus)
	}
	return "pending"
}

// startOfDay returns local midnight for the "today" activity window
func startOfDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

func stampedToday(at *time.Time, today time.Time) bool {
	return at != nil && !at.In(today.Location()).Before(today)
}
