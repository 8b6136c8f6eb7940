package application

import (
	"context"
	"time"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/events"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/logging"
)

// EventPublisher publishes stage-transition envelopes downstream
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *events.Envelope) error
}

// DispatchEventsTopic is the Kafka topic stage transitions are published to
const DispatchEventsTopic = "dispatch.order.events"

// DispatchService is the write side: order punch, stage planning and
// completion, partial dispatch and cancellation. All invariants live
// on the Order aggregate; this service adds persistence, event
// publication and logging.
type DispatchService struct {
	orders       domain.OrderRepository
	publisher    EventPublisher
	eventFactory *events.Factory
	logger       *logging.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	orders domain.OrderRepository,
	publisher EventPublisher,
	eventFactory *events.Factory,
	logger *logging.Logger,
) *DispatchService {
	return &DispatchService{
		orders:       orders,
		publisher:    publisher,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// PunchOrder creates one order record per line and returns them. Every
// line of a multi-line order shares the same base sequence number.
func (s *DispatchService) PunchOrder(ctx context.Context, cmd PunchOrderCommand) ([]*OrderDTO, error) {
	lines := cmd.Lines
	if lines < 1 {
		lines = 1
	}

	seq, err := s.orders.NextOrderSequence(ctx)
	if err != nil {
		s.logger.Error("Failed to allocate order sequence", "error", err)
		return nil, err
	}

	dtos := make([]*OrderDTO, 0, lines)
	for line := 1; line <= lines; line++ {
		suffix := line
		if lines == 1 {
			suffix = 0
		}
		orderNo := domain.FormatOrderNo(seq, suffix)

		order, err := domain.NewOrder(orderNo, cmd.CustomerName, cmd.SkuName, cmd.Quantity, cmd.UOM)
		if err != nil {
			return nil, err
		}
		order.OilType = cmd.OilType

		if err := s.saveAndPublish(ctx, order); err != nil {
			return nil, err
		}

		s.logger.Info("Order punched", "orderNo", orderNo, "customer", cmd.CustomerName)
		dtos = append(dtos, toOrderDTO(order))
	}
	return dtos, nil
}

// PlanStage sets the planned timestamp for a stage
func (s *DispatchService) PlanStage(ctx context.Context, cmd PlanStageCommand) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, cmd.OrderNo)
	if err != nil {
		return nil, err
	}

	plannedAt := cmd.PlannedAt
	if plannedAt.IsZero() {
		plannedAt = time.Now().UTC()
	}

	if err := order.PlanStage(cmd.StageIndex, plannedAt); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Stage planned",
		"orderNo", order.OrderNo,
		"stage", domain.StageAt(cmd.StageIndex).ID,
	)
	return toOrderDTO(order), nil
}

// CompleteStage stamps the actual timestamp for a stage
func (s *DispatchService) CompleteStage(ctx context.Context, cmd CompleteStageCommand) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, cmd.OrderNo)
	if err != nil {
		return nil, err
	}

	actualAt := cmd.ActualAt
	if actualAt.IsZero() {
		actualAt = time.Now().UTC()
	}

	if err := order.CompleteStage(cmd.StageIndex, actualAt); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Stage completed",
		"orderNo", order.OrderNo,
		"stage", domain.StageAt(cmd.StageIndex).ID,
	)
	return toOrderDTO(order), nil
}

// SubmitDispatch applies a partial or full dispatch against the
// order's balance; exhausting the balance completes Dispatch Planning
func (s *DispatchService) SubmitDispatch(ctx context.Context, cmd SubmitDispatchCommand) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, cmd.OrderNo)
	if err != nil {
		return nil, err
	}

	completed, err := order.RecordDispatch(cmd.DispatchQty, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Dispatch recorded",
		"orderNo", order.OrderNo,
		"dispatchQty", cmd.DispatchQty,
		"remaining", *order.RemainingDispatchQty,
		"completed", completed,
	)
	return toOrderDTO(order), nil
}

// CancelOrder cancels or rejects an order
func (s *DispatchService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, cmd.OrderNo)
	if err != nil {
		return nil, err
	}

	order.Cancel(cmd.Reason)
	if err := s.saveAndPublish(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled", "orderNo", order.OrderNo, "reason", cmd.Reason)
	return toOrderDTO(order), nil
}

// GetOrder returns the full order detail including stage progress
func (s *DispatchService) GetOrder(ctx context.Context, orderNo string) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// GetStageProgress computes the standalone stage-progress summary for
// a single order detail view
func (s *DispatchService) GetStageProgress(ctx context.Context, orderNo string) (*domain.StageProgress, error) {
	order, err := s.loadOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	progress := domain.ComputeStageProgress(order)
	return &progress, nil
}

func (s *DispatchService) loadOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	order, err := s.orders.FindByOrderNo(ctx, orderNo)
	if err != nil {
		s.logger.Error("Failed to load order", "orderNo", orderNo, "error", err)
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// saveAndPublish persists the aggregate then publishes its pending
// domain events. Publish failures are logged but do not roll back the
// write; the dashboard reads the store, not the stream.
func (s *DispatchService) saveAndPublish(ctx context.Context, order *domain.Order) error {
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("Failed to save order", "orderNo", order.OrderNo, "error", err)
		return err
	}

	if s.publisher != nil {
		for _, domainEvent := range order.DomainEvents() {
			envelope := s.eventFactory.
				CreateEvent(ctx, domainEvent.EventType(), "order/"+order.OrderNo, domainEvent).
				WithOrder(order.OrderNo, stageOfEvent(domainEvent))
			if err := s.publisher.PublishEvent(ctx, DispatchEventsTopic, envelope); err != nil {
				s.logger.Warn("Failed to publish stage event",
					"orderNo", order.OrderNo,
					"eventType", domainEvent.EventType(),
					"error", err,
				)
			}
		}
	}

	order.ClearDomainEvents()
	return nil
}

func stageOfEvent(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.StagePlannedEvent:
		return string(e.Stage)
	case *domain.StageCompletedEvent:
		return string(e.Stage)
	default:
		return ""
	}
}
