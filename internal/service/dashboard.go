package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/internal/sales"
	"pos-service/pkg/events"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"go.uber.org/zap"
)

// DashboardService serves the administrator screen
type DashboardService struct {
	orders    repository.OrderRepository
	publisher events.Publisher
}

// NewDashboardService creates a dashboard service
func NewDashboardService(orders repository.OrderRepository, publisher events.Publisher) *DashboardService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &DashboardService{orders: orders, publisher: publisher}
}

// Load runs the two bulk reads and summarizes them for the filter. A failed read is
// logged and contributes an empty set, so the returned summary is always renderable;
// the error reports what was missing.
func (s *DashboardService) Load(ctx context.Context, filter sales.StoreFilter) (sales.Summary, error) {
	log := logger.FromContext(ctx)

	var errs []error
	orders, err := s.orders.ListCompletedOrders(ctx)
	if err != nil {
		log.Error("Failed to load orders", zap.Error(err))
		errs = append(errs, err)
		orders = nil
	}

	items, err := s.orders.ListCompletedItems(ctx)
	if err != nil {
		log.Error("Failed to load order items", zap.Error(err))
		errs = append(errs, err)
		items = nil
	}

	summary := sales.Summarize(orders, items, filter)
	log.Debug("Dashboard loaded",
		zap.String("store", filter.String()),
		zap.Int("orders", summary.TicketCount),
		zap.Int("top_products", len(summary.TopProducts)))

	return summary, errors.Join(errs...)
}

// Order returns one sale with its lines
func (s *DashboardService) Order(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: #%d", ErrOrderNotFound, id)
	}
	return order, err
}

// CancelSale marks a completed sale as cancelled. Nothing is written unless confirmed
// is set. Cancelling an already cancelled sale succeeds without publishing again.
func (s *DashboardService) CancelSale(ctx context.Context, id uint, confirmed bool) error {
	log := logger.FromContext(ctx).With(zap.Uint("order_id", id))

	if !confirmed {
		prometheus.RecordCancellation("unconfirmed")
		return ErrConfirmationRequired
	}

	changed, err := s.orders.UpdateOrderStatus(ctx, id, model.StatusCompleted, model.StatusCancelled)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		prometheus.RecordCancellation("not_found")
		log.Warn("Cancel requested for unknown sale")
		return fmt.Errorf("%w: #%d", ErrOrderNotFound, id)
	case err != nil:
		prometheus.RecordCancellation("error")
		log.Error("Failed to cancel sale", zap.Error(err))
		return err
	case !changed:
		prometheus.RecordCancellation("already_cancelled")
		log.Info("Sale already cancelled")
		return nil
	}

	prometheus.RecordCancellation("cancelled")
	log.Info("Sale cancelled")

	publishEvent(ctx, s.publisher, id, events.SaleCancelled{
		Type:       events.TypeSaleCancelled,
		OrderID:    id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
