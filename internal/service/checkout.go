package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/catalog"
	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/events"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Receipt describes a committed sale
type Receipt struct {
	OrderID   uint            `json:"order_id"`
	StoreID   model.StoreID   `json:"store_id"`
	Total     decimal.Decimal `json:"total"`
	Lines     []cart.Line     `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

// CheckoutService runs the cashier screen: catalog, per-session cart and sale finalization
type CheckoutService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	carts     cart.Store
	publisher events.Publisher
	atomic    bool

	// session id -> struct{} while a FinalizeSale is running
	inflight sync.Map
}

// NewCheckoutService wires the checkout dependencies. With atomic set the order header and
// its lines are written in one transaction; otherwise they are two independent writes.
func NewCheckoutService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	carts cart.Store,
	publisher events.Publisher,
	atomic bool,
) *CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &CheckoutService{
		products:  products,
		orders:    orders,
		carts:     carts,
		publisher: publisher,
		atomic:    atomic,
	}
}

// Catalog returns the products matching query, ordered by name
func (s *CheckoutService) Catalog(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(products, query), nil
}

// Cart returns the session's current cart
func (s *CheckoutService) Cart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.carts.Load(ctx, sessionID)
}

// AdjustQuantity applies delta to a product line. The product price is captured the
// first time the product enters the cart and kept for the life of the line.
func (s *CheckoutService) AdjustQuantity(ctx context.Context, sessionID string, productID uint, delta int) (*cart.Cart, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line, inCart := c.Line(productID)
	if !inCart && delta <= 0 {
		return c, nil
	}

	product := line.Product
	if !inCart {
		p, err := s.products.GetProduct(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
		if err != nil {
			return nil, err
		}
		product = *p
	}

	c.AdjustQuantity(product, delta)
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}

	switch {
	case !inCart:
		prometheus.RecordCartOperation("add")
	case delta > 0:
		prometheus.RecordCartOperation("increment")
	default:
		prometheus.RecordCartOperation("decrement")
	}
	return c, nil
}

// RemoveItem drops a product line regardless of its quantity
func (s *CheckoutService) RemoveItem(ctx context.Context, sessionID string, productID uint) (*cart.Cart, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Quantity(productID) == 0 {
		return c, nil
	}

	c.Remove(productID)
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	prometheus.RecordCartOperation("remove")
	return c, nil
}

// ClearSession discards the session's cart, used on logout
func (s *CheckoutService) ClearSession(ctx context.Context, sessionID string) error {
	return s.carts.Clear(ctx, sessionID)
}

// FinalizeSale turns the session's cart into a completed order for storeID. The cart is
// cleared only when the whole sale was written.
func (s *CheckoutService) FinalizeSale(ctx context.Context, sessionID string, storeID model.StoreID) (*Receipt, error) {
	log := logger.FromContext(ctx).With(zap.String("session_id", sessionID), zap.Uint("store_id", uint(storeID)))

	if _, running := s.inflight.LoadOrStore(sessionID, struct{}{}); running {
		prometheus.RecordCheckoutFailure("in_progress")
		log.Warn("Checkout rejected, another one is in flight")
		return nil, ErrCheckoutInProgress
	}
	defer s.inflight.Delete(sessionID)

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		prometheus.RecordCheckoutFailure("empty_cart")
		return nil, ErrEmptyCart
	}
	if !storeID.Valid() {
		prometheus.RecordCheckoutFailure("store_undefined")
		return nil, ErrStoreUndefined
	}

	order := &model.Order{
		StoreID: storeID,
		Total:   c.Total(),
		Status:  model.StatusCompleted,
		Items:   orderItems(c),
	}

	if s.atomic {
		if err := s.orders.CreateSale(ctx, order); err != nil {
			prometheus.RecordCheckoutFailure("transaction")
			log.Error("Failed to write sale", zap.Error(err))
			return nil, &OrderInsertError{Err: err}
		}
	} else if err := s.writeTwoStep(ctx, order); err != nil {
		log.Error("Failed to write sale", zap.Error(err))
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Error("Failed to clear cart after sale", zap.Uint("order_id", order.ID), zap.Error(err))
	}

	prometheus.RecordSale(uint(storeID), order.Total.InexactFloat64())
	log.Info("Sale completed",
		zap.Uint("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("lines", len(order.Items)))

	publishEvent(ctx, s.publisher, order.ID, saleCompletedEvent(order))

	return &Receipt{
		OrderID:   order.ID,
		StoreID:   storeID,
		Total:     order.Total,
		Lines:     c.Lines,
		CreatedAt: order.CreatedAt,
	}, nil
}

func (s *CheckoutService) writeTwoStep(ctx context.Context, order *model.Order) error {
	items := order.Items
	order.Items = nil

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		prometheus.RecordCheckoutFailure("order_insert")
		return &OrderInsertError{Err: err}
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.orders.CreateOrderItems(ctx, items); err != nil {
		prometheus.RecordCheckoutFailure("items_insert")
		return &ItemsInsertError{OrderID: order.ID, Err: err}
	}

	order.Items = items
	return nil
}

// publishEvent is best effort: the sale is already committed when it runs.
func publishEvent(ctx context.Context, publisher events.Publisher, orderID uint, event any) {
	if err := publisher.PublishEvent(ctx, strconv.FormatUint(uint64(orderID), 10), event); err != nil {
		prometheus.RecordEventPublishError()
		logger.FromContext(ctx).Warn("Failed to publish sale event", zap.Uint("order_id", orderID), zap.Error(err))
	}
}

func orderItems(c *cart.Cart) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, model.OrderItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			PriceAtSale: l.Product.Price,
		})
	}
	return items
}

func saleCompletedEvent(order *model.Order) events.SaleCompleted {
	lines := make([]events.SaleLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, events.SaleLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceAtSale: it.PriceAtSale,
		})
	}
	return events.SaleCompleted{
		Type:       events.TypeSaleCompleted,
		OrderID:    order.ID,
		StoreID:    uint(order.StoreID),
		Total:      order.Total,
		Items:      lines,
		OccurredAt: time.Now().UTC(),
	}
}
