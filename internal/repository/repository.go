package repository

import (
	"context"
	"errors"

	"pos-service/internal/model"
)

// ErrNotFound is returned when a looked-up row does not exist
var ErrNotFound = errors.New("record not found")

// ProductRepository reads the catalog
type ProductRepository interface {
	// ListProducts returns the full catalog ordered by name ascending.
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
}

// OrderRepository reads and writes sales
type OrderRepository interface {
	// CreateOrder inserts the header only; Items are ignored.
	CreateOrder(ctx context.Context, order *model.Order) error
	// CreateOrderItems bulk inserts lines of an existing order.
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error
	// CreateSale inserts the header and its Items in one transaction.
	CreateSale(ctx context.Context, order *model.Order) error

	// ListCompletedOrders returns completed orders newest first with their store.
	ListCompletedOrders(ctx context.Context) ([]model.Order, error)
	// ListCompletedItems returns lines of completed orders with the order's store.
	ListCompletedItems(ctx context.Context) ([]model.SoldItem, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	// UpdateOrderStatus moves an order from one status to another. changed is false when
	// the order exists but is not in status from; a missing order is ErrNotFound.
	UpdateOrderStatus(ctx context.Context, id uint, from, to model.OrderStatus) (changed bool, err error)
}
