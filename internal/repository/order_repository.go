package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/model"
	"pos-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository backed by gorm
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateSale(ctx context.Context, order *model.Order) error {
	defer prometheus.TrackDBOperation("transaction")(time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if err := tx.Create(&order.Items).Error; err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) ListCompletedOrders(ctx context.Context) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("status = ?", model.StatusCompleted).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) ListCompletedItems(ctx context.Context) ([]model.SoldItem, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var items []model.SoldItem
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_name, order_items.quantity, orders.store_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", model.StatusCompleted).
		Order("order_items.id asc").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return items, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uint, from, to model.OrderStatus) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	db := r.db.WithContext(ctx)
	result := db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update order %d: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&model.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order %d: %w", id, err)
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}
