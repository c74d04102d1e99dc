// Package events publishes sale lifecycle events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeSaleCompleted = "sale.completed"
	TypeSaleCancelled = "sale.cancelled"
)

// Publisher sends one event keyed for partitioning
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
	Close() error
}

// SaleLine is one sold line inside a SaleCompleted event
type SaleLine struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

// SaleCompleted is emitted after a checkout commits
type SaleCompleted struct {
	Type       string          `json:"type"`
	OrderID    uint            `json:"order_id"`
	StoreID    uint            `json:"store_id"`
	Total      decimal.Decimal `json:"total"`
	Items      []SaleLine      `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// SaleCancelled is emitted after an administrator cancels a sale
type SaleCancelled struct {
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
