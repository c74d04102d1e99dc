package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a sale
type OrderStatus string

const (
	StatusCompleted OrderStatus = "completada"
	StatusCancelled OrderStatus = "cancelada"
)

// Order is a sale header. Total is computed at checkout and trusted as stored.
type Order struct {
	ID        uint            `json:"id" gorm:"primarykey"`
	CreatedAt time.Time       `json:"created_at" gorm:"index"`
	StoreID   StoreID         `json:"store_id" gorm:"index;not null"`
	Store     Store           `json:"store" gorm:"foreignKey:StoreID"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null;default:'completada'"`
	Items     []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is one sold line. ProductName and PriceAtSale are snapshots taken at sale time.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	OrderID     uint            `json:"order_id" gorm:"index;not null"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" gorm:"type:decimal(12,2);not null"`
}

// Subtotal returns PriceAtSale times Quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SoldItem is an order item joined with its order's store, used for product rankings
type SoldItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	StoreID     StoreID `json:"store_id"`
}
