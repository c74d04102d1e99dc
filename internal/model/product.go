package model

import (
	"github.com/shopspring/decimal"
)

// Product is catalog data. The POS only ever reads it.
type Product struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;index"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL    string          `json:"image_url,omitempty" gorm:"type:text"`
	Category    string          `json:"category,omitempty" gorm:"type:varchar(100)"`
	Subcategory string          `json:"subcategory,omitempty" gorm:"type:varchar(100)"`
}
