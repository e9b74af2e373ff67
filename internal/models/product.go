package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              uint            `gorm:"primaryKey"`
	Name            string          `gorm:"size:150;not null"`
	SKU             string          `gorm:"column:sku;size:60;uniqueIndex;not null"`
	Category        string          `gorm:"size:80;index"`
	Description     string          `gorm:"type:text"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	QuantityInStock int64           `gorm:"not null;default:0"`
	ReorderLevel    int64           `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock reports whether the product is at or below its reorder level.
func (p Product) IsLowStock() bool {
	return p.QuantityInStock <= p.ReorderLevel
}
