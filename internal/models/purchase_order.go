package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderDraft          OrderStatus = "draft"
	OrderSubmitted      OrderStatus = "submitted"
	OrderApproved       OrderStatus = "approved"
	OrderRejected       OrderStatus = "rejected"
	OrderSentToSupplier OrderStatus = "sent_to_supplier"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderInTransit      OrderStatus = "in_transit"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

type PurchaseOrder struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:50;uniqueIndex;not null"`
	SupplierID  uint   `gorm:"index;not null"`
	Supplier    *Supplier
	ProjectID   *uint `gorm:"index"`
	Project     *Project
	CreatedBy   uint        `gorm:"index"`
	Creator     *User       `gorm:"foreignKey:CreatedBy"`
	Status      OrderStatus `gorm:"size:30;not null;index"`

	// Sum of the item total prices. Only written together with the items.
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Notes     string              `gorm:"type:text"`
	Items     []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PurchaseOrderItem struct {
	ID              uint  `gorm:"primaryKey"`
	PurchaseOrderID uint  `gorm:"index;not null"`
	ProductID       *uint `gorm:"index"`
	Product         *Product
	ProductName     string          `gorm:"size:150;not null"` // snapshot at order time
	Quantity        int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt       time.Time
}
