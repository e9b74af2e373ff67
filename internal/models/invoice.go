package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft             InvoiceStatus = "draft"
	InvoicePendingValidation InvoiceStatus = "pending_validation"
	InvoiceValidated         InvoiceStatus = "validated"
	InvoicePaid              InvoiceStatus = "paid"
	InvoiceDisputed          InvoiceStatus = "disputed"
	InvoiceCancelled         InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID              uint   `gorm:"primaryKey"`
	InvoiceNumber   string `gorm:"size:50;uniqueIndex;not null"`
	SupplierID      uint   `gorm:"index;not null"`
	Supplier        *Supplier
	PurchaseOrderID *uint `gorm:"index"`
	PurchaseOrder   *PurchaseOrder
	Status          InvoiceStatus   `gorm:"size:30;not null;index"`
	InvoiceDate     time.Time       `gorm:"type:date;not null"`
	DueDate         *time.Time      `gorm:"type:date"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Notes           string          `gorm:"type:text"`
	CreatedBy       uint            `gorm:"index"`
	Creator         *User           `gorm:"foreignKey:CreatedBy"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
