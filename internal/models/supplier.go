package models

import "time"

type SupplierStatus string

const (
	SupplierPendingValidation SupplierStatus = "pending_validation"
	SupplierValidated         SupplierStatus = "validated"
	SupplierRejected          SupplierStatus = "rejected"
	SupplierSuspended         SupplierStatus = "suspended"
)

type Supplier struct {
	ID            uint           `gorm:"primaryKey"`
	Name          string         `gorm:"size:150;not null"`
	ContactPerson string         `gorm:"size:100"`
	Email         string         `gorm:"size:100"`
	Phone         string         `gorm:"size:30"` // E.164
	Address       string         `gorm:"size:255"`
	Status        SupplierStatus `gorm:"size:30;not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
