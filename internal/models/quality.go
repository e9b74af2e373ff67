package models

import "time"

type QualityResult string

const (
	QualityPassed      QualityResult = "passed"
	QualityFailed      QualityResult = "failed"
	QualityConditional QualityResult = "conditional"
)

// Reception records goods arriving against a purchase order.
type Reception struct {
	ID              uint   `gorm:"primaryKey"`
	ReceptionNumber string `gorm:"size:50;uniqueIndex;not null"`
	PurchaseOrderID uint   `gorm:"index;not null"`
	PurchaseOrder   *PurchaseOrder
	ReceptionDate   time.Time `gorm:"not null;index"`
	ReceivedBy      uint      `gorm:"index"`
	Receiver        *User     `gorm:"foreignKey:ReceivedBy"`
	Notes           string    `gorm:"type:text"`
	CreatedAt       time.Time
}

type QualityCheck struct {
	ID          uint `gorm:"primaryKey"`
	ReceptionID uint `gorm:"index;not null"`
	Reception   *Reception
	ProductID   *uint `gorm:"index"`
	Product     *Product
	CheckType   string        `gorm:"size:80;not null"`
	Result      QualityResult `gorm:"size:20;not null;index"`
	InspectorID uint          `gorm:"index"`
	Inspector   *User         `gorm:"foreignKey:InspectorID"`
	Notes       string        `gorm:"type:text"`
	CheckedAt   time.Time     `gorm:"not null;index"`
	CreatedAt   time.Time
}
