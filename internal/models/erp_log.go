package models

import "time"

type ErpLogStatus string

const (
	ErpLogSuccess ErpLogStatus = "success"
	ErpLogFailed  ErpLogStatus = "failed"
	ErpLogPending ErpLogStatus = "pending"
)

const (
	ErpActionSyncToErp  = "sync_to_erp"
	ErpActionMarkAsPaid = "mark_as_paid"
)

// ErpLog is one outbound ERP synchronization attempt.
type ErpLog struct {
	ID           uint         `gorm:"primaryKey"`
	EntityType   string       `gorm:"size:50;index;not null"`
	EntityID     uint         `gorm:"index;not null"`
	Action       string       `gorm:"size:50;not null"`
	Status       ErpLogStatus `gorm:"size:20;not null;index"`
	ErrorMessage *string      `gorm:"type:text"`
	CreatedAt    time.Time    `gorm:"index"`
}
