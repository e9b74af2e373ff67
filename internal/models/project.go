package models

import "time"

type ProjectStatus string

const (
	ProjectDraft           ProjectStatus = "draft"
	ProjectPendingApproval ProjectStatus = "pending_approval"
	ProjectApproved        ProjectStatus = "approved"
	ProjectInProgress      ProjectStatus = "in_progress"
	ProjectCompleted       ProjectStatus = "completed"
	ProjectCancelled       ProjectStatus = "cancelled"
)

type Project struct {
	ID          uint          `gorm:"primaryKey"`
	Title       string        `gorm:"size:200;not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"size:30;not null;index"`
	CreatedBy   uint          `gorm:"index"`
	Creator     *User         `gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
