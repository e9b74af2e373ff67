package repository

import (
	"context"

	"procurement-backend/internal/models"

	"gorm.io/gorm"
)

type erpLogRepo struct{ s *GormStore }

func (r *erpLogRepo) filtered(ctx context.Context, f ErpLogFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.ErpLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	return q
}

func (r *erpLogRepo) Create(ctx context.Context, l *models.ErpLog) error {
	return mapErr(r.s.q(ctx).Create(l).Error)
}

func (r *erpLogRepo) List(ctx context.Context, f ErpLogFilter) ([]models.ErpLog, error) {
	q := r.filtered(ctx, f).Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.ErpLog
	return out, q.Find(&out).Error
}

func (r *erpLogRepo) Count(ctx context.Context, f ErpLogFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

type auditLogRepo struct{ s *GormStore }

func (r *auditLogRepo) Create(ctx context.Context, l *models.AuditLog) error {
	return mapErr(r.s.q(ctx).Create(l).Error)
}

func (r *auditLogRepo) List(ctx context.Context, f AuditLogFilter) ([]models.AuditLog, error) {
	q := r.s.q(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.AuditLog
	return out, q.Order("created_at DESC, id DESC").Find(&out).Error
}
