package repository

import (
	"context"
	"strings"

	"procurement-backend/internal/models"

	"gorm.io/gorm"
)

type supplierRepo struct{ s *GormStore }

func (r *supplierRepo) filtered(ctx context.Context, f SupplierFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.Supplier{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return q
}

func (r *supplierRepo) List(ctx context.Context, f SupplierFilter) ([]models.Supplier, error) {
	var out []models.Supplier
	return out, r.filtered(ctx, f).Order("name ASC").Find(&out).Error
}

func (r *supplierRepo) Count(ctx context.Context, f SupplierFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	var sup models.Supplier
	if err := r.s.lockRow(r.s.q(ctx)).First(&sup, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &sup, nil
}

func (r *supplierRepo) Create(ctx context.Context, sup *models.Supplier) error {
	return mapErr(r.s.q(ctx).Create(sup).Error)
}

func (r *supplierRepo) Update(ctx context.Context, sup *models.Supplier) error {
	return mapErr(r.s.q(ctx).Save(sup).Error)
}
