package repository

import (
	"context"

	"procurement-backend/internal/models"

	"gorm.io/gorm"
)

type productRepo struct{ s *GormStore }

func (r *productRepo) filtered(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.Product{})
	if f.LowStock {
		q = q.Where("quantity_in_stock <= reorder_level")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

func (r *productRepo) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var out []models.Product
	return out, r.filtered(ctx, f).Order("name ASC").Find(&out).Error
}

func (r *productRepo) Count(ctx context.Context, f ProductFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.s.lockRow(r.s.q(ctx)).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var out []models.Product
	if len(ids) == 0 {
		return out, nil
	}
	return out, r.s.q(ctx).Where("id IN ?", ids).Find(&out).Error
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return mapErr(r.s.q(ctx).Create(p).Error)
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	return mapErr(r.s.q(ctx).Save(p).Error)
}
