package repository

import (
	"context"

	"procurement-backend/internal/models"

	"gorm.io/gorm"
)

type projectRepo struct{ s *GormStore }

func (r *projectRepo) filtered(ctx context.Context, f ProjectFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.Project{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	return q
}

func (r *projectRepo) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := r.filtered(ctx, f).Preload("Creator").Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Project
	return out, q.Find(&out).Error
}

func (r *projectRepo) Count(ctx context.Context, f ProjectFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

func (r *projectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	q := r.s.lockRow(r.s.q(ctx).Preload("Creator"))
	if err := q.First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *projectRepo) Create(ctx context.Context, p *models.Project) error {
	return mapErr(r.s.q(ctx).Omit("Creator").Create(p).Error)
}

func (r *projectRepo) UpdateStatus(ctx context.Context, id uint, s models.ProjectStatus) error {
	return affected(r.s.q(ctx).Model(&models.Project{ID: id}).Update("status", s))
}
