package repository

import (
	"context"

	"procurement-backend/internal/models"
)

type receptionRepo struct{ s *GormStore }

func (r *receptionRepo) List(ctx context.Context, f ReceptionFilter) ([]models.Reception, error) {
	q := r.s.q(ctx).Preload("PurchaseOrder").Preload("Receiver")
	if f.PurchaseOrderID != 0 {
		q = q.Where("purchase_order_id = ?", f.PurchaseOrderID)
	}
	var out []models.Reception
	return out, q.Order("reception_date DESC").Find(&out).Error
}

func (r *receptionRepo) FindByID(ctx context.Context, id uint) (*models.Reception, error) {
	var rec models.Reception
	if err := r.s.q(ctx).Preload("PurchaseOrder").First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &rec, nil
}

func (r *receptionRepo) Create(ctx context.Context, rec *models.Reception) error {
	return mapErr(r.s.q(ctx).Omit("PurchaseOrder", "Receiver").Create(rec).Error)
}

type qualityRepo struct{ s *GormStore }

func (r *qualityRepo) List(ctx context.Context, f QualityCheckFilter) ([]models.QualityCheck, error) {
	q := r.s.q(ctx).
		Preload("Reception").
		Preload("Product").
		Preload("Inspector")
	if len(f.Results) > 0 {
		q = q.Where("result IN ?", f.Results)
	}
	if f.ReceptionID != 0 {
		q = q.Where("reception_id = ?", f.ReceptionID)
	}
	var out []models.QualityCheck
	return out, q.Order("checked_at DESC").Find(&out).Error
}

func (r *qualityRepo) FindByID(ctx context.Context, id uint) (*models.QualityCheck, error) {
	var qc models.QualityCheck
	err := r.s.q(ctx).
		Preload("Reception").
		Preload("Product").
		Preload("Inspector").
		First(&qc, "id = ?", id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &qc, nil
}

func (r *qualityRepo) Create(ctx context.Context, qc *models.QualityCheck) error {
	return mapErr(r.s.q(ctx).Omit("Reception", "Product", "Inspector").Create(qc).Error)
}
