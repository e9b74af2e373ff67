package repository

import (
	"context"

	"procurement-backend/internal/finance"
	"procurement-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct{ s *GormStore }

func (r *orderRepo) filtered(ctx context.Context, f OrderFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.PurchaseOrder{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.SupplierID != 0 {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	return q
}

func (r *orderRepo) List(ctx context.Context, f OrderFilter) ([]models.PurchaseOrder, error) {
	q := r.filtered(ctx, f).
		Preload("Supplier").
		Preload("Project").
		Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.PurchaseOrder
	return out, q.Find(&out).Error
}

func (r *orderRepo) Count(ctx context.Context, f OrderFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	q := r.s.lockRow(r.s.q(ctx)).
		Preload("Supplier").
		Preload("Project").
		Preload("Creator").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	if err := q.First(&o, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, o *models.PurchaseOrder) error {
	return mapErr(r.s.q(ctx).Omit(clause.Associations).Create(o).Error)
}

func (r *orderRepo) ReplaceItems(ctx context.Context, orderID uint, items []models.PurchaseOrderItem) error {
	db := r.s.q(ctx)
	if err := db.Where("purchase_order_id = ?", orderID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].PurchaseOrderID = orderID
	}
	return mapErr(db.Omit("Product").Create(&items).Error)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, s models.OrderStatus) error {
	return affected(r.s.q(ctx).Model(&models.PurchaseOrder{ID: id}).Update("status", s))
}

func (r *orderRepo) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error {
	return affected(r.s.q(ctx).Model(&models.PurchaseOrder{ID: id}).Update("total_amount", total))
}

func (r *orderRepo) Amounts(ctx context.Context) ([]finance.OrderAmount, error) {
	var out []finance.OrderAmount
	err := r.s.q(ctx).Model(&models.PurchaseOrder{}).
		Select("status, total_amount").
		Scan(&out).Error
	return out, err
}
