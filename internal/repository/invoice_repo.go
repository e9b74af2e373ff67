package repository

import (
	"context"

	"procurement-backend/internal/finance"
	"procurement-backend/internal/models"

	"gorm.io/gorm"
)

type invoiceRepo struct{ s *GormStore }

func (r *invoiceRepo) filtered(ctx context.Context, f InvoiceFilter) *gorm.DB {
	q := r.s.q(ctx).Model(&models.Invoice{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.SupplierID != 0 {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	if f.PurchaseOrderID != 0 {
		q = q.Where("purchase_order_id = ?", f.PurchaseOrderID)
	}
	return q
}

func (r *invoiceRepo) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	var out []models.Invoice
	err := r.filtered(ctx, f).
		Preload("Supplier").
		Preload("PurchaseOrder").
		Order("invoice_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *invoiceRepo) Count(ctx context.Context, f InvoiceFilter) (int64, error) {
	var n int64
	return n, r.filtered(ctx, f).Count(&n).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	q := r.s.lockRow(r.s.q(ctx)).
		Preload("Supplier").
		Preload("PurchaseOrder").
		Preload("Creator")
	if err := q.First(&inv, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	return mapErr(r.s.q(ctx).Omit("Supplier", "PurchaseOrder", "Creator").Create(inv).Error)
}

func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	return affected(r.s.q(ctx).Model(&models.Invoice{ID: inv.ID}).Updates(map[string]any{
		"status":      inv.Status,
		"paid_amount": inv.PaidAmount,
	}))
}

func (r *invoiceRepo) Amounts(ctx context.Context) ([]finance.InvoiceAmount, error) {
	var out []finance.InvoiceAmount
	err := r.s.q(ctx).Model(&models.Invoice{}).
		Select("total_amount, paid_amount").
		Scan(&out).Error
	return out, err
}
