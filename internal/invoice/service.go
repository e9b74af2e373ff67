package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/erp"
	"procurement-backend/internal/finance"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service struct {
	store  repository.Store
	syncer *erp.Syncer
	logger *logrus.Logger
}

func NewService(store repository.Store, syncer *erp.Syncer, logger *logrus.Logger) *Service {
	return &Service{store: store, syncer: syncer, logger: logger}
}

type CreateInput struct {
	InvoiceNumber   string
	SupplierID      uint
	PurchaseOrderID *uint
	Status          models.InvoiceStatus
	InvoiceDate     time.Time
	DueDate         *time.Time
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	Notes           string
}

func (s *Service) List(ctx context.Context, f repository.InvoiceFilter) ([]models.Invoice, error) {
	return s.store.Invoices().List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.store.Invoices().FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.Invoice, error) {
	if in.Status == "" {
		in.Status = models.InvoiceDraft
	}
	if err := status.CheckInitial(status.Invoice, string(in.Status)); err != nil {
		return nil, err
	}
	if in.TotalAmount.IsNegative() {
		return nil, &httpx.ValidationError{Fields: map[string]string{"total_amount": "gte"}}
	}
	if in.PaidAmount.IsNegative() {
		return nil, &httpx.ValidationError{Fields: map[string]string{"paid_amount": "gte"}}
	}
	if in.DueDate != nil && in.DueDate.Before(in.InvoiceDate) {
		return nil, &httpx.ValidationError{Fields: map[string]string{"due_date": "gtefield"}}
	}

	inv := &models.Invoice{
		InvoiceNumber:   strings.TrimSpace(in.InvoiceNumber),
		SupplierID:      in.SupplierID,
		PurchaseOrderID: in.PurchaseOrderID,
		Status:          in.Status,
		InvoiceDate:     in.InvoiceDate,
		DueDate:         in.DueDate,
		TotalAmount:     in.TotalAmount.Round(finance.CurrencyPlaces),
		PaidAmount:      in.PaidAmount.Round(finance.CurrencyPlaces),
		Notes:           strings.TrimSpace(in.Notes),
		CreatedBy:       actor.ID,
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Suppliers().FindByID(ctx, in.SupplierID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &httpx.ValidationError{Fields: map[string]string{"supplier_id": "exists"}}
			}
			return err
		}
		if in.PurchaseOrderID != nil {
			o, err := tx.Orders().FindByID(ctx, *in.PurchaseOrderID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &httpx.ValidationError{Fields: map[string]string{"purchase_order_id": "exists"}}
				}
				return err
			}
			if o.SupplierID != in.SupplierID {
				return &httpx.ValidationError{Fields: map[string]string{"purchase_order_id": "supplier_mismatch"}}
			}
		}
		return tx.Invoices().Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  erp.EntityInvoice,
		EntityID:    inv.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Invoice %s created, total %s", inv.InvoiceNumber, inv.TotalAmount.StringFixed(finance.CurrencyPlaces)),
		After:       inv,
	})
	return s.store.Invoices().FindByID(ctx, inv.ID)
}

// ChangeStatus moves the invoice along its lifecycle. Moving to paid goes
// through MarkAsPaid so the paid amount is settled with it.
func (s *Service) ChangeStatus(ctx context.Context, actor audit.Actor, id uint, next models.InvoiceStatus) (*models.Invoice, error) {
	if next == models.InvoicePaid {
		return s.MarkAsPaid(ctx, actor, id)
	}

	var from models.InvoiceStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		inv, err := tx.Invoices().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = inv.Status
		if err := status.CheckTransition(status.Invoice, string(from), string(next)); err != nil {
			return err
		}
		inv.Status = next
		return tx.Invoices().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  erp.EntityInvoice,
		EntityID:    id,
		Action:      models.AuditActionStatusChange,
		Description: fmt.Sprintf("%s -> %s", from, next),
		Before:      map[string]string{"status": string(from)},
		After:       map[string]string{"status": string(next)},
	})
	return s.store.Invoices().FindByID(ctx, id)
}

// MarkAsPaid sets the invoice to paid with paid_amount = total_amount and
// appends a mark_as_paid erp log, all in one transaction. A previous partial
// payment is overwritten, not added to.
func (s *Service) MarkAsPaid(ctx context.Context, actor audit.Actor, id uint) (*models.Invoice, error) {
	var before models.Invoice
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		inv, err := tx.Invoices().FindByID(ctx, id)
		if err != nil {
			return err
		}
		before = *inv
		if err := status.CheckTransition(status.Invoice, string(inv.Status), string(models.InvoicePaid)); err != nil {
			return err
		}

		inv.Status = models.InvoicePaid
		inv.PaidAmount = inv.TotalAmount
		if err := tx.Invoices().Update(ctx, inv); err != nil {
			return err
		}
		return tx.ErpLogs().Create(ctx, &models.ErpLog{
			EntityType: erp.EntityInvoice,
			EntityID:   id,
			Action:     models.ErpActionMarkAsPaid,
			Status:     models.ErpLogSuccess,
		})
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  erp.EntityInvoice,
		EntityID:    id,
		Action:      models.AuditActionStatusChange,
		Description: fmt.Sprintf("Invoice %s marked as paid", before.InvoiceNumber),
		Before:      map[string]any{"status": before.Status, "paid_amount": before.PaidAmount},
		After:       map[string]any{"status": models.InvoicePaid, "paid_amount": before.TotalAmount},
	})
	return s.store.Invoices().FindByID(ctx, id)
}

// Sync pushes the invoice to the ERP. See erp.Syncer for the log semantics.
func (s *Service) Sync(ctx context.Context, id uint) (*erp.SyncResult, error) {
	return s.syncer.SyncInvoice(ctx, id)
}
