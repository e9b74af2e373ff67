package memory

import (
	"context"
	"errors"
	"testing"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/shopspring/decimal"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Suppliers().Create(ctx, &models.Supplier{Name: "Acme", Status: models.SupplierPendingValidation}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := s.Suppliers().Count(ctx, repository.SupplierFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("supplier survived rollback: count=%d", n)
	}
}

func TestTransactionCommits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx repository.Store) error {
		return tx.Transaction(ctx, func(inner repository.Store) error {
			return inner.Suppliers().Create(ctx, &models.Supplier{Name: "Acme", Status: models.SupplierValidated})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := s.Suppliers().Count(ctx, repository.SupplierFilter{Statuses: []models.SupplierStatus{models.SupplierValidated}})
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestFailNextIsOneShot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.FailNext("erp_logs.create", errors.New("disk full"))

	if err := s.ErpLogs().Create(ctx, &models.ErpLog{EntityType: "invoice", EntityID: 1}); err == nil {
		t.Fatal("expected injected failure")
	}
	if err := s.ErpLogs().Create(ctx, &models.ErpLog{EntityType: "invoice", EntityID: 1}); err != nil {
		t.Fatalf("second insert: %v", err)
	}
}

func TestLowStockFilterIncludesBoundary(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, p := range []models.Product{
		{Name: "Below", SKU: "A", QuantityInStock: 2, ReorderLevel: 5},
		{Name: "Equal", SKU: "B", QuantityInStock: 5, ReorderLevel: 5},
		{Name: "Above", SKU: "C", QuantityInStock: 6, ReorderLevel: 5},
	} {
		p := p
		if err := s.Products().Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}

	low, err := s.Products().List(ctx, repository.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 2 || low[0].Name != "Below" || low[1].Name != "Equal" {
		t.Fatalf("unexpected low stock list: %+v", low)
	}
}

func TestOrderFindByIDExpandsRelations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	sup := &models.Supplier{Name: "Acme", Status: models.SupplierValidated}
	if err := s.Suppliers().Create(ctx, sup); err != nil {
		t.Fatal(err)
	}
	o := &models.PurchaseOrder{OrderNumber: "PO-1", SupplierID: sup.ID, Status: models.OrderDraft}
	if err := s.Orders().Create(ctx, o); err != nil {
		t.Fatal(err)
	}
	items := []models.PurchaseOrderItem{
		{ProductName: "Bolt", Quantity: 2, UnitPrice: decimal.NewFromInt(3), TotalPrice: decimal.NewFromInt(6)},
	}
	if err := s.Orders().ReplaceItems(ctx, o.ID, items); err != nil {
		t.Fatal(err)
	}

	got, err := s.Orders().FindByID(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Supplier == nil || got.Supplier.Name != "Acme" {
		t.Errorf("supplier not expanded: %+v", got.Supplier)
	}
	if len(got.Items) != 1 || got.Items[0].PurchaseOrderID != o.ID {
		t.Errorf("items not expanded: %+v", got.Items)
	}

	if err := s.Orders().Create(ctx, &models.PurchaseOrder{OrderNumber: "PO-1", SupplierID: sup.ID}); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate order number: got %v", err)
	}
	if _, err := s.Orders().FindByID(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing order: got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Products().List(ctx, repository.ProductFilter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
