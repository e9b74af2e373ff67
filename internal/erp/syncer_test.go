package erp

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedInvoice(t *testing.T, store *memory.Store) *models.Invoice {
	t.Helper()
	ctx := context.Background()
	sup := &models.Supplier{Name: "Acme", Status: models.SupplierValidated}
	if err := store.Suppliers().Create(ctx, sup); err != nil {
		t.Fatal(err)
	}
	inv := &models.Invoice{
		InvoiceNumber: "INV-1",
		SupplierID:    sup.ID,
		Status:        models.InvoiceValidated,
		InvoiceDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(500),
		PaidAmount:    decimal.NewFromInt(200),
	}
	if err := store.Invoices().Create(ctx, inv); err != nil {
		t.Fatal(err)
	}
	return inv
}

func erpLogsFor(t *testing.T, store *memory.Store, id uint) []models.ErpLog {
	t.Helper()
	logs, err := store.ErpLogs().List(context.Background(), repository.ErpLogFilter{EntityType: EntityInvoice, EntityID: id})
	if err != nil {
		t.Fatal(err)
	}
	return logs
}

func TestSyncInvoiceSuccessWritesOneRow(t *testing.T) {
	store := memory.NewStore()
	inv := seedInvoice(t, store)
	pub := &SimulatedPublisher{}
	s := NewSyncer(store, pub, nil, quietLogger())

	res, err := s.SyncInvoice(context.Background(), inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Succeeded() {
		t.Fatalf("expected success, got %+v", res.Log)
	}

	logs := erpLogsFor(t, store, inv.ID)
	if len(logs) != 1 {
		t.Fatalf("got %d rows, want 1", len(logs))
	}
	if logs[0].Action != models.ErpActionSyncToErp || logs[0].Status != models.ErpLogSuccess {
		t.Errorf("unexpected row: %+v", logs[0])
	}
	if len(pub.Sent) != 1 || pub.Sent[0].Number != "INV-1" || pub.Sent[0].CorrelationID == "" {
		t.Errorf("unexpected published messages: %+v", pub.Sent)
	}
}

func TestSyncInvoicePublishFailureWritesFailedRow(t *testing.T) {
	store := memory.NewStore()
	inv := seedInvoice(t, store)
	s := NewSyncer(store, &SimulatedPublisher{Err: errors.New("erp unavailable")}, nil, quietLogger())

	res, err := s.SyncInvoice(context.Background(), inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded() {
		t.Fatal("expected failed status")
	}

	logs := erpLogsFor(t, store, inv.ID)
	if len(logs) != 1 {
		t.Fatalf("got %d rows, want 1", len(logs))
	}
	if logs[0].ErrorMessage == nil || *logs[0].ErrorMessage != "erp unavailable" {
		t.Errorf("error message = %v", logs[0].ErrorMessage)
	}
}

func TestSyncInvoiceLogFailureFallsBackToFailedRow(t *testing.T) {
	store := memory.NewStore()
	inv := seedInvoice(t, store)
	store.FailNext("erp_logs.create", errors.New("constraint violated"))
	s := NewSyncer(store, &SimulatedPublisher{}, nil, quietLogger())

	res, err := s.SyncInvoice(context.Background(), inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.LogErr == nil || res.Succeeded() {
		t.Fatalf("expected fallback result, got %+v", res)
	}

	logs := erpLogsFor(t, store, inv.ID)
	if len(logs) != 1 {
		t.Fatalf("got %d rows, want exactly 1", len(logs))
	}
	if logs[0].Status != models.ErpLogFailed || *logs[0].ErrorMessage != "constraint violated" {
		t.Errorf("unexpected fallback row: %+v", logs[0])
	}
}

func TestSyncInvoiceBothInsertsFail(t *testing.T) {
	store := memory.NewStore()
	inv := seedInvoice(t, store)
	store.FailNext("erp_logs.create", errors.New("first"))
	store.FailNext("erp_logs.create", errors.New("second"))
	s := NewSyncer(store, &SimulatedPublisher{}, nil, quietLogger())

	if _, err := s.SyncInvoice(context.Background(), inv.ID); err == nil {
		t.Fatal("expected error when no row could be written")
	}
	if logs := erpLogsFor(t, store, inv.ID); len(logs) != 0 {
		t.Fatalf("got %d rows", len(logs))
	}
}

func TestSyncUnknownInvoiceWritesNothing(t *testing.T) {
	store := memory.NewStore()
	s := NewSyncer(store, &SimulatedPublisher{}, nil, quietLogger())

	_, err := s.SyncInvoice(context.Background(), 404)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, _ := store.ErpLogs().Count(context.Background(), repository.ErpLogFilter{})
	if n != 0 {
		t.Fatalf("rows written for unknown invoice: %d", n)
	}
}

func TestRepeatedSyncsAppendOneRowEach(t *testing.T) {
	store := memory.NewStore()
	inv := seedInvoice(t, store)
	s := NewSyncer(store, &SimulatedPublisher{}, nil, quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := s.SyncInvoice(context.Background(), inv.ID); err != nil {
			t.Fatal(err)
		}
	}
	if logs := erpLogsFor(t, store, inv.ID); len(logs) != 3 {
		t.Fatalf("got %d rows, want 3", len(logs))
	}
}

func TestWithServiceNameNamesTracer(t *testing.T) {
	s := NewSyncer(memory.NewStore(), &SimulatedPublisher{}, nil, quietLogger())
	if s.tracerName != "procurement-backend/erp" {
		t.Errorf("default tracer = %q", s.tracerName)
	}
	if s.WithServiceName("procurement-staging").tracerName != "procurement-staging/erp" {
		t.Errorf("tracer = %q", s.tracerName)
	}
	if s.WithServiceName("").tracerName != "procurement-staging/erp" {
		t.Error("empty service name replaced the tracer")
	}
}
