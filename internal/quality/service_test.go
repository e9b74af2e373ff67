package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/status"
	"procurement-backend/internal/testutil"
)

func setup(t *testing.T) (*Service, *memory.Store, audit.Actor, uint) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	inspector := testutil.SeedTestUser(t, store, "Ines", models.RoleInspector)
	sup := &models.Supplier{Name: "Acme"}
	if err := store.Suppliers().Create(ctx, sup); err != nil {
		t.Fatal(err)
	}
	o := &models.PurchaseOrder{OrderNumber: "PO-1", SupplierID: sup.ID, Status: models.OrderDelivered}
	if err := store.Orders().Create(ctx, o); err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, testutil.Logger())
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store, audit.Actor{ID: inspector.ID, Name: inspector.FullName}, o.ID
}

func TestCreateReceptionDefaults(t *testing.T) {
	svc, _, actor, orderID := setup(t)

	rec, err := svc.CreateReception(context.Background(), actor, ReceptionInput{PurchaseOrderID: orderID})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ReceptionNumber == "" || rec.ReceivedBy != actor.ID {
		t.Errorf("got %+v", rec)
	}
	if rec.PurchaseOrder == nil || rec.PurchaseOrder.OrderNumber != "PO-1" {
		t.Errorf("order not expanded: %+v", rec.PurchaseOrder)
	}
	if !rec.ReceptionDate.Equal(svc.now()) {
		t.Errorf("reception date = %s", rec.ReceptionDate)
	}
}

func TestCreateReceptionUnknownOrder(t *testing.T) {
	svc, _, actor, _ := setup(t)
	_, err := svc.CreateReception(context.Background(), actor, ReceptionInput{PurchaseOrderID: 404})
	var ve *httpx.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateCheckDefaultsAndExpands(t *testing.T) {
	svc, _, actor, orderID := setup(t)
	ctx := context.Background()
	rec, err := svc.CreateReception(ctx, actor, ReceptionInput{ReceptionNumber: "REC-1", PurchaseOrderID: orderID})
	if err != nil {
		t.Fatal(err)
	}

	qc, err := svc.CreateCheck(ctx, actor, CheckInput{ReceptionID: rec.ID, Result: models.QualityConditional})
	if err != nil {
		t.Fatal(err)
	}
	if qc.CheckType != DefaultCheckType {
		t.Errorf("check type = %q", qc.CheckType)
	}
	if qc.Inspector == nil || qc.Inspector.FullName != "Ines" || qc.Reception == nil {
		t.Errorf("relations not expanded: %+v", qc)
	}
	if got := ToCheckResponse(qc).ResultTier; got != status.TierOutline {
		t.Errorf("tier = %s", got)
	}
}

func TestCreateCheckRejectsUnknownResult(t *testing.T) {
	svc, _, actor, orderID := setup(t)
	ctx := context.Background()
	rec, _ := svc.CreateReception(ctx, actor, ReceptionInput{ReceptionNumber: "REC-2", PurchaseOrderID: orderID})

	_, err := svc.CreateCheck(ctx, actor, CheckInput{ReceptionID: rec.ID, Result: "maybe"})
	var ue *status.UnknownStatusError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v", err)
	}
}
