package supplier

import (
	"context"
	"errors"
	"testing"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/status"
	"procurement-backend/internal/testutil"
)

var actor = audit.Actor{ID: 7, Name: "Buyer"}

func TestCreateNormalizesPhoneAndStartsPending(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger(), "US")

	sup, err := svc.Create(context.Background(), actor, Input{
		Name:  "  Acme Supply ",
		Email: "Sales@Acme.COM",
		Phone: "(650) 253-0000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sup.Name != "Acme Supply" || sup.Email != "sales@acme.com" {
		t.Errorf("fields not trimmed: %+v", sup)
	}
	if sup.Phone != "+16502530000" {
		t.Errorf("phone = %q", sup.Phone)
	}
	if sup.Status != models.SupplierPendingValidation {
		t.Errorf("status = %s", sup.Status)
	}
}

func TestCreateRejectsBadPhone(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger(), "US")

	_, err := svc.Create(context.Background(), actor, Input{Name: "Acme", Phone: "12"})
	var ve *httpx.ValidationError
	if !errors.As(err, &ve) || ve.Fields["phone"] == "" {
		t.Fatalf("expected phone validation error, got %v", err)
	}
	n, _ := store.Suppliers().Count(context.Background(), repository.SupplierFilter{})
	if n != 0 {
		t.Errorf("supplier written despite bad phone")
	}
}

func TestChangeStatusFollowsTransitions(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger(), "US")
	ctx := context.Background()

	sup, err := svc.Create(ctx, actor, Input{Name: "Acme"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.ChangeStatus(ctx, actor, sup.ID, models.SupplierSuspended)
	var te *status.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected transition error, got %v", err)
	}

	got, err := svc.ChangeStatus(ctx, actor, sup.ID, models.SupplierValidated)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.SupplierValidated {
		t.Errorf("status = %s", got.Status)
	}

	logs, _ := store.AuditLogs().List(ctx, repository.AuditLogFilter{EntityType: entityType, EntityID: sup.ID})
	if len(logs) != 2 {
		t.Errorf("got %d audit rows, want 2", len(logs))
	}
}

func TestUpdateUnknownSupplier(t *testing.T) {
	svc := NewService(memory.NewStore(), testutil.Logger(), "US")
	_, err := svc.Update(context.Background(), actor, 99, Input{Name: "x"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateKeepsStatus(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger(), "US")
	ctx := context.Background()

	sup, _ := svc.Create(ctx, actor, Input{Name: "Acme"})
	if _, err := svc.ChangeStatus(ctx, actor, sup.ID, models.SupplierValidated); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Update(ctx, actor, sup.ID, Input{Name: "Acme Ltd", Address: "1 Main St"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Acme Ltd" || got.Status != models.SupplierValidated {
		t.Errorf("got %+v", got)
	}
}
