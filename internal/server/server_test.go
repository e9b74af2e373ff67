package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"procurement-backend/internal/erp"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/server"
	"procurement-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func newApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	app := server.New(server.Deps{
		Config:    testutil.Config(),
		Store:     store,
		Logger:    testutil.Logger(),
		Publisher: &erp.SimulatedPublisher{},
	})
	return app, store
}

func TestHealthIsPublic(t *testing.T) {
	app, _ := newApp(t)
	resp := testutil.DoRequest(t, app, http.MethodGet, "/api/health", nil, "")
	testutil.ExpectStatus(t, resp, http.StatusOK)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newApp(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/projects"},
		{http.MethodPost, "/api/suppliers"},
		{http.MethodPost, "/api/orders"},
		{http.MethodPost, "/api/invoices/1/mark-paid"},
		{http.MethodPost, "/api/invoices/1/sync"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/reports/export"},
	}
	for _, r := range routes {
		resp := testutil.DoRequest(t, app, r.method, r.path, map[string]any{}, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s = %d, want 401", r.method, r.path, resp.StatusCode)
		}
	}
}

func TestRegisterLoginAndUseToken(t *testing.T) {
	app, _ := newApp(t)

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/auth/register-admin", map[string]any{
		"full_name": "Root Admin",
		"email":     "root@example.com",
		"password":  "correct horse battery",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusCreated)

	resp = testutil.DoRequest(t, app, http.MethodPost, "/api/auth/register-admin", map[string]any{
		"full_name": "Second",
		"email":     "second@example.com",
		"password":  "correct horse battery",
	}, "")
	if resp.StatusCode < 400 {
		t.Fatalf("second admin registration allowed: %d", resp.StatusCode)
	}

	resp = testutil.DoRequest(t, app, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "root@example.com",
		"password": "correct horse battery",
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusOK)
	var login struct {
		Token string `json:"token"`
	}
	testutil.ParseResponse(t, resp, &login)
	if login.Token == "" {
		t.Fatal("no token returned")
	}

	resp = testutil.DoRequest(t, app, http.MethodGet, "/api/dashboard", nil, login.Token)
	testutil.ExpectStatus(t, resp, http.StatusOK)
}

func TestRoleGuards(t *testing.T) {
	app, store := newApp(t)
	cfg := testutil.Config()
	buyer := testutil.SeedTestUser(t, store, "Buyer", models.RoleBuyer)
	token := testutil.TokenFor(t, cfg, buyer)

	resp := testutil.DoRequest(t, app, http.MethodGet, "/api/audit-logs", nil, token)
	testutil.ExpectStatus(t, resp, http.StatusForbidden)

	resp = testutil.DoRequest(t, app, http.MethodPost, "/api/quality-checks", map[string]any{"reception_id": 1, "result": "passed"}, token)
	testutil.ExpectStatus(t, resp, http.StatusForbidden)
}

func TestReportExportServesWorkbook(t *testing.T) {
	app, store := newApp(t)
	admin := testutil.SeedTestUser(t, store, "Admin", models.RoleAdmin)
	token := testutil.TokenFor(t, testutil.Config(), admin)

	resp := testutil.DoRequest(t, app, http.MethodGet, "/api/reports/export", nil, token)
	testutil.ExpectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) < 4 || string(body[:2]) != "PK" {
		t.Errorf("body is not a zip container")
	}

	resp = testutil.DoRequest(t, app, http.MethodPost, "/api/reports/archive", nil, token)
	testutil.ExpectStatus(t, resp, http.StatusServiceUnavailable)
}

func TestSyncAppearsInErpLogs(t *testing.T) {
	app, store := newApp(t)
	ctx := context.Background()
	buyer := testutil.SeedTestUser(t, store, "Buyer", models.RoleBuyer)
	token := testutil.TokenFor(t, testutil.Config(), buyer)

	sup := &models.Supplier{Name: "Acme", Status: models.SupplierValidated}
	if err := store.Suppliers().Create(ctx, sup); err != nil {
		t.Fatal(err)
	}
	inv := &models.Invoice{
		InvoiceNumber: "INV-1",
		SupplierID:    sup.ID,
		Status:        models.InvoicePendingValidation,
		InvoiceDate:   time.Now(),
		TotalAmount:   decimal.NewFromInt(100),
	}
	if err := store.Invoices().Create(ctx, inv); err != nil {
		t.Fatal(err)
	}

	resp := testutil.DoRequest(t, app, http.MethodPost, fmt.Sprintf("/api/invoices/%d/sync", inv.ID), nil, token)
	testutil.ExpectStatus(t, resp, http.StatusOK)

	resp = testutil.DoRequest(t, app, http.MethodGet, fmt.Sprintf("/api/erp-logs?entity_type=invoice&entity_id=%d", inv.ID), nil, token)
	testutil.ExpectStatus(t, resp, http.StatusOK)
	var logs []erp.ErpLogResponse
	testutil.ParseResponse(t, resp, &logs)
	if len(logs) != 1 || logs[0].Status != models.ErpLogSuccess || logs[0].EntityID != inv.ID {
		t.Fatalf("logs = %+v", logs)
	}
}
