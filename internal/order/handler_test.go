package order_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"procurement-backend/internal/models"
	"procurement-backend/internal/order"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T) (*fiber.App, *memory.Store, string, uint) {
	t.Helper()
	cfg := testutil.Config()
	store := memory.NewStore()
	logger := testutil.Logger()
	h := order.NewHandler(order.NewService(store, logger), logger)

	app := testutil.SetupApp()
	g := testutil.AuthGroup(app, cfg, "/api/orders")
	g.Get("/", h.List())
	g.Get("/:id", h.Get())
	g.Post("/", h.Create())
	g.Put("/:id/items", h.ReplaceItems())
	g.Patch("/:id/status", h.ChangeStatus())

	sup := &models.Supplier{Name: "Acme", Status: models.SupplierValidated}
	if err := store.Suppliers().Create(context.Background(), sup); err != nil {
		t.Fatal(err)
	}
	u := testutil.SeedTestUser(t, store, "Bo Buyer", models.RoleBuyer)
	return app, store, testutil.TokenFor(t, cfg, u), sup.ID
}

func TestCreateOrderIgnoresClientTotal(t *testing.T) {
	app, _, token, supplierID := setup(t)

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_number": "PO-1",
		"supplier_id":  supplierID,
		"total_amount": "1000000",
		"items": []map[string]any{
			{"product_name": "Cable", "quantity": 2, "unit_price": "19.99"},
		},
	}, token)
	testutil.ExpectStatus(t, resp, http.StatusCreated)

	var got order.OrderResponse
	testutil.ParseResponse(t, resp, &got)
	if !got.TotalAmount.Equal(decimal.RequireFromString("39.98")) {
		t.Errorf("total = %s", got.TotalAmount)
	}
	if got.SupplierName != "Acme" || got.CreatorName != "Bo Buyer" || got.StatusTier != "secondary" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	app, _, token, supplierID := setup(t)
	body := map[string]any{
		"order_number": "PO-7",
		"supplier_id":  supplierID,
		"items":        []map[string]any{{"product_name": "x", "quantity": 1, "unit_price": "1"}},
	}
	testutil.ExpectStatus(t, testutil.DoRequest(t, app, http.MethodPost, "/api/orders", body, token), http.StatusCreated)
	testutil.ExpectStatus(t, testutil.DoRequest(t, app, http.MethodPost, "/api/orders", body, token), http.StatusConflict)
}

func TestOrderWritesRequireToken(t *testing.T) {
	app, store, _, supplierID := setup(t)

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/orders", map[string]any{
		"supplier_id": supplierID,
		"items":       []map[string]any{{"product_name": "x", "quantity": 1, "unit_price": "1"}},
	}, "")
	testutil.ExpectStatus(t, resp, http.StatusUnauthorized)

	n, _ := store.Orders().Count(context.Background(), repository.OrderFilter{})
	if n != 0 {
		t.Errorf("order written without a token")
	}
}

func TestOrderStatusFlow(t *testing.T) {
	app, _, token, supplierID := setup(t)

	resp := testutil.DoRequest(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_number": "PO-2",
		"supplier_id":  supplierID,
		"items":        []map[string]any{{"product_name": "x", "quantity": 1, "unit_price": "5"}},
	}, token)
	testutil.ExpectStatus(t, resp, http.StatusCreated)
	var created order.OrderResponse
	testutil.ParseResponse(t, resp, &created)
	path := fmt.Sprintf("/api/orders/%d/status", created.ID)

	resp = testutil.DoRequest(t, app, http.MethodPatch, path, map[string]any{"status": "delivered"}, token)
	testutil.ExpectStatus(t, resp, http.StatusConflict)

	resp = testutil.DoRequest(t, app, http.MethodPatch, path, map[string]any{"status": "lost"}, token)
	testutil.ExpectStatus(t, resp, http.StatusBadRequest)

	resp = testutil.DoRequest(t, app, http.MethodPatch, path, map[string]any{"status": "submitted"}, token)
	testutil.ExpectStatus(t, resp, http.StatusOK)

	resp = testutil.DoRequest(t, app, http.MethodPut, fmt.Sprintf("/api/orders/%d/items", created.ID), map[string]any{
		"items": []map[string]any{{"product_name": "y", "quantity": 1, "unit_price": "1"}},
	}, token)
	testutil.ExpectStatus(t, resp, http.StatusConflict)

	resp = testutil.DoRequest(t, app, http.MethodGet, "/api/orders?status=submitted&supplier_id="+fmt.Sprint(supplierID), nil, token)
	testutil.ExpectStatus(t, resp, http.StatusOK)
	var list []order.OrderResponse
	testutil.ParseResponse(t, resp, &list)
	if len(list) != 1 || list[0].StatusTier != "outline" {
		t.Errorf("list = %+v", list)
	}
}
