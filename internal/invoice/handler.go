package invoice

import (
	"time"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/erp"
	"procurement-backend/internal/finance"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type CreateInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number" validate:"required,max=50"`
	SupplierID      uint                 `json:"supplier_id" validate:"required"`
	PurchaseOrderID *uint                `json:"purchase_order_id"`
	Status          models.InvoiceStatus `json:"status"`
	InvoiceDate     string               `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	DueDate         string               `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	PaidAmount      decimal.Decimal      `json:"paid_amount"`
	Notes           string               `json:"notes"`
}

type ChangeStatusRequest struct {
	Status models.InvoiceStatus `json:"status" validate:"required"`
}

type InvoiceResponse struct {
	ID              uint                 `json:"id"`
	InvoiceNumber   string               `json:"invoice_number"`
	SupplierID      uint                 `json:"supplier_id"`
	SupplierName    string               `json:"supplier_name"`
	PurchaseOrderID *uint                `json:"purchase_order_id"`
	OrderNumber     string               `json:"order_number,omitempty"`
	Status          models.InvoiceStatus `json:"status"`
	StatusTier      status.Tier          `json:"status_tier"`
	NextStatuses    []string             `json:"next_statuses,omitempty"`
	InvoiceDate     string               `json:"invoice_date"`
	DueDate         *string              `json:"due_date"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	PaidAmount      decimal.Decimal      `json:"paid_amount"`
	Balance         decimal.Decimal      `json:"balance"`
	CanMarkPaid     bool                 `json:"can_mark_paid"`
	Notes           string               `json:"notes"`
	CreatedAt       string               `json:"created_at"`
}

func ToResponse(inv *models.Invoice, detail bool) InvoiceResponse {
	balance := finance.Balance(inv.TotalAmount, inv.PaidAmount)
	resp := InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SupplierID:      inv.SupplierID,
		PurchaseOrderID: inv.PurchaseOrderID,
		Status:          inv.Status,
		StatusTier:      status.TierOf(status.Invoice, string(inv.Status)),
		InvoiceDate:     inv.InvoiceDate.Format(dateLayout),
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		Balance:         balance,
		CanMarkPaid:     balance.IsPositive() && status.CanTransition(status.Invoice, string(inv.Status), string(models.InvoicePaid)),
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if inv.Supplier != nil {
		resp.SupplierName = inv.Supplier.Name
	}
	if inv.PurchaseOrder != nil {
		resp.OrderNumber = inv.PurchaseOrder.OrderNumber
	}
	if detail {
		resp.NextStatuses = status.Next(status.Invoice, string(inv.Status))
	}
	return resp
}

type SyncResponse struct {
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	LogError string             `json:"log_error,omitempty"`
	Log      erp.ErpLogResponse `json:"log"`
}

type Handler struct {
	svc    *Service
	logger *logrus.Logger
}

func NewHandler(svc *Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /api/invoices?status=validated&supplier_id=2&purchase_order_id=5
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := httpx.StatusFilter[models.InvoiceStatus](c, status.Invoice)
		if err != nil {
			return err
		}
		invoices, err := h.svc.List(c.UserContext(), repository.InvoiceFilter{
			Statuses:        statuses,
			SupplierID:      httpx.QueryID(c, "supplier_id"),
			PurchaseOrderID: httpx.QueryID(c, "purchase_order_id"),
		})
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "List", err, "Could not list invoices")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			resp = append(resp, ToResponse(&invoices[i], false))
		}
		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		inv, err := h.svc.Get(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "Get", err, "Could not load invoice")
		}
		return c.JSON(ToResponse(inv, true))
	}
}

// POST /api/invoices
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateInvoiceRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		in := CreateInput{
			InvoiceNumber:   body.InvoiceNumber,
			SupplierID:      body.SupplierID,
			PurchaseOrderID: body.PurchaseOrderID,
			Status:          body.Status,
			TotalAmount:     body.TotalAmount,
			PaidAmount:      body.PaidAmount,
			Notes:           body.Notes,
		}
		// formats were checked by the datetime tags
		in.InvoiceDate, _ = time.Parse(dateLayout, body.InvoiceDate)
		if body.DueDate != "" {
			due, _ := time.Parse(dateLayout, body.DueDate)
			in.DueDate = &due
		}

		inv, err := h.svc.Create(c.UserContext(), user.Actor(), in)
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "Create", err, "Could not create invoice")
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(inv, true))
	}
}

// PATCH /api/invoices/:id/status
func (h *Handler) ChangeStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ChangeStatusRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		inv, err := h.svc.ChangeStatus(c.UserContext(), user.Actor(), id, body.Status)
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "ChangeStatus", err, "Could not change invoice status")
		}
		return c.JSON(ToResponse(inv, true))
	}
}

// POST /api/invoices/:id/mark-paid
func (h *Handler) MarkAsPaid() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		inv, err := h.svc.MarkAsPaid(c.UserContext(), user.Actor(), id)
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "MarkAsPaid", err, "Could not mark invoice as paid")
		}
		return c.JSON(ToResponse(inv, true))
	}
}

// POST /api/invoices/:id/sync
// A failed publish is still a 200; the outcome is in the body and in erp_logs.
func (h *Handler) Sync() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.MustCurrentUser(c); err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		res, err := h.svc.Sync(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "invoice", "Sync", err, "Could not record ERP sync")
		}

		resp := SyncResponse{
			Success: res.Succeeded(),
			Log:     erp.ToLogResponse(res.Log),
		}
		if res.PublishErr != nil {
			resp.Error = res.PublishErr.Error()
		}
		if res.LogErr != nil {
			resp.LogError = res.LogErr.Error()
		}
		return c.JSON(resp)
	}
}
