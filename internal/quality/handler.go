package quality

import (
	"time"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CreateReceptionRequest struct {
	ReceptionNumber string     `json:"reception_number" validate:"max=50"`
	PurchaseOrderID uint       `json:"purchase_order_id" validate:"required"`
	ReceptionDate   *time.Time `json:"reception_date"`
	Notes           string     `json:"notes"`
}

type CreateCheckRequest struct {
	ReceptionID uint                 `json:"reception_id" validate:"required"`
	ProductID   *uint                `json:"product_id"`
	CheckType   string               `json:"check_type" validate:"max=80"`
	Result      models.QualityResult `json:"result" validate:"required"`
	Notes       string               `json:"notes"`
}

type ReceptionResponse struct {
	ID              uint   `json:"id"`
	ReceptionNumber string `json:"reception_number"`
	PurchaseOrderID uint   `json:"purchase_order_id"`
	OrderNumber     string `json:"order_number,omitempty"`
	ReceptionDate   string `json:"reception_date"`
	ReceivedBy      uint   `json:"received_by"`
	ReceiverName    string `json:"receiver_name,omitempty"`
	Notes           string `json:"notes"`
}

func ToReceptionResponse(r *models.Reception) ReceptionResponse {
	resp := ReceptionResponse{
		ID:              r.ID,
		ReceptionNumber: r.ReceptionNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		ReceptionDate:   r.ReceptionDate.Format(time.RFC3339),
		ReceivedBy:      r.ReceivedBy,
		Notes:           r.Notes,
	}
	if r.PurchaseOrder != nil {
		resp.OrderNumber = r.PurchaseOrder.OrderNumber
	}
	if r.Receiver != nil {
		resp.ReceiverName = r.Receiver.FullName
	}
	return resp
}

type CheckResponse struct {
	ID              uint                 `json:"id"`
	ReceptionID     uint                 `json:"reception_id"`
	ReceptionNumber string               `json:"reception_number,omitempty"`
	ProductID       *uint                `json:"product_id"`
	ProductName     string               `json:"product_name,omitempty"`
	CheckType       string               `json:"check_type"`
	Result          models.QualityResult `json:"result"`
	ResultTier      status.Tier          `json:"result_tier"`
	InspectorID     uint                 `json:"inspector_id"`
	InspectorName   string               `json:"inspector_name,omitempty"`
	Notes           string               `json:"notes"`
	CheckedAt       string               `json:"checked_at"`
}

func ToCheckResponse(q *models.QualityCheck) CheckResponse {
	resp := CheckResponse{
		ID:          q.ID,
		ReceptionID: q.ReceptionID,
		ProductID:   q.ProductID,
		CheckType:   q.CheckType,
		Result:      q.Result,
		ResultTier:  status.TierOf(status.QualityResult, string(q.Result)),
		InspectorID: q.InspectorID,
		Notes:       q.Notes,
		CheckedAt:   q.CheckedAt.Format(time.RFC3339),
	}
	if q.Reception != nil {
		resp.ReceptionNumber = q.Reception.ReceptionNumber
	}
	if q.Product != nil {
		resp.ProductName = q.Product.Name
	}
	if q.Inspector != nil {
		resp.InspectorName = q.Inspector.FullName
	}
	return resp
}

type Handler struct {
	svc    *Service
	logger *logrus.Logger
}

func NewHandler(svc *Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /api/receptions?purchase_order_id=3
func (h *Handler) ListReceptions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs, err := h.svc.ListReceptions(c.UserContext(), repository.ReceptionFilter{
			PurchaseOrderID: httpx.QueryID(c, "purchase_order_id"),
		})
		if err != nil {
			return httpx.Fail(h.logger, "quality", "ListReceptions", err, "Could not list receptions")
		}
		resp := make([]ReceptionResponse, 0, len(recs))
		for i := range recs {
			resp = append(resp, ToReceptionResponse(&recs[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/receptions
func (h *Handler) CreateReception() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateReceptionRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		rec, err := h.svc.CreateReception(c.UserContext(), user.Actor(), ReceptionInput{
			ReceptionNumber: body.ReceptionNumber,
			PurchaseOrderID: body.PurchaseOrderID,
			ReceptionDate:   body.ReceptionDate,
			Notes:           body.Notes,
		})
		if err != nil {
			return httpx.Fail(h.logger, "quality", "CreateReception", err, "Could not record reception")
		}
		return c.Status(fiber.StatusCreated).JSON(ToReceptionResponse(rec))
	}
}

// GET /api/quality-checks?result=failed&reception_id=2
func (h *Handler) ListChecks() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var results []models.QualityResult
		for _, r := range httpx.QueryList(c, "result") {
			if !status.Valid(status.QualityResult, r) {
				return fiber.NewError(fiber.StatusBadRequest, "Unknown result "+r)
			}
			results = append(results, models.QualityResult(r))
		}

		checks, err := h.svc.ListChecks(c.UserContext(), repository.QualityCheckFilter{
			Results:     results,
			ReceptionID: httpx.QueryID(c, "reception_id"),
		})
		if err != nil {
			return httpx.Fail(h.logger, "quality", "ListChecks", err, "Could not list quality checks")
		}
		resp := make([]CheckResponse, 0, len(checks))
		for i := range checks {
			resp = append(resp, ToCheckResponse(&checks[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/quality-checks
func (h *Handler) CreateCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateCheckRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		qc, err := h.svc.CreateCheck(c.UserContext(), user.Actor(), CheckInput{
			ReceptionID: body.ReceptionID,
			ProductID:   body.ProductID,
			CheckType:   body.CheckType,
			Result:      body.Result,
			Notes:       body.Notes,
		})
		if err != nil {
			return httpx.Fail(h.logger, "quality", "CreateCheck", err, "Could not record quality check")
		}
		return c.Status(fiber.StatusCreated).JSON(ToCheckResponse(qc))
	}
}
