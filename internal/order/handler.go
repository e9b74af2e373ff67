package order

import (
	"time"

	"procurement-backend/internal/auth"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ItemRequest struct {
	ProductID   *uint            `json:"product_id"`
	ProductName string           `json:"product_name" validate:"max=150"`
	Quantity    int64            `json:"quantity" validate:"gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	OrderNumber string             `json:"order_number" validate:"max=50"`
	SupplierID  uint               `json:"supplier_id" validate:"required"`
	ProjectID   *uint              `json:"project_id"`
	Status      models.OrderStatus `json:"status"`
	Notes       string             `json:"notes"`
	Items       []ItemRequest      `json:"items" validate:"required,min=1,dive"`
}

type ReplaceItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ChangeStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func itemInputs(reqs []ItemRequest) []ItemInput {
	out := make([]ItemInput, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ItemInput{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	return out
}

type ItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type OrderResponse struct {
	ID           uint               `json:"id"`
	OrderNumber  string             `json:"order_number"`
	SupplierID   uint               `json:"supplier_id"`
	SupplierName string             `json:"supplier_name"`
	ProjectID    *uint              `json:"project_id"`
	ProjectTitle string             `json:"project_title,omitempty"`
	CreatedBy    uint               `json:"created_by"`
	CreatorName  string             `json:"creator_name,omitempty"`
	Status       models.OrderStatus `json:"status"`
	StatusTier   status.Tier        `json:"status_tier"`
	NextStatuses []string           `json:"next_statuses,omitempty"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Notes        string             `json:"notes"`
	Items        []ItemResponse     `json:"items,omitempty"`
	CreatedAt    string             `json:"created_at"`
}

// ToResponse renders an order; detail adds items and allowed next statuses.
func ToResponse(o *models.PurchaseOrder, detail bool) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		ProjectID:   o.ProjectID,
		CreatedBy:   o.CreatedBy,
		Status:      o.Status,
		StatusTier:  status.TierOf(status.PurchaseOrder, string(o.Status)),
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.Supplier != nil {
		resp.SupplierName = o.Supplier.Name
	}
	if o.Project != nil {
		resp.ProjectTitle = o.Project.Title
	}
	if o.Creator != nil {
		resp.CreatorName = o.Creator.FullName
	}
	if detail {
		resp.NextStatuses = status.Next(status.PurchaseOrder, string(o.Status))
		resp.Items = make([]ItemResponse, 0, len(o.Items))
		for _, it := range o.Items {
			resp.Items = append(resp.Items, ItemResponse{
				ID:          it.ID,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  it.TotalPrice,
			})
		}
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

// GET /api/orders?status=draft,submitted&supplier_id=3&project_id=1
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := httpx.StatusFilter[models.OrderStatus](c, status.PurchaseOrder)
		if err != nil {
			return err
		}
		orders, err := h.svc.List(c.UserContext(), repository.OrderFilter{
			Statuses:   statuses,
			SupplierID: httpx.QueryID(c, "supplier_id"),
			ProjectID:  httpx.QueryID(c, "project_id"),
			Limit:      c.QueryInt("limit", 0),
		})
		if err != nil {
			return httpx.Fail(h.logger, "order", "List", err, "Could not list purchase orders")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, ToResponse(&orders[i], false))
		}
		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		o, err := h.svc.Get(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "order", "Get", err, "Could not load purchase order")
		}
		return c.JSON(ToResponse(o, true))
	}
}

// POST /api/orders
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateOrderRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		o, err := h.svc.Create(c.UserContext(), user.Actor(), CreateInput{
			OrderNumber: body.OrderNumber,
			SupplierID:  body.SupplierID,
			ProjectID:   body.ProjectID,
			Status:      body.Status,
			Notes:       body.Notes,
			Items:       itemInputs(body.Items),
		})
		if err != nil {
			return httpx.Fail(h.logger, "order", "Create", err, "Could not create purchase order")
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(o, true))
	}
}

// PUT /api/orders/:id/items
func (h *Handler) ReplaceItems() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ReplaceItemsRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		o, err := h.svc.ReplaceItems(c.UserContext(), user.Actor(), id, itemInputs(body.Items))
		if err != nil {
			return httpx.Fail(h.logger, "order", "ReplaceItems", err, "Could not update order items")
		}
		return c.JSON(ToResponse(o, true))
	}
}

// PATCH /api/orders/:id/status
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

		o, err := h.svc.ChangeStatus(c.UserContext(), user.Actor(), id, body.Status)
		if err != nil {
			return httpx.Fail(h.logger, "order", "ChangeStatus", err, "Could not change order status")
		}
		return c.JSON(ToResponse(o, true))
	}
}
