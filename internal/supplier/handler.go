package supplier

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

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=150"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address" validate:"max=255"`
}

func (r SupplierRequest) input() Input {
	return Input{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
	}
}

type ChangeStatusRequest struct {
	Status models.SupplierStatus `json:"status" validate:"required"`
}

type SupplierResponse struct {
	ID            uint                  `json:"id"`
	Name          string                `json:"name"`
	ContactPerson string                `json:"contact_person"`
	Email         string                `json:"email"`
	Phone         string                `json:"phone"`
	Address       string                `json:"address"`
	Status        models.SupplierStatus `json:"status"`
	StatusTier    status.Tier           `json:"status_tier"`
	CreatedAt     string                `json:"created_at"`
}

func ToResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Status:        s.Status,
		StatusTier:    status.TierOf(status.Supplier, string(s.Status)),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}

type Handler struct {
	svc    *Service
	logger *logrus.Logger
}

func NewHandler(svc *Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /api/suppliers?status=validated&q=acme
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := httpx.StatusFilter[models.SupplierStatus](c, status.Supplier)
		if err != nil {
			return err
		}
		suppliers, err := h.svc.List(c.UserContext(), repository.SupplierFilter{
			Statuses: statuses,
			Search:   c.Query("q"),
		})
		if err != nil {
			return httpx.Fail(h.logger, "supplier", "List", err, "Could not list suppliers")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			resp = append(resp, ToResponse(&suppliers[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/suppliers/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		s, err := h.svc.Get(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "supplier", "Get", err, "Could not load supplier")
		}
		return c.JSON(ToResponse(s))
	}
}

// POST /api/suppliers
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body SupplierRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		s, err := h.svc.Create(c.UserContext(), user.Actor(), body.input())
		if err != nil {
			return httpx.Fail(h.logger, "supplier", "Create", err, "Could not create supplier")
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(s))
	}
}

// PUT /api/suppliers/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SupplierRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		s, err := h.svc.Update(c.UserContext(), user.Actor(), id, body.input())
		if err != nil {
			return httpx.Fail(h.logger, "supplier", "Update", err, "Could not update supplier")
		}
		return c.JSON(ToResponse(s))
	}
}

// PATCH /api/suppliers/:id/status
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

		s, err := h.svc.ChangeStatus(c.UserContext(), user.Actor(), id, body.Status)
		if err != nil {
			return httpx.Fail(h.logger, "supplier", "ChangeStatus", err, "Could not change supplier status")
		}
		return c.JSON(ToResponse(s))
	}
}
