package dashboard

import (
	"errors"
	"fmt"

	"procurement-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc    *Service
	logger *logrus.Logger
}

func NewHandler(svc *Service, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GET /api/dashboard
func (h *Handler) Overview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.svc.Overview(c.UserContext())
		if err != nil {
			return httpx.Fail(h.logger, "dashboard", "Overview", err, "Could not load dashboard")
		}
		return c.JSON(out)
	}
}

// GET /api/reports
func (h *Handler) Report() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := h.svc.Report(c.UserContext())
		if err != nil {
			return httpx.Fail(h.logger, "dashboard", "Report", err, "Could not load reports")
		}
		return c.JSON(r)
	}
}

// GET /api/reports/export
func (h *Handler) Export() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := h.svc.Report(c.UserContext())
		if err != nil {
			return httpx.Fail(h.logger, "dashboard", "Export", err, "Could not load reports")
		}
		data, err := WriteXLSX(r)
		if err != nil {
			return httpx.Fail(h.logger, "dashboard", "Export", err, "Could not export reports")
		}

		c.Set(fiber.HeaderContentType, XLSXContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="procurement-report-%s.xlsx"`, r.GeneratedAt.Format("20060102")))
		return c.Send(data)
	}
}

// POST /api/reports/archive
func (h *Handler) Archive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := h.svc.Archive(c.UserContext())
		if errors.Is(err, ErrArchiveDisabled) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Report archive is not configured")
		}
		if err != nil {
			return httpx.Fail(h.logger, "dashboard", "Archive", err, "Could not archive report")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object": name})
	}
}
