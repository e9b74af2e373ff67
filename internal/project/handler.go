package project

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

type CreateProjectRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
}

type ChangeStatusRequest struct {
	Status models.ProjectStatus `json:"status" validate:"required"`
}

type ProjectResponse struct {
	ID           uint                 `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Status       models.ProjectStatus `json:"status"`
	StatusTier   status.Tier          `json:"status_tier"`
	NextStatuses []string             `json:"next_statuses"`
	CreatedBy    uint                 `json:"created_by"`
	CreatorName  string               `json:"creator_name,omitempty"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
}

func ToResponse(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Status:       p.Status,
		StatusTier:   status.TierOf(status.Project, string(p.Status)),
		NextStatuses: status.Next(status.Project, string(p.Status)),
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Creator != nil {
		resp.CreatorName = p.Creator.FullName
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

// GET /api/projects?status=draft,approved&limit=20
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := httpx.StatusFilter[models.ProjectStatus](c, status.Project)
		if err != nil {
			return err
		}
		projects, err := h.svc.List(c.UserContext(), repository.ProjectFilter{
			Statuses: statuses,
			Limit:    c.QueryInt("limit", 0),
		})
		if err != nil {
			return httpx.Fail(h.logger, "project", "List", err, "Could not list projects")
		}

		resp := make([]ProjectResponse, 0, len(projects))
		for i := range projects {
			resp = append(resp, ToResponse(&projects[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/projects/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		p, err := h.svc.Get(c.UserContext(), id)
		if err != nil {
			return httpx.Fail(h.logger, "project", "Get", err, "Could not load project")
		}
		return c.JSON(ToResponse(p))
	}
}

// POST /api/projects
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.MustCurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateProjectRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		p, err := h.svc.Create(c.UserContext(), user.Actor(), CreateInput{
			Title:       body.Title,
			Description: body.Description,
			Status:      body.Status,
		})
		if err != nil {
			return httpx.Fail(h.logger, "project", "Create", err, "Could not create project")
		}
		return c.Status(fiber.StatusCreated).JSON(ToResponse(p))
	}
}

// PATCH /api/projects/:id/status
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

		p, err := h.svc.ChangeStatus(c.UserContext(), user.Actor(), id, body.Status)
		if err != nil {
			return httpx.Fail(h.logger, "project", "ChangeStatus", err, "Could not change project status")
		}
		return c.JSON(ToResponse(p))
	}
}
