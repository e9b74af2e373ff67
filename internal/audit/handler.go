package audit

import (
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/audit-logs?entity_type=invoice&entity_id=1&user_id=2&limit=50
func ListAuditLogsHandler(store repository.Store, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := repository.AuditLogFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   httpx.QueryID(c, "entity_id"),
			UserID:     httpx.QueryID(c, "user_id"),
			Limit:      c.QueryInt("limit", 100),
		}

		logs, err := store.AuditLogs().List(c.UserContext(), filter)
		if err != nil {
			return httpx.Fail(logger, "audit", "ListAuditLogsHandler", err, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}

		return c.JSON(resp)
	}
}
