package erp

import (
	"time"

	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErpLogResponse struct {
	ID           uint                `json:"id"`
	EntityType   string              `json:"entity_type"`
	EntityID     uint                `json:"entity_id"`
	Action       string              `json:"action"`
	Status       models.ErpLogStatus `json:"status"`
	StatusTier   status.Tier         `json:"status_tier"`
	ErrorMessage *string             `json:"error_message"`
	CreatedAt    string              `json:"created_at"`
}

func ToLogResponse(l models.ErpLog) ErpLogResponse {
	return ErpLogResponse{
		ID:           l.ID,
		EntityType:   l.EntityType,
		EntityID:     l.EntityID,
		Action:       l.Action,
		Status:       l.Status,
		StatusTier:   status.TierOf(status.ErpLog, string(l.Status)),
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/erp-logs?entity_type=invoice&entity_id=4&limit=50
func ListLogsHandler(store repository.Store, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := store.ErpLogs().List(c.UserContext(), repository.ErpLogFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   httpx.QueryID(c, "entity_id"),
			Limit:      c.QueryInt("limit", 100),
		})
		if err != nil {
			return httpx.Fail(logger, "erp", "ListLogsHandler", err, "Could not list ERP logs")
		}

		resp := make([]ErpLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, ToLogResponse(l))
		}
		return c.JSON(resp)
	}
}
