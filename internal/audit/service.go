package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"procurement-backend/internal/logging"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// Actor is the user a change is attributed to.
type Actor struct {
	ID   uint
	Name string
}

type LogOptions struct {
	Actor       Actor
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// matches the audit_logs.description column
const maxDescription = 255

func WriteLog(ctx context.Context, store repository.Store, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.Actor.ID,
		UserName:    opts.Actor.Name,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: clip(opts.Description, maxDescription),
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}

	if err := store.AuditLogs().Create(ctx, &entry); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes the log and only reports failures to the logger;
// a missing audit row never fails the change it describes.
func Record(ctx context.Context, store repository.Store, logger *logrus.Logger, opts LogOptions) {
	if err := WriteLog(ctx, store, opts); err != nil {
		logging.LogError(logger, "audit", "Record", opts.EntityType, opts.EntityID, err)
	}
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// clip cuts s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
