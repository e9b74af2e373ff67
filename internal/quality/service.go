// Package quality records goods receptions and the inspections run on them.
package quality

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/sirupsen/logrus"
)

const DefaultCheckType = "Visual Inspection"

type Service struct {
	store  repository.Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(store repository.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

type ReceptionInput struct {
	ReceptionNumber string
	PurchaseOrderID uint
	ReceptionDate   *time.Time
	Notes           string
}

type CheckInput struct {
	ReceptionID uint
	ProductID   *uint
	CheckType   string
	Result      models.QualityResult
	Notes       string
}

func (s *Service) ListReceptions(ctx context.Context, f repository.ReceptionFilter) ([]models.Reception, error) {
	return s.store.Receptions().List(ctx, f)
}

func (s *Service) CreateReception(ctx context.Context, actor audit.Actor, in ReceptionInput) (*models.Reception, error) {
	rec := &models.Reception{
		ReceptionNumber: strings.TrimSpace(in.ReceptionNumber),
		PurchaseOrderID: in.PurchaseOrderID,
		ReceivedBy:      actor.ID,
		Notes:           strings.TrimSpace(in.Notes),
	}
	if rec.ReceptionNumber == "" {
		rec.ReceptionNumber = fmt.Sprintf("REC-%d", s.now().UnixMilli())
	}
	rec.ReceptionDate = s.now()
	if in.ReceptionDate != nil {
		rec.ReceptionDate = *in.ReceptionDate
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Orders().FindByID(ctx, in.PurchaseOrderID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &httpx.ValidationError{Fields: map[string]string{"purchase_order_id": "exists"}}
			}
			return err
		}
		return tx.Receptions().Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  "reception",
		EntityID:    rec.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Reception %s recorded", rec.ReceptionNumber),
		After:       rec,
	})
	return s.store.Receptions().FindByID(ctx, rec.ID)
}

func (s *Service) ListChecks(ctx context.Context, f repository.QualityCheckFilter) ([]models.QualityCheck, error) {
	return s.store.QualityChecks().List(ctx, f)
}

// CreateCheck records an inspection by the acting user.
func (s *Service) CreateCheck(ctx context.Context, actor audit.Actor, in CheckInput) (*models.QualityCheck, error) {
	if !status.Valid(status.QualityResult, string(in.Result)) {
		return nil, &status.UnknownStatusError{Kind: status.QualityResult, Value: string(in.Result)}
	}
	qc := &models.QualityCheck{
		ReceptionID: in.ReceptionID,
		ProductID:   in.ProductID,
		CheckType:   strings.TrimSpace(in.CheckType),
		Result:      in.Result,
		InspectorID: actor.ID,
		Notes:       strings.TrimSpace(in.Notes),
		CheckedAt:   s.now(),
	}
	if qc.CheckType == "" {
		qc.CheckType = DefaultCheckType
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Receptions().FindByID(ctx, in.ReceptionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &httpx.ValidationError{Fields: map[string]string{"reception_id": "exists"}}
			}
			return err
		}
		if in.ProductID != nil {
			if _, err := tx.Products().FindByID(ctx, *in.ProductID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &httpx.ValidationError{Fields: map[string]string{"product_id": "exists"}}
				}
				return err
			}
		}
		return tx.QualityChecks().Create(ctx, qc)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  "quality_check",
		EntityID:    qc.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%s: %s", qc.CheckType, qc.Result),
		After:       qc,
	})
	return s.store.QualityChecks().FindByID(ctx, qc.ID)
}
