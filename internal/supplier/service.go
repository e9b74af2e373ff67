package supplier

import (
	"context"
	"fmt"
	"strings"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/sirupsen/logrus"
)

const entityType = "supplier"

type Service struct {
	store       repository.Store
	logger      *logrus.Logger
	phoneRegion string
}

func NewService(store repository.Store, logger *logrus.Logger, phoneRegion string) *Service {
	return &Service{store: store, logger: logger, phoneRegion: phoneRegion}
}

// Input carries the editable supplier fields.
type Input struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

func (s *Service) List(ctx context.Context, f repository.SupplierFilter) ([]models.Supplier, error) {
	return s.store.Suppliers().List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	return s.store.Suppliers().FindByID(ctx, id)
}

func (s *Service) apply(sup *models.Supplier, in Input) error {
	sup.Name = strings.TrimSpace(in.Name)
	sup.ContactPerson = strings.TrimSpace(in.ContactPerson)
	sup.Email = strings.ToLower(strings.TrimSpace(in.Email))
	sup.Address = strings.TrimSpace(in.Address)
	sup.Phone = ""
	if raw := strings.TrimSpace(in.Phone); raw != "" {
		phone, err := httpx.NormalizePhone(raw, s.phoneRegion)
		if err != nil {
			return &httpx.ValidationError{Fields: map[string]string{"phone": "phone"}}
		}
		sup.Phone = phone
	}
	return nil
}

// Create registers a supplier awaiting validation.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in Input) (*models.Supplier, error) {
	sup := &models.Supplier{Status: models.SupplierPendingValidation}
	if err := s.apply(sup, in); err != nil {
		return nil, err
	}
	if err := status.CheckInitial(status.Supplier, string(sup.Status)); err != nil {
		return nil, err
	}
	if err := s.store.Suppliers().Create(ctx, sup); err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    sup.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Supplier created: %s", sup.Name),
		After:       sup,
	})
	return sup, nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in Input) (*models.Supplier, error) {
	var before, after models.Supplier
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		sup, err := tx.Suppliers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		before = *sup
		if err := s.apply(sup, in); err != nil {
			return err
		}
		if err := tx.Suppliers().Update(ctx, sup); err != nil {
			return err
		}
		after = *sup
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Supplier updated: %s", after.Name),
		Before:      before,
		After:       after,
	})
	return s.store.Suppliers().FindByID(ctx, id)
}

func (s *Service) ChangeStatus(ctx context.Context, actor audit.Actor, id uint, next models.SupplierStatus) (*models.Supplier, error) {
	var from models.SupplierStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		sup, err := tx.Suppliers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = sup.Status
		if err := status.CheckTransition(status.Supplier, string(from), string(next)); err != nil {
			return err
		}
		sup.Status = next
		return tx.Suppliers().Update(ctx, sup)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.AuditActionStatusChange,
		Description: fmt.Sprintf("%s -> %s", from, next),
		Before:      map[string]string{"status": string(from)},
		After:       map[string]string{"status": string(next)},
	})
	return s.store.Suppliers().FindByID(ctx, id)
}
