package project

import (
	"context"
	"fmt"
	"strings"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/sirupsen/logrus"
)

const entityType = "project"

type Service struct {
	store  repository.Store
	logger *logrus.Logger
}

func NewService(store repository.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type CreateInput struct {
	Title       string
	Description string
	Status      models.ProjectStatus
}

func (s *Service) List(ctx context.Context, f repository.ProjectFilter) ([]models.Project, error) {
	return s.store.Projects().List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Project, error) {
	return s.store.Projects().FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.Project, error) {
	if in.Status == "" {
		in.Status = models.ProjectDraft
	}
	if err := status.CheckInitial(status.Project, string(in.Status)); err != nil {
		return nil, err
	}

	p := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		CreatedBy:   actor.ID,
	}
	if err := s.store.Projects().Create(ctx, p); err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    p.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Project created: %s", p.Title),
		After:       p,
	})
	return s.store.Projects().FindByID(ctx, p.ID)
}

// ChangeStatus moves the project along its lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, actor audit.Actor, id uint, next models.ProjectStatus) (*models.Project, error) {
	var from models.ProjectStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = p.Status
		if err := status.CheckTransition(status.Project, string(p.Status), string(next)); err != nil {
			return err
		}
		return tx.Projects().UpdateStatus(ctx, id, next)
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
	return s.store.Projects().FindByID(ctx, id)
}
