package inventory

import (
	"context"
	"fmt"
	"strings"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/finance"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const entityType = "product"

type Service struct {
	store  repository.Store
	logger *logrus.Logger
}

func NewService(store repository.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

type CreateInput struct {
	Name            string
	SKU             string
	Category        string
	Description     string
	UnitPrice       decimal.Decimal
	QuantityInStock int64
	ReorderLevel    int64
}

// StockChange either sets the counted quantity or applies a delta.
type StockChange struct {
	Quantity *int64
	Delta    *int64
	Note     string
}

func (s *Service) List(ctx context.Context, f repository.ProductFilter) ([]models.Product, error) {
	return s.store.Products().List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.Products().FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.Product, error) {
	if in.UnitPrice.IsNegative() {
		return nil, &httpx.ValidationError{Fields: map[string]string{"unit_price": "gte"}}
	}
	p := &models.Product{
		Name:            strings.TrimSpace(in.Name),
		SKU:             strings.ToUpper(strings.TrimSpace(in.SKU)),
		Category:        strings.TrimSpace(in.Category),
		Description:     strings.TrimSpace(in.Description),
		UnitPrice:       in.UnitPrice.Round(finance.CurrencyPlaces),
		QuantityInStock: in.QuantityInStock,
		ReorderLevel:    in.ReorderLevel,
	}
	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    p.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Product created: %s (%s)", p.Name, p.SKU),
		After:       p,
	})
	return p, nil
}

// AdjustStock updates quantity_in_stock under a row lock. The result may not go below zero.
func (s *Service) AdjustStock(ctx context.Context, actor audit.Actor, id uint, ch StockChange) (*models.Product, error) {
	if (ch.Quantity == nil) == (ch.Delta == nil) {
		return nil, &httpx.ValidationError{Fields: map[string]string{"quantity": "required_without_delta"}}
	}

	var before int64
	var product models.Product
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		before = p.QuantityInStock

		next := before
		if ch.Quantity != nil {
			next = *ch.Quantity
		} else {
			next += *ch.Delta
		}
		if next < 0 {
			return &httpx.ValidationError{Fields: map[string]string{"quantity": "gte"}}
		}
		p.QuantityInStock = next
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		product = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Stock %d -> %d", before, product.QuantityInStock)
	if ch.Note != "" {
		desc += ": " + ch.Note
	}
	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.AuditActionUpdate,
		Description: desc,
		Before:      map[string]int64{"quantity_in_stock": before},
		After:       map[string]int64{"quantity_in_stock": product.QuantityInStock},
	})
	return &product, nil
}
