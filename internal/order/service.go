package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/finance"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const entityType = "purchase_order"

var ErrNotEditable = fiber.NewError(fiber.StatusConflict, "Only draft orders can change their items")

type Service struct {
	store  repository.Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(store repository.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

type ItemInput struct {
	ProductID   *uint
	ProductName string
	Quantity    int64
	UnitPrice   *decimal.Decimal
}

type CreateInput struct {
	OrderNumber string
	SupplierID  uint
	ProjectID   *uint
	Status      models.OrderStatus
	Notes       string
	Items       []ItemInput
}

func (s *Service) List(ctx context.Context, f repository.OrderFilter) ([]models.PurchaseOrder, error) {
	return s.store.Orders().List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	return s.store.Orders().FindByID(ctx, id)
}

// buildItems resolves catalogue products and prices every line.
func buildItems(ctx context.Context, tx repository.Store, in []ItemInput) ([]models.PurchaseOrderItem, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{"items": "min"}}
	}

	var ids []uint
	for _, it := range in {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	products, err := tx.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.PurchaseOrderItem, 0, len(in))
	lines := make([]finance.Line, 0, len(in))
	for i, it := range in {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if it.Quantity <= 0 {
			return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{field("quantity"): "gt"}}
		}

		item := models.PurchaseOrderItem{
			ProductID:   it.ProductID,
			ProductName: strings.TrimSpace(it.ProductName),
			Quantity:    it.Quantity,
		}
		if it.ProductID != nil {
			p, ok := byID[*it.ProductID]
			if !ok {
				return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{field("product_id"): "exists"}}
			}
			if item.ProductName == "" {
				item.ProductName = p.Name
			}
			item.UnitPrice = p.UnitPrice
		}
		if it.UnitPrice != nil {
			item.UnitPrice = *it.UnitPrice
		} else if it.ProductID == nil {
			return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{field("unit_price"): "required"}}
		}
		if item.ProductName == "" {
			return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{field("product_name"): "required"}}
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, &httpx.ValidationError{Fields: map[string]string{field("unit_price"): "gte"}}
		}

		item.UnitPrice = item.UnitPrice.Round(finance.CurrencyPlaces)
		item.TotalPrice = finance.LineTotal(item.Quantity, item.UnitPrice)
		items = append(items, item)
		lines = append(lines, finance.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return items, finance.OrderTotal(lines), nil
}

// Create inserts the order, its items and the computed total in one transaction.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (*models.PurchaseOrder, error) {
	if in.Status == "" {
		in.Status = models.OrderDraft
	}
	if err := status.CheckInitial(status.PurchaseOrder, string(in.Status)); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.OrderNumber)
	if number == "" {
		number = fmt.Sprintf("PO-%d", s.now().UnixMilli())
	}

	var orderID uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := requireRefs(ctx, tx, in.SupplierID, in.ProjectID); err != nil {
			return err
		}
		items, total, err := buildItems(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		o := &models.PurchaseOrder{
			OrderNumber: number,
			SupplierID:  in.SupplierID,
			ProjectID:   in.ProjectID,
			CreatedBy:   actor.ID,
			Status:      in.Status,
			TotalAmount: total,
			Notes:       strings.TrimSpace(in.Notes),
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		orderID = o.ID
		return tx.Orders().ReplaceItems(ctx, o.ID, items)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    orderID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Purchase order %s created, total %s", created.OrderNumber, created.TotalAmount.StringFixed(finance.CurrencyPlaces)),
		After:       created,
	})
	return created, nil
}

func requireRefs(ctx context.Context, tx repository.Store, supplierID uint, projectID *uint) error {
	if _, err := tx.Suppliers().FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &httpx.ValidationError{Fields: map[string]string{"supplier_id": "exists"}}
		}
		return err
	}
	if projectID != nil {
		if _, err := tx.Projects().FindByID(ctx, *projectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &httpx.ValidationError{Fields: map[string]string{"project_id": "exists"}}
			}
			return err
		}
	}
	return nil
}

// ReplaceItems swaps the items of a draft order and recomputes its total.
func (s *Service) ReplaceItems(ctx context.Context, actor audit.Actor, id uint, in []ItemInput) (*models.PurchaseOrder, error) {
	var before decimal.Decimal
	var after decimal.Decimal
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != models.OrderDraft {
			return ErrNotEditable
		}
		before = o.TotalAmount

		items, total, err := buildItems(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := tx.Orders().ReplaceItems(ctx, id, items); err != nil {
			return err
		}
		after = total
		return tx.Orders().UpdateTotal(ctx, id, total)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.store, s.logger, audit.LogOptions{
		Actor:       actor,
		EntityType:  entityType,
		EntityID:    id,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Items replaced, total %s -> %s", before.StringFixed(finance.CurrencyPlaces), after.StringFixed(finance.CurrencyPlaces)),
		Before:      map[string]decimal.Decimal{"total_amount": before},
		After:       map[string]decimal.Decimal{"total_amount": after},
	})
	return s.store.Orders().FindByID(ctx, id)
}

func (s *Service) ChangeStatus(ctx context.Context, actor audit.Actor, id uint, next models.OrderStatus) (*models.PurchaseOrder, error) {
	var from models.OrderStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := status.CheckTransition(status.PurchaseOrder, string(from), string(next)); err != nil {
			return err
		}
		return tx.Orders().UpdateStatus(ctx, id, next)
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
	return s.store.Orders().FindByID(ctx, id)
}
