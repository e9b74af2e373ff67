// Package repository is the data-access facade every service is built on.
// Store is injected into services; the gorm implementation lives here and
// an in-memory one in the memory subpackage.
package repository

import (
	"context"
	"errors"

	"procurement-backend/internal/finance"
	"procurement-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Suppliers() SupplierRepository
	Products() ProductRepository
	Orders() OrderRepository
	Invoices() InvoiceRepository
	Receptions() ReceptionRepository
	QualityChecks() QualityCheckRepository
	ErpLogs() ErpLogRepository
	AuditLogs() AuditLogRepository

	// Transaction runs fn against a store bound to one transaction.
	// Rows read by FindByID inside fn are locked until commit.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	// LockForRoleChange blocks other role checks until the surrounding
	// transaction ends. Outside a transaction it is a no-op.
	LockForRoleChange(ctx context.Context) error
}

type ProjectFilter struct {
	Statuses []models.ProjectStatus
	Limit    int
}

type ProjectRepository interface {
	List(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	Count(ctx context.Context, f ProjectFilter) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	UpdateStatus(ctx context.Context, id uint, s models.ProjectStatus) error
}

type SupplierFilter struct {
	Statuses []models.SupplierStatus
	Search   string
}

type SupplierRepository interface {
	List(ctx context.Context, f SupplierFilter) ([]models.Supplier, error)
	Count(ctx context.Context, f SupplierFilter) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Supplier, error)
	Create(ctx context.Context, s *models.Supplier) error
	Update(ctx context.Context, s *models.Supplier) error
}

type ProductFilter struct {
	LowStock bool
	Category string
}

type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Count(ctx context.Context, f ProductFilter) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
}

type OrderFilter struct {
	Statuses   []models.OrderStatus
	SupplierID uint
	ProjectID  uint
	Limit      int
}

type OrderRepository interface {
	// List returns newest first with supplier and project expanded.
	List(ctx context.Context, f OrderFilter) ([]models.PurchaseOrder, error)
	Count(ctx context.Context, f OrderFilter) (int64, error)
	// FindByID expands supplier, project, creator and items.
	FindByID(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	// Create inserts the order row only; items go through ReplaceItems.
	Create(ctx context.Context, o *models.PurchaseOrder) error
	ReplaceItems(ctx context.Context, orderID uint, items []models.PurchaseOrderItem) error
	UpdateStatus(ctx context.Context, id uint, s models.OrderStatus) error
	UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error
	Amounts(ctx context.Context) ([]finance.OrderAmount, error)
}

type InvoiceFilter struct {
	Statuses        []models.InvoiceStatus
	SupplierID      uint
	PurchaseOrderID uint
}

type InvoiceRepository interface {
	List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error)
	Count(ctx context.Context, f InvoiceFilter) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	Create(ctx context.Context, inv *models.Invoice) error
	// Update writes status and paid amount.
	Update(ctx context.Context, inv *models.Invoice) error
	Amounts(ctx context.Context) ([]finance.InvoiceAmount, error)
}

type ReceptionFilter struct {
	PurchaseOrderID uint
}

type ReceptionRepository interface {
	List(ctx context.Context, f ReceptionFilter) ([]models.Reception, error)
	FindByID(ctx context.Context, id uint) (*models.Reception, error)
	Create(ctx context.Context, r *models.Reception) error
}

type QualityCheckFilter struct {
	Results     []models.QualityResult
	ReceptionID uint
}

type QualityCheckRepository interface {
	List(ctx context.Context, f QualityCheckFilter) ([]models.QualityCheck, error)
	FindByID(ctx context.Context, id uint) (*models.QualityCheck, error)
	Create(ctx context.Context, q *models.QualityCheck) error
}

type ErpLogFilter struct {
	EntityType string
	EntityID   uint
	Limit      int
}

type ErpLogRepository interface {
	Create(ctx context.Context, l *models.ErpLog) error
	List(ctx context.Context, f ErpLogFilter) ([]models.ErpLog, error)
	Count(ctx context.Context, f ErpLogFilter) (int64, error)
}

type AuditLogFilter struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Limit      int
}

type AuditLogRepository interface {
	Create(ctx context.Context, l *models.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]models.AuditLog, error)
}
