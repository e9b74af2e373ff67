package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db        *gorm.DB
	forUpdate bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Users() UserRepository                 { return &userRepo{s} }
func (s *GormStore) Projects() ProjectRepository           { return &projectRepo{s} }
func (s *GormStore) Suppliers() SupplierRepository         { return &supplierRepo{s} }
func (s *GormStore) Products() ProductRepository           { return &productRepo{s} }
func (s *GormStore) Orders() OrderRepository               { return &orderRepo{s} }
func (s *GormStore) Invoices() InvoiceRepository           { return &invoiceRepo{s} }
func (s *GormStore) Receptions() ReceptionRepository       { return &receptionRepo{s} }
func (s *GormStore) QualityChecks() QualityCheckRepository { return &qualityRepo{s} }
func (s *GormStore) ErpLogs() ErpLogRepository             { return &erpLogRepo{s} }
func (s *GormStore) AuditLogs() AuditLogRepository         { return &auditLogRepo{s} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, forUpdate: true})
	})
}

func (s *GormStore) q(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// lockRow adds FOR UPDATE when running inside Transaction.
func (s *GormStore) lockRow(q *gorm.DB) *gorm.DB {
	if s.forUpdate {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
