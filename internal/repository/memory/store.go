// Package memory provides an in-memory repository.Store for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
)

type state struct {
	seq        uint
	users      map[uint]models.User
	projects   map[uint]models.Project
	suppliers  map[uint]models.Supplier
	products   map[uint]models.Product
	orders     map[uint]models.PurchaseOrder
	items      map[uint]models.PurchaseOrderItem
	invoices   map[uint]models.Invoice
	receptions map[uint]models.Reception
	quality    map[uint]models.QualityCheck
	erpLogs    map[uint]models.ErpLog
	auditLogs  map[uint]models.AuditLog
}

func newState() *state {
	return &state{
		users:      map[uint]models.User{},
		projects:   map[uint]models.Project{},
		suppliers:  map[uint]models.Supplier{},
		products:   map[uint]models.Product{},
		orders:     map[uint]models.PurchaseOrder{},
		items:      map[uint]models.PurchaseOrderItem{},
		invoices:   map[uint]models.Invoice{},
		receptions: map[uint]models.Reception{},
		quality:    map[uint]models.QualityCheck{},
		erpLogs:    map[uint]models.ErpLog{},
		auditLogs:  map[uint]models.AuditLog{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *state) clone() *state {
	return &state{
		seq:        st.seq,
		users:      cloneMap(st.users),
		projects:   cloneMap(st.projects),
		suppliers:  cloneMap(st.suppliers),
		products:   cloneMap(st.products),
		orders:     cloneMap(st.orders),
		items:      cloneMap(st.items),
		invoices:   cloneMap(st.invoices),
		receptions: cloneMap(st.receptions),
		quality:    cloneMap(st.quality),
		erpLogs:    cloneMap(st.erpLogs),
		auditLogs:  cloneMap(st.auditLogs),
	}
}

// Store is a repository.Store backed by maps. Transactions are serialized
// and roll back to a snapshot when fn returns an error.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	data     *state
	failures map[string][]error
	clock    time.Time
}

func NewStore() *Store {
	return &Store{
		data:     newState(),
		failures: map[string][]error{},
		clock:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

var _ repository.Store = (*Store)(nil)

// FailNext makes the next call of op return err. Ops are named
// "<table>.<method>", e.g. "erp_logs.create" or "invoices.update".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// must be called with mu held
func (s *Store) injected(op string) error {
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	s.failures[op] = queue[1:]
	return queue[0]
}

// must be called with mu held
func (s *Store) nextID() uint {
	s.data.seq++
	return s.data.seq
}

// tick returns a strictly increasing timestamp so ordering by creation is stable.
// must be called with mu held
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Projects() repository.ProjectRepository           { return &projectRepo{s} }
func (s *Store) Suppliers() repository.SupplierRepository         { return &supplierRepo{s} }
func (s *Store) Products() repository.ProductRepository           { return &productRepo{s} }
func (s *Store) Orders() repository.OrderRepository               { return &orderRepo{s} }
func (s *Store) Invoices() repository.InvoiceRepository           { return &invoiceRepo{s} }
func (s *Store) Receptions() repository.ReceptionRepository       { return &receptionRepo{s} }
func (s *Store) QualityChecks() repository.QualityCheckRepository { return &qualityRepo{s} }
func (s *Store) ErpLogs() repository.ErpLogRepository             { return &erpLogRepo{s} }
func (s *Store) AuditLogs() repository.AuditLogRepository         { return &auditLogRepo{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(txStore{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore flattens nested transactions into the outer one.
type txStore struct{ *Store }

func (t txStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func limit[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

// newestFirst sorts by creation time, then id, both descending.
func newestFirst[T any](xs []T, created func(T) time.Time, id func(T) uint) {
	sort.Slice(xs, func(i, j int) bool {
		ci, cj := created(xs[i]), created(xs[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(xs[i]) > id(xs[j])
	})
}

// lock checks ctx, takes mu and applies any injected failure for op.
// On success the caller must release mu.
func (s *Store) lock(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.injected(op); err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}
