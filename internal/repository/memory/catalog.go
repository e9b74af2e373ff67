package memory

import (
	"context"
	"sort"
	"time"

	"procurement-backend/internal/finance"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type productRepo struct{ s *Store }

func (r *productRepo) match(f repository.ProductFilter) []models.Product {
	var out []models.Product
	for _, p := range r.s.data.products {
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]models.Product, error) {
	if err := r.s.lock(ctx, "products.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *productRepo) Count(ctx context.Context, f repository.ProductFilter) (int64, error) {
	if err := r.s.lock(ctx, "products.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	if err := r.s.lock(ctx, "products.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if err := r.s.lock(ctx, "products.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.s.data.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := r.s.lock(ctx, "products.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.products {
		if existing.SKU == p.SKU {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.data.products[p.ID] = *p
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if err := r.s.lock(ctx, "products.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = r.s.tick()
	r.s.data.products[p.ID] = *p
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) match(f repository.OrderFilter) []models.PurchaseOrder {
	var out []models.PurchaseOrder
	for _, o := range r.s.data.orders {
		if len(f.Statuses) > 0 && !contains(f.Statuses, o.Status) {
			continue
		}
		if f.SupplierID != 0 && o.SupplierID != f.SupplierID {
			continue
		}
		if f.ProjectID != 0 && (o.ProjectID == nil || *o.ProjectID != f.ProjectID) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// must be called with mu held
func (s *Store) expandOrder(o *models.PurchaseOrder) {
	if sup, ok := s.data.suppliers[o.SupplierID]; ok {
		o.Supplier = &sup
	}
	if o.ProjectID != nil {
		if p, ok := s.data.projects[*o.ProjectID]; ok {
			o.Project = &p
		}
	}
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]models.PurchaseOrder, error) {
	if err := r.s.lock(ctx, "purchase_orders.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	newestFirst(out, func(o models.PurchaseOrder) time.Time { return o.CreatedAt }, func(o models.PurchaseOrder) uint { return o.ID })
	out = limit(out, f.Limit)
	for i := range out {
		r.s.expandOrder(&out[i])
	}
	return out, nil
}

func (r *orderRepo) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	if err := r.s.lock(ctx, "purchase_orders.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	if err := r.s.lock(ctx, "purchase_orders.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.expandOrder(&o)
	o.Creator = r.s.userPtr(o.CreatedBy)
	o.Items = nil
	for _, it := range r.s.data.items {
		if it.PurchaseOrderID == id {
			o.Items = append(o.Items, it)
		}
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	return &o, nil
}

func (r *orderRepo) Create(ctx context.Context, o *models.PurchaseOrder) error {
	if err := r.s.lock(ctx, "purchase_orders.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.orders {
		if existing.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	o.ID = r.s.nextID()
	o.CreatedAt = r.s.tick()
	o.UpdatedAt = o.CreatedAt
	row := *o
	row.Supplier, row.Project, row.Creator, row.Items = nil, nil, nil, nil
	r.s.data.orders[o.ID] = row
	return nil
}

func (r *orderRepo) ReplaceItems(ctx context.Context, orderID uint, items []models.PurchaseOrderItem) error {
	if err := r.s.lock(ctx, "purchase_order_items.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for id, it := range r.s.data.items {
		if it.PurchaseOrderID == orderID {
			delete(r.s.data.items, id)
		}
	}
	for i := range items {
		items[i].ID = r.s.nextID()
		items[i].PurchaseOrderID = orderID
		items[i].CreatedAt = r.s.tick()
		row := items[i]
		row.Product = nil
		r.s.data.items[row.ID] = row
	}
	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, st models.OrderStatus) error {
	if err := r.s.lock(ctx, "purchase_orders.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = st
	o.UpdatedAt = r.s.tick()
	r.s.data.orders[id] = o
	return nil
}

func (r *orderRepo) UpdateTotal(ctx context.Context, id uint, total decimal.Decimal) error {
	if err := r.s.lock(ctx, "purchase_orders.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.TotalAmount = total
	o.UpdatedAt = r.s.tick()
	r.s.data.orders[id] = o
	return nil
}

func (r *orderRepo) Amounts(ctx context.Context) ([]finance.OrderAmount, error) {
	if err := r.s.lock(ctx, "purchase_orders.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := make([]finance.OrderAmount, 0, len(r.s.data.orders))
	for _, o := range r.s.data.orders {
		out = append(out, finance.OrderAmount{
			Status:      string(o.Status),
			TotalAmount: decimal.NewNullDecimal(o.TotalAmount),
		})
	}
	return out, nil
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) match(f repository.InvoiceFilter) []models.Invoice {
	var out []models.Invoice
	for _, inv := range r.s.data.invoices {
		if len(f.Statuses) > 0 && !contains(f.Statuses, inv.Status) {
			continue
		}
		if f.SupplierID != 0 && inv.SupplierID != f.SupplierID {
			continue
		}
		if f.PurchaseOrderID != 0 && (inv.PurchaseOrderID == nil || *inv.PurchaseOrderID != f.PurchaseOrderID) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// must be called with mu held
func (s *Store) expandInvoice(inv *models.Invoice) {
	if sup, ok := s.data.suppliers[inv.SupplierID]; ok {
		inv.Supplier = &sup
	}
	if inv.PurchaseOrderID != nil {
		if o, ok := s.data.orders[*inv.PurchaseOrderID]; ok {
			inv.PurchaseOrder = &o
		}
	}
}

func (r *invoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]models.Invoice, error) {
	if err := r.s.lock(ctx, "invoices.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	newestFirst(out, func(inv models.Invoice) time.Time { return inv.InvoiceDate }, func(inv models.Invoice) uint { return inv.ID })
	for i := range out {
		r.s.expandInvoice(&out[i])
	}
	return out, nil
}

func (r *invoiceRepo) Count(ctx context.Context, f repository.InvoiceFilter) (int64, error) {
	if err := r.s.lock(ctx, "invoices.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	if err := r.s.lock(ctx, "invoices.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	inv, ok := r.s.data.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.expandInvoice(&inv)
	inv.Creator = r.s.userPtr(inv.CreatedBy)
	return &inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	if err := r.s.lock(ctx, "invoices.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return repository.ErrDuplicate
		}
	}
	inv.ID = r.s.nextID()
	inv.CreatedAt = r.s.tick()
	inv.UpdatedAt = inv.CreatedAt
	row := *inv
	row.Supplier, row.PurchaseOrder, row.Creator = nil, nil, nil
	r.s.data.invoices[inv.ID] = row
	return nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	if err := r.s.lock(ctx, "invoices.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	row, ok := r.s.data.invoices[inv.ID]
	if !ok {
		return repository.ErrNotFound
	}
	row.Status = inv.Status
	row.PaidAmount = inv.PaidAmount
	row.UpdatedAt = r.s.tick()
	r.s.data.invoices[inv.ID] = row
	return nil
}

func (r *invoiceRepo) Amounts(ctx context.Context) ([]finance.InvoiceAmount, error) {
	if err := r.s.lock(ctx, "invoices.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := make([]finance.InvoiceAmount, 0, len(r.s.data.invoices))
	for _, inv := range r.s.data.invoices {
		out = append(out, finance.InvoiceAmount{
			TotalAmount: decimal.NewNullDecimal(inv.TotalAmount),
			PaidAmount:  decimal.NewNullDecimal(inv.PaidAmount),
		})
	}
	return out, nil
}
