package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type fakeArchive struct {
	mu    sync.Mutex
	names []string
	data  [][]byte
	err   error
}

func (f *fakeArchive) Put(ctx context.Context, name string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	f.data = append(f.data, data)
	return nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	valid := &models.Supplier{Name: "Acme", Status: models.SupplierValidated}
	pending := &models.Supplier{Name: "Beta", Status: models.SupplierPendingValidation}
	for _, s := range []*models.Supplier{valid, pending} {
		if err := store.Suppliers().Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	orders := []struct {
		st    models.OrderStatus
		total int64
	}{
		{models.OrderDraft, 100},
		{models.OrderSubmitted, 200},
		{models.OrderDelivered, 50},
		{models.OrderDelivered, 25},
		{models.OrderCancelled, 0},
		{models.OrderApproved, 10},
	}
	for i, o := range orders {
		po := &models.PurchaseOrder{
			OrderNumber: "PO-" + string(rune('A'+i)),
			SupplierID:  valid.ID,
			Status:      o.st,
			TotalAmount: decimal.NewFromInt(o.total),
		}
		if err := store.Orders().Create(ctx, po); err != nil {
			t.Fatal(err)
		}
	}

	products := []*models.Product{
		{Name: "at", SKU: "A", QuantityInStock: 5, ReorderLevel: 5},
		{Name: "below", SKU: "B", QuantityInStock: 1, ReorderLevel: 5},
		{Name: "above", SKU: "C", QuantityInStock: 9, ReorderLevel: 5},
	}
	for _, p := range products {
		if err := store.Products().Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	for i, amounts := range [][2]int64{{500, 200}, {300, 0}} {
		inv := &models.Invoice{
			InvoiceNumber: "INV-" + string(rune('A'+i)),
			SupplierID:    valid.ID,
			Status:        models.InvoiceValidated,
			InvoiceDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			TotalAmount:   decimal.NewFromInt(amounts[0]),
			PaidAmount:    decimal.NewFromInt(amounts[1]),
		}
		if err := store.Invoices().Create(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 12; i++ {
		if err := store.ErpLogs().Create(ctx, &models.ErpLog{EntityType: "invoice", EntityID: 1, Action: models.ErpActionSyncToErp, Status: models.ErpLogSuccess}); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestOverviewCounts(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil, testutil.Logger())

	out, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalOrders != 6 || out.PendingOrders != 3 || out.CompletedOrders != 2 {
		t.Errorf("orders total/pending/completed = %d/%d/%d", out.TotalOrders, out.PendingOrders, out.CompletedOrders)
	}
	if out.LowStockProducts != 2 {
		t.Errorf("low stock = %d, want 2", out.LowStockProducts)
	}
	if len(out.RecentOrders) != 5 {
		t.Errorf("recent orders = %d", len(out.RecentOrders))
	}
	if out.RecentOrders[0].OrderNumber != "PO-F" || out.RecentOrders[0].SupplierName != "Acme" {
		t.Errorf("newest order = %+v", out.RecentOrders[0])
	}
}

func TestOverviewPropagatesStoreErrors(t *testing.T) {
	store := seedStore(t)
	store.FailNext("products.count", errors.New("timeout"))
	svc := NewService(store, nil, nil, testutil.Logger())

	if _, err := svc.Overview(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReportAggregates(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil, testutil.Logger())

	r, err := svc.Report(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.OrderCount != 6 || r.ValidatedSuppliers != 1 || r.ProductCount != 3 || r.InvoiceCount != 2 {
		t.Errorf("counts = %+v", r)
	}
	if !r.Totals.TotalOrderValue.Equal(decimal.NewFromInt(385)) {
		t.Errorf("order value = %s", r.Totals.TotalOrderValue)
	}
	if !r.Totals.Outstanding.Equal(decimal.NewFromInt(600)) {
		t.Errorf("outstanding = %s", r.Totals.Outstanding)
	}
	if len(r.Totals.OrdersByStatus) == 0 || r.Totals.OrdersByStatus[0].Status != "delivered" || r.Totals.OrdersByStatus[0].Count != 2 {
		t.Errorf("histogram = %+v", r.Totals.OrdersByStatus)
	}
	if len(r.RecentErpLogs) != 10 {
		t.Errorf("erp logs = %d, want 10", len(r.RecentErpLogs))
	}
}

func TestWriteXLSXIsReadable(t *testing.T) {
	svc := NewService(seedStore(t), nil, nil, testutil.Logger())
	r, err := svc.Report(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	data, err := WriteXLSX(r)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != sheetSummary {
		t.Fatalf("sheets = %v", sheets)
	}
	v, err := f.GetCellValue(sheetSummary, "B2")
	if err != nil || v != "6" {
		t.Errorf("order count cell = %q, %v", v, err)
	}
	rows, err := f.GetRows(sheetErpLogs)
	if err != nil || len(rows) != 11 {
		t.Errorf("erp log rows = %d, %v", len(rows), err)
	}
}

func TestArchive(t *testing.T) {
	store := seedStore(t)

	svc := NewService(store, nil, nil, testutil.Logger())
	if _, err := svc.Archive(context.Background()); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("err = %v", err)
	}

	arch := &fakeArchive{}
	svc = NewService(store, nil, arch, testutil.Logger())
	name, err := svc.Archive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(name, "reports/") || !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("object name = %q", name)
	}
	if len(arch.data) != 1 || len(arch.data[0]) == 0 {
		t.Errorf("nothing uploaded")
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	if c := NewReportCache(nil, time.Minute); c != nil {
		t.Error("cache without a client should be nil")
	}
	var c *ReportCache
	hit, err := c.Get(context.Background(), "k", &Report{})
	if hit || err != nil {
		t.Errorf("nil cache get = %v, %v", hit, err)
	}
	if err := c.Set(context.Background(), "k", Report{}); err != nil {
		t.Error(err)
	}
}

func TestWithServiceNameNamesTracer(t *testing.T) {
	svc := NewService(memory.NewStore(), nil, nil, testutil.Logger()).WithServiceName("procurement-staging")
	if svc.tracerName != "procurement-staging/dashboard" {
		t.Errorf("tracer = %q", svc.tracerName)
	}
}
