package inventory

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/repository/memory"
	"procurement-backend/internal/testutil"

	"github.com/xuri/excelize/v2"
)

func sheet(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestImportXLSX(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger())
	ctx := context.Background()

	if _, err := svc.Create(ctx, audit.Actor{ID: 1}, CreateInput{Name: "Existing", SKU: "DUP-1"}); err != nil {
		t.Fatal(err)
	}

	buf := sheet(t,
		[]any{"SKU", "Name", "Unit Price", "Quantity In Stock", "Reorder Level"},
		[]any{"bolt-10", "Bolt M10", "0.35", "500", "100"},
		[]any{"dup-1", "Duplicate", "1", "", ""},
		[]any{"", "", "", "", ""},
		[]any{"nut-10", "Nut M10", "abc", "1", "1"},
		[]any{"washer", "Washer", "0.05", "-2", "0"},
		[]any{"neg", "Negative", "-1", "", ""},
	)

	res, err := svc.ImportXLSX(ctx, audit.Actor{ID: 1, Name: "Ada"}, buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("created = %v", res.Created)
	}
	p, err := store.Products().FindByID(ctx, res.Created[0])
	if err != nil {
		t.Fatal(err)
	}
	if p.SKU != "BOLT-10" || p.QuantityInStock != 500 || p.ReorderLevel != 100 || p.UnitPrice.String() != "0.35" {
		t.Errorf("imported %+v", p)
	}

	wantRows := map[int]string{3: "duplicate sku", 6: "", 7: "invalid unit_price"}
	if len(res.Skipped) != 4 {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	for _, s := range res.Skipped {
		if want, ok := wantRows[s.Row]; ok && want != "" && s.Reason != want {
			t.Errorf("row %d reason = %q, want %q", s.Row, s.Reason, want)
		}
		if s.Row == 4 {
			t.Error("blank row should be ignored")
		}
	}
}

func TestImportXLSXRejectsBadSheets(t *testing.T) {
	svc := NewService(memory.NewStore(), testutil.Logger())
	ctx := context.Background()

	_, err := svc.ImportXLSX(ctx, audit.Actor{}, bytes.NewBufferString("not a zip"))
	if err == nil {
		t.Fatal("expected error for garbage upload")
	}

	_, err = svc.ImportXLSX(ctx, audit.Actor{}, sheet(t, []any{"Name", "Price"}, []any{"x", "1"}))
	var ve *httpx.ValidationError
	if !errors.As(err, &ve) || ve.Fields["sku"] != "column_missing" {
		t.Fatalf("err = %v", err)
	}
}

func TestImportXLSXStopsOnStoreFailure(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger())
	boom := errors.New("boom")
	store.FailNext("products.create", boom)

	_, err := svc.ImportXLSX(context.Background(), audit.Actor{}, sheet(t, []any{"sku", "name"}, []any{"a", "A"}))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	list, _ := store.Products().List(context.Background(), repository.ProductFilter{})
	if len(list) != 0 {
		t.Errorf("products = %d", len(list))
	}
}

func TestImportXLSXSkipsRowsOverFieldLimits(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, testutil.Logger())
	ctx := context.Background()

	buf := sheet(t,
		[]any{"name", "sku", "category"},
		[]any{strings.Repeat("n", 200), strings.Repeat("S", 90), strings.Repeat("c", 120)},
		[]any{strings.Repeat("n", 151), "LONG-NAME", ""},
		[]any{strings.Repeat("n", 150), "MAX-NAME", "fasteners"},
	)

	res, err := svc.ImportXLSX(ctx, audit.Actor{ID: 1}, buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("created = %v", res.Created)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	if got := res.Skipped[0]; got.Row != 2 || got.Reason != "invalid category, name, sku" || len(got.SKU) != 60 {
		t.Errorf("first skipped = %+v", got)
	}
	if got := res.Skipped[1]; got.Row != 3 || got.Reason != "invalid name" {
		t.Errorf("second skipped = %+v", got)
	}

	list, _ := store.Products().List(ctx, repository.ProductFilter{})
	if len(list) != 1 || list[0].SKU != "MAX-NAME" {
		t.Errorf("products = %+v", list)
	}
}
