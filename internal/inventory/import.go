package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"procurement-backend/internal/audit"
	"procurement-backend/internal/httpx"
	"procurement-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Columns recognised in the header row of an import sheet. name and sku are mandatory.
var importColumns = []string{"name", "sku", "category", "description", "unit_price", "quantity_in_stock", "reorder_level"}

type ImportRowError struct {
	Row    int    `json:"row"`
	SKU    string `json:"sku,omitempty"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Created []uint           `json:"created"`
	Skipped []ImportRowError `json:"skipped"`
}

// ImportXLSX creates one product per row of the first sheet. Rows are independent:
// a bad or duplicate row is reported and the rest still go through.
func (s *Service) ImportXLSX(ctx context.Context, actor audit.Actor, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Could not read spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Could not read sheet")
	}
	if len(rows) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Spreadsheet is empty")
	}

	cols := headerIndex(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, &httpx.ValidationError{Fields: map[string]string{"name": "column_missing"}}
	}
	if _, ok := cols["sku"]; !ok {
		return nil, &httpx.ValidationError{Fields: map[string]string{"sku": "column_missing"}}
	}

	res := &ImportResult{Created: []uint{}, Skipped: []ImportRowError{}}
	for i := 1; i < len(rows); i++ {
		line := i + 1
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(rows[i]) {
				return ""
			}
			return strings.TrimSpace(rows[i][idx])
		}
		if cell("name") == "" && cell("sku") == "" {
			continue
		}

		in, reason := parseImportRow(cell)
		if reason != "" {
			res.Skipped = append(res.Skipped, ImportRowError{Row: line, SKU: cell("sku"), Reason: reason})
			continue
		}
		if err := httpx.Validate(requestFor(in)); err != nil {
			var ve *httpx.ValidationError
			if !errors.As(err, &ve) {
				return nil, err
			}
			res.Skipped = append(res.Skipped, ImportRowError{Row: line, SKU: truncate(in.SKU, 60), Reason: "invalid " + fieldList(ve.Fields)})
			continue
		}

		p, err := s.Create(ctx, actor, in)
		switch {
		case err == nil:
			res.Created = append(res.Created, p.ID)
		case errors.Is(err, repository.ErrDuplicate):
			res.Skipped = append(res.Skipped, ImportRowError{Row: line, SKU: in.SKU, Reason: "duplicate sku"})
		default:
			var ve *httpx.ValidationError
			if errors.As(err, &ve) {
				res.Skipped = append(res.Skipped, ImportRowError{Row: line, SKU: in.SKU, Reason: "invalid " + fieldList(ve.Fields)})
				continue
			}
			return nil, err
		}
	}

	s.logger.WithField("module", "inventory").
		Infof("product import: %d created, %d skipped", len(res.Created), len(res.Skipped))
	return res, nil
}

func headerIndex(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		for _, c := range importColumns {
			if key == c {
				out[c] = i
			}
		}
	}
	return out
}

func parseImportRow(cell func(string) string) (CreateInput, string) {
	in := CreateInput{
		Name:        cell("name"),
		SKU:         cell("sku"),
		Category:    cell("category"),
		Description: cell("description"),
	}
	if in.Name == "" {
		return in, "name is required"
	}
	if in.SKU == "" {
		return in, "sku is required"
	}
	if v := cell("unit_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return in, fmt.Sprintf("unit_price %q is not a number", v)
		}
		in.UnitPrice = d
	}
	var err error
	if in.QuantityInStock, err = parseCount(cell("quantity_in_stock")); err != nil {
		return in, "quantity_in_stock " + err.Error()
	}
	if in.ReorderLevel, err = parseCount(cell("reorder_level")); err != nil {
		return in, "reorder_level " + err.Error()
	}
	return in, ""
}

func parseCount(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.New("is not a whole number")
	}
	if n < 0 {
		return 0, errors.New("is negative")
	}
	return n, nil
}

// requestFor holds an import row to the same limits as POST /products.
func requestFor(in CreateInput) CreateProductRequest {
	return CreateProductRequest{
		Name:            in.Name,
		SKU:             in.SKU,
		Category:        in.Category,
		Description:     in.Description,
		UnitPrice:       in.UnitPrice,
		QuantityInStock: in.QuantityInStock,
		ReorderLevel:    in.ReorderLevel,
	}
}

func fieldList(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
