package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"procurement-backend/internal/finance"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrArchiveDisabled = errors.New("report archive is not configured")

const (
	sheetSummary = "Summary"
	sheetStatus  = "Orders by status"
	sheetErpLogs = "ERP logs"
)

// WriteXLSX renders the report as a workbook with one sheet per section.
func WriteXLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Purchase orders", r.OrderCount},
		{"Validated suppliers", r.ValidatedSuppliers},
		{"Products", r.ProductCount},
		{"Invoices", r.InvoiceCount},
		{"Total order value", amount(r.Totals.TotalOrderValue)},
		{"Total invoiced", amount(r.Totals.TotalInvoiceAmount)},
		{"Total paid", amount(r.Totals.TotalPaid)},
		{"Outstanding", amount(r.Totals.Outstanding)},
		{"Generated at", r.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetStatus); err != nil {
		return nil, err
	}
	rows := [][]any{{"Status", "Orders"}}
	for _, sc := range r.Totals.OrdersByStatus {
		rows = append(rows, []any{sc.Status, sc.Count})
	}
	if err := writeRows(f, sheetStatus, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetErpLogs); err != nil {
		return nil, err
	}
	rows = [][]any{{"Date", "Entity", "Entity ID", "Action", "Status", "Error"}}
	for _, l := range r.RecentErpLogs {
		msg := ""
		if l.ErrorMessage != nil {
			msg = *l.ErrorMessage
		}
		rows = append(rows, []any{l.CreatedAt, l.EntityType, l.EntityID, l.Action, string(l.Status), msg})
	}
	if err := writeRows(f, sheetErpLogs, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.Round(finance.CurrencyPlaces).InexactFloat64()
}

// Archive exports the current report and stores it under reports/.
func (s *Service) Archive(ctx context.Context) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	r, err := s.Report(ctx)
	if err != nil {
		return "", err
	}
	data, err := WriteXLSX(r)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	name := fmt.Sprintf("reports/%s-%s.xlsx", r.GeneratedAt.Format("20060102-150405"), uuid.NewString())
	if err := s.archive.Put(ctx, name, data, XLSXContentType); err != nil {
		return "", err
	}
	return name, nil
}
