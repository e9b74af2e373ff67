// Package finance computes order and invoice amounts at currency precision.
package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places money is stored with.
const CurrencyPlaces = 2

type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity x unit price rounded to currency precision.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(CurrencyPlaces)
}

// OrderTotal sums the line totals of lines.
func OrderTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return total
}

// Balance is what is still owed on an invoice. It can be zero or negative.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

type OrderAmount struct {
	Status      string
	TotalAmount decimal.NullDecimal
}

type InvoiceAmount struct {
	TotalAmount decimal.NullDecimal
	PaidAmount  decimal.NullDecimal
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Aggregates struct {
	TotalOrderValue    decimal.Decimal `json:"total_order_value"`
	TotalInvoiceAmount decimal.Decimal `json:"total_invoice_amount"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	OrdersByStatus     []StatusCount   `json:"orders_by_status"`
}

// Aggregate folds the fetched rows into report totals. NULL amounts count as zero.
func Aggregate(orders []OrderAmount, invoices []InvoiceAmount) Aggregates {
	agg := Aggregates{
		TotalOrderValue:    decimal.Zero,
		TotalInvoiceAmount: decimal.Zero,
		TotalPaid:          decimal.Zero,
	}

	counts := map[string]int{}
	for _, o := range orders {
		agg.TotalOrderValue = agg.TotalOrderValue.Add(orZero(o.TotalAmount))
		counts[o.Status]++
	}
	for _, inv := range invoices {
		agg.TotalInvoiceAmount = agg.TotalInvoiceAmount.Add(orZero(inv.TotalAmount))
		agg.TotalPaid = agg.TotalPaid.Add(orZero(inv.PaidAmount))
	}
	agg.Outstanding = agg.TotalInvoiceAmount.Sub(agg.TotalPaid)

	agg.OrdersByStatus = make([]StatusCount, 0, len(counts))
	for s, n := range counts {
		agg.OrdersByStatus = append(agg.OrdersByStatus, StatusCount{Status: s, Count: n})
	}
	sort.Slice(agg.OrdersByStatus, func(i, j int) bool {
		if agg.OrdersByStatus[i].Count != agg.OrdersByStatus[j].Count {
			return agg.OrdersByStatus[i].Count > agg.OrdersByStatus[j].Count
		}
		return agg.OrdersByStatus[i].Status < agg.OrdersByStatus[j].Status
	})

	return agg
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
