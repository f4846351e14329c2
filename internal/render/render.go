// Package render produces printable projections of a bill: a plain-text
// invoice for the terminal and an xlsx workbook for handing to the customer.
// Rendering is a pure read of its input; nothing here touches the backend.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"sanraw/console/internal/billing"
	"sanraw/console/internal/domain"
)

const (
	companyName    = "SANRAW AGRICULTURE"
	companyTagline = "Rice Mill & Agri Supplies"
)

// Line is one printable invoice row.
type Line struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	ExtPrice    decimal.Decimal
}

// Bill is the render-ready view of a bill, assembled either from an unsaved
// draft or from a persisted record.
type Bill struct {
	BillNumber  string
	IssuedAt    time.Time
	Customer    domain.Customer
	PaymentType domain.PaymentMethod
	Paid        bool
	Lines       []Line
	Totals      domain.Totals
}

// FromDraft projects an unsaved draft for preview. The caller supplies the
// bill number and timestamp since a draft carries neither.
func FromDraft(d *billing.Draft, billNumber string, issuedAt time.Time) Bill {
	b := Bill{
		BillNumber:  billNumber,
		IssuedAt:    issuedAt,
		Customer:    d.Customer(),
		PaymentType: d.PaymentMethod(),
		Totals:      d.Totals(),
	}
	for _, line := range d.Lines() {
		b.Lines = append(b.Lines, Line{
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			ExtPrice:    line.ExtPrice,
		})
	}
	return b
}

func FromPersisted(bill *domain.PersistedBill) Bill {
	b := Bill{
		BillNumber:  bill.BillNumber,
		IssuedAt:    bill.CreatedAt,
		Customer:    bill.Customer,
		PaymentType: bill.PaymentType,
		Paid:        bill.IsPaid,
		Totals: domain.Totals{
			TotalPrice:     bill.TotalPrice,
			DiscountAmount: bill.DiscountAmount,
			NetPrice:       bill.NetPrice,
		},
	}
	for _, item := range bill.Items {
		b.Lines = append(b.Lines, Line{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			ExtPrice:    item.ExtPrice,
		})
	}
	return b
}

// Text lays the bill out as a fixed-width invoice suitable for a terminal or
// a dot-matrix printer.
func Text(b Bill) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n%s\n\n", companyName, companyTagline)
	fmt.Fprintf(&sb, "Bill No : %s\n", b.BillNumber)
	fmt.Fprintf(&sb, "Date    : %s\n", b.IssuedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&sb, "Payment : %s", b.PaymentType)
	if b.Paid {
		sb.WriteString(" (PAID)")
	}
	sb.WriteString("\n\n")

	sb.WriteString("Bill To:\n")
	fmt.Fprintf(&sb, "  %s\n", b.Customer.Name)
	if b.Customer.Address != "" {
		fmt.Fprintf(&sb, "  %s\n", b.Customer.Address)
	}
	if b.Customer.Phone != "" {
		fmt.Fprintf(&sb, "  %s\n", b.Customer.Phone)
	}
	sb.WriteString("\n")

	rule := strings.Repeat("-", 78)
	fmt.Fprintf(&sb, "%-4s %-28s %12s %8s %10s %12s\n",
		"No.", "Product", "Unit Price", "Qty", "Discount", "Ext Price")
	sb.WriteString(rule + "\n")
	for i, line := range b.Lines {
		fmt.Fprintf(&sb, "%-4d %-28s %12s %8s %10s %12s\n",
			i+1,
			truncate(line.ProductName, 28),
			line.UnitPrice.StringFixed(2),
			line.Quantity.String(),
			line.Discount.StringFixed(2),
			line.ExtPrice.StringFixed(2))
	}
	sb.WriteString(rule + "\n")

	fmt.Fprintf(&sb, "%66s %11s\n", "Total:", b.Totals.TotalPrice.StringFixed(2))
	fmt.Fprintf(&sb, "%66s %11s\n", "Discount:", b.Totals.DiscountAmount.StringFixed(2))
	fmt.Fprintf(&sb, "%66s %11s\n", "Net:", b.Totals.NetPrice.StringFixed(2))

	return sb.String()
}

// Workbook lays the bill out as a single-sheet xlsx file. The caller decides
// where (or whether) to save it.
func Workbook(b Bill) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Bill"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	set := func(cell string, value any) error {
		return f.SetCellValue(sheet, cell, value)
	}
	header := [][2]any{
		{"A1", companyName},
		{"A2", companyTagline},
		{"A4", "Bill No"}, {"B4", b.BillNumber},
		{"A5", "Date"}, {"B5", b.IssuedAt.Format("02 Jan 2006 15:04")},
		{"A6", "Payment"}, {"B6", string(b.PaymentType)},
		{"A7", "Customer"}, {"B7", b.Customer.Name},
		{"A8", "Address"}, {"B8", b.Customer.Address},
		{"A9", "Phone"}, {"B9", b.Customer.Phone},
	}
	for _, kv := range header {
		if err := set(kv[0].(string), kv[1]); err != nil {
			return nil, err
		}
	}

	cols := []string{"No.", "Product", "Unit Price", "Qty", "Discount", "Ext Price"}
	for i, title := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 11)
		if err != nil {
			return nil, err
		}
		if err := set(cell, title); err != nil {
			return nil, err
		}
	}

	row := 12
	for i, line := range b.Lines {
		values := []any{
			i + 1,
			line.ProductName,
			line.UnitPrice.StringFixed(2),
			line.Quantity.String(),
			line.Discount.StringFixed(2),
			line.ExtPrice.StringFixed(2),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := set(cell, value); err != nil {
				return nil, err
			}
		}
		row++
	}

	row++
	totals := [][2]any{
		{"Total", b.Totals.TotalPrice.StringFixed(2)},
		{"Discount", b.Totals.DiscountAmount.StringFixed(2)},
		{"Net", b.Totals.NetPrice.StringFixed(2)},
	}
	for _, kv := range totals {
		labelCell, err := excelize.CoordinatesToCellName(5, row)
		if err != nil {
			return nil, err
		}
		valueCell, err := excelize.CoordinatesToCellName(6, row)
		if err != nil {
			return nil, err
		}
		if err := set(labelCell, kv[0]); err != nil {
			return nil, err
		}
		if err := set(valueCell, kv[1]); err != nil {
			return nil, err
		}
		row++
	}

	return f, nil
}

// truncate counts runes, not bytes, so multi-byte product names are never
// cut mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
