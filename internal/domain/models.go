package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category identifies one of the three inventory catalogs served by the backend.
type Category string

const (
	CategoryPaddy     Category = "paddy"
	CategoryEquipment Category = "equipment"
	CategoryChemical  Category = "chemical"
)

// Categories lists every catalog category in display order.
func Categories() []Category {
	return []Category{CategoryPaddy, CategoryEquipment, CategoryChemical}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPaddy, CategoryEquipment, CategoryChemical:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCredit
}

// CatalogItem is the client's read-only snapshot of one inventory row.
// The backend owns the row; price and stock are only as fresh as the last fetch.
type CatalogItem struct {
	ID            string
	DisplayName   string
	UnitPrice     decimal.Decimal
	StockQuantity decimal.Decimal
	Category      Category
}

// LineItem is one product entry on a bill. UnitPrice is snapshotted from the
// catalog when the line is built and never recomputed afterwards. LineID is a
// client-only identifier used for list rendering and removal; it is not
// persisted and has no relation to ItemID.
type LineItem struct {
	LineID      string
	ItemID      string
	Category    Category
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	ExtPrice    decimal.Decimal
}

// Customer is the bill-to block of a draft or persisted bill.
type Customer struct {
	Name    string
	Address string
	Phone   string
}

// Totals are the three aggregates shown under every bill table.
// TotalPrice is derived by adding each line's discount back onto its extended
// price rather than recomputing quantity*unitPrice; see the billing package.
type Totals struct {
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	NetPrice       decimal.Decimal
}

// PersistedItem is a line item as the backend returns it inside a bill.
type PersistedItem struct {
	ID          string
	ItemID      string
	Category    Category
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	ExtPrice    decimal.Decimal
}

// PersistedBill is a bill owned by the backend. The client holds at most a
// transient read or edit copy. Items is empty on list responses and populated
// when a single bill is fetched.
type PersistedBill struct {
	ID             string
	BillNumber     string
	Customer       Customer
	PaymentType    PaymentMethod
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	NetPrice       decimal.Decimal
	IsPaid         bool
	CreatedAt      time.Time
	Items          []PersistedItem
}

// BillInput is the payload for creating or replacing a bill. On update the
// backend replaces the entire item set, so Items always carries the full
// desired state. BillNumber and PaymentType are only sent on create.
type BillInput struct {
	BillNumber  string
	Customer    Customer
	PaymentType PaymentMethod
	Totals      Totals
	Items       []LineItem
}
