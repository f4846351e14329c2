package billing

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sanraw/console/internal/domain"
)

var validate = validator.New()

// Draft is an in-progress, unsaved bill: an ordered list of line items plus
// customer details and a payment method. It is owned exclusively by one
// composition screen for its lifetime and discarded on successful save or
// navigation away.
//
// Totals are recomputed from the line list on every read. There is no cached
// running total and no commit step, so the draft is never partially
// consistent.
type Draft struct {
	id       string
	customer domain.Customer
	payment  domain.PaymentMethod
	lines    []domain.LineItem
}

func NewDraft() *Draft {
	return &Draft{
		id:      uuid.NewString(),
		payment: domain.PaymentCash,
	}
}

// FromPersisted maps a bill loaded from the backend into a fresh draft for
// editing. Persisted item rows get new client line IDs; the backend replaces
// the whole item set on update, so the old row IDs are not carried.
func FromPersisted(bill *domain.PersistedBill) *Draft {
	d := NewDraft()
	d.customer = bill.Customer
	if bill.PaymentType.Valid() {
		d.payment = bill.PaymentType
	}
	for _, item := range bill.Items {
		d.lines = append(d.lines, domain.LineItem{
			LineID:      uuid.NewString(),
			ItemID:      item.ItemID,
			Category:    item.Category,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			ExtPrice:    item.ExtPrice,
		})
	}
	return d
}

// ID identifies this draft instance. It exists only so callers can key
// per-draft state such as the submission lock; it is never persisted.
func (d *Draft) ID() string { return d.id }

func (d *Draft) Customer() domain.Customer { return d.customer }

// SetCustomer stores the bill-to fields as typed. Nothing is validated here;
// the non-empty name rule is enforced at submit time, not at set time.
func (d *Draft) SetCustomer(name, address, phone string) {
	d.customer = domain.Customer{Name: name, Address: address, Phone: phone}
}

func (d *Draft) PaymentMethod() domain.PaymentMethod { return d.payment }

func (d *Draft) SetPaymentMethod(method domain.PaymentMethod) {
	d.payment = method
}

// AddLine appends a line item. Insertion order is display order; it has no
// effect on totals.
func (d *Draft) AddLine(line domain.LineItem) {
	d.lines = append(d.lines, line)
}

// RemoveLine deletes the line with the given client line ID. Removing an
// unknown ID is a no-op; other lines and the customer fields are untouched.
func (d *Draft) RemoveLine(lineID string) {
	for i, line := range d.lines {
		if line.LineID == lineID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity changes a line's quantity in place and recomputes its
// extended price from the stored unit price and discount. A quantity that
// does not parse or is not positive leaves the line unchanged. An unknown
// line ID is a no-op, like RemoveLine.
func (d *Draft) UpdateQuantity(lineID string, quantity string) error {
	qty, err := parsePositive(quantity)
	if err != nil {
		return err
	}
	for i := range d.lines {
		if d.lines[i].LineID == lineID {
			d.lines[i].Quantity = qty
			d.lines[i].ExtPrice = extPrice(qty, d.lines[i].UnitPrice, d.lines[i].Discount)
			return nil
		}
	}
	return nil
}

// Lines returns a copy of the current line items in insertion order.
func (d *Draft) Lines() []domain.LineItem {
	out := make([]domain.LineItem, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Draft) Empty() bool { return len(d.lines) == 0 }

// Totals recomputes the aggregates from the current lines. TotalPrice adds
// each line's discount back onto its extended price instead of summing
// quantity*unitPrice directly; the two agree whenever ExtPrice was computed
// consistently, but per-line rounding can in principle drift by cents on very
// long bills. The formula is kept for compatibility with persisted totals.
func (d *Draft) Totals() domain.Totals {
	total := decimal.Zero
	discount := decimal.Zero
	for _, line := range d.lines {
		total = total.Add(line.ExtPrice).Add(line.Discount)
		discount = discount.Add(line.Discount)
	}
	return domain.Totals{
		TotalPrice:     total,
		DiscountAmount: discount,
		NetPrice:       total.Sub(discount),
	}
}

type submitCheck struct {
	CustomerName  string `validate:"required"`
	PaymentMethod string `validate:"oneof=cash credit"`
	LineCount     int    `validate:"gt=0"`
}

// Validate applies the submit-time rules: at least one line, a non-empty
// customer name and a known payment method. The draft itself is not modified.
func (d *Draft) Validate() error {
	check := submitCheck{
		CustomerName:  d.customer.Name,
		PaymentMethod: string(d.payment),
		LineCount:     len(d.lines),
	}
	err := validate.Struct(check)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return invalid("draft", err.Error())
	}
	switch fields[0].Field() {
	case "CustomerName":
		return invalid("customerName", "customer name is required")
	case "PaymentMethod":
		return invalid("paymentMethod", "payment method must be cash or credit")
	default:
		return invalid("items", "no items in bill")
	}
}

// Input assembles the persistence payload for this draft. BillNumber is left
// empty; the persistence layer fills it on create.
func (d *Draft) Input() domain.BillInput {
	return domain.BillInput{
		Customer:    d.customer,
		PaymentType: d.payment,
		Totals:      d.Totals(),
		Items:       d.Lines(),
	}
}
