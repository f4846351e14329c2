package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sanraw/console/internal/domain"
)

// BuildLine turns a selected catalog item plus the raw quantity and discount
// form inputs into a line item. The unit price is taken verbatim from the
// catalog snapshot and never recomputed. The extended price is
// round2(quantity*unitPrice - discount).
//
// A discount larger than the gross line value is not rejected and produces a
// negative extended price. That matches the console's historical behaviour and
// is an accepted gap, not a guarantee.
func BuildLine(item domain.CatalogItem, quantity string, discount string) (domain.LineItem, error) {
	qty, err := parsePositive(quantity)
	if err != nil {
		return domain.LineItem{}, err
	}
	disc, err := parseDiscount(discount)
	if err != nil {
		return domain.LineItem{}, err
	}

	return domain.LineItem{
		LineID:      uuid.NewString(),
		ItemID:      item.ID,
		Category:    item.Category,
		ProductName: item.DisplayName,
		Quantity:    qty,
		UnitPrice:   item.UnitPrice,
		Discount:    disc,
		ExtPrice:    extPrice(qty, item.UnitPrice, disc),
	}, nil
}

func extPrice(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Sub(discount).Round(2)
}

func parsePositive(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, invalid("quantity", "quantity is required")
	}
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid("quantity", "quantity must be a number")
	}
	if qty.Sign() <= 0 {
		return decimal.Zero, invalid("quantity", "quantity must be greater than zero")
	}
	return qty, nil
}

func parseDiscount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	disc, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid("discount", "discount must be a number")
	}
	if disc.Sign() < 0 {
		return decimal.Zero, invalid("discount", "discount must not be negative")
	}
	return disc, nil
}
