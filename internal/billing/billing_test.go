package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sanraw/console/internal/domain"
)

func paddyItem(id, name string, price int64, stock int64) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		DisplayName:   name,
		UnitPrice:     decimal.NewFromInt(price),
		StockQuantity: decimal.NewFromInt(stock),
		Category:      domain.CategoryPaddy,
	}
}

func mustBuild(t *testing.T, item domain.CatalogItem, qty, disc string) domain.LineItem {
	t.Helper()
	line, err := BuildLine(item, qty, disc)
	if err != nil {
		t.Fatalf("build line: %v", err)
	}
	return line
}

func TestBuildLineExtendedPrice(t *testing.T) {
	item := paddyItem("p7", "Basmati", 50, 100)

	line := mustBuild(t, item, "10", "20")

	if got := line.ExtPrice.StringFixed(2); got != "480.00" {
		t.Fatalf("expected ext price 480.00, got %s", got)
	}
	if !line.UnitPrice.Equal(item.UnitPrice) {
		t.Fatalf("unit price must be snapshotted verbatim, got %s", line.UnitPrice)
	}
	if line.LineID == "" {
		t.Fatalf("expected a client line id")
	}
	if line.LineID == line.ItemID {
		t.Fatalf("line id must not be the item id")
	}
}

func TestBuildLineFractionalQuantityRoundsToTwoDecimals(t *testing.T) {
	item := paddyItem("p1", "Sona Masoori", 33, 100)

	line := mustBuild(t, item, "2.555", "")

	// 2.555 * 33 = 84.315, rounded half-up to 84.32.
	if got := line.ExtPrice.StringFixed(2); got != "84.32" {
		t.Fatalf("expected 84.32, got %s", got)
	}
}

func TestBuildLineOversizedDiscountGoesNegative(t *testing.T) {
	item := paddyItem("p2", "IR64", 10, 100)

	line := mustBuild(t, item, "1", "25")

	if got := line.ExtPrice.StringFixed(2); got != "-15.00" {
		t.Fatalf("expected negative ext price -15.00, got %s", got)
	}
}

func TestBuildLineValidation(t *testing.T) {
	item := paddyItem("p3", "Swarna", 40, 100)

	cases := []struct {
		name     string
		quantity string
		discount string
		field    string
	}{
		{"empty quantity", "", "", "quantity"},
		{"non numeric quantity", "ten", "", "quantity"},
		{"zero quantity", "0", "", "quantity"},
		{"negative quantity", "-3", "", "quantity"},
		{"non numeric discount", "5", "lots", "discount"},
		{"negative discount", "5", "-1", "discount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildLine(item, tc.quantity, tc.discount)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestDraftTotalsScenario(t *testing.T) {
	item := paddyItem("p1", "Sona Masoori", 100, 50)
	draft := NewDraft()

	line := mustBuild(t, item, "5", "")
	if got := line.ExtPrice.StringFixed(2); got != "500.00" {
		t.Fatalf("expected ext price 500.00, got %s", got)
	}
	draft.AddLine(line)

	totals := draft.Totals()
	if got := totals.TotalPrice.StringFixed(2); got != "500.00" {
		t.Fatalf("expected total 500.00, got %s", got)
	}
	if got := totals.DiscountAmount.StringFixed(2); got != "0.00" {
		t.Fatalf("expected discount 0.00, got %s", got)
	}
	if got := totals.NetPrice.StringFixed(2); got != "500.00" {
		t.Fatalf("expected net 500.00, got %s", got)
	}
}

// checkTotalsInvariants verifies the two derivations the totals formula must
// keep in agreement: netPrice = totalPrice - discountAmount and
// totalPrice = sum(extPrice + discount).
func checkTotalsInvariants(t *testing.T, draft *Draft) {
	t.Helper()
	totals := draft.Totals()

	if !totals.NetPrice.Equal(totals.TotalPrice.Sub(totals.DiscountAmount)) {
		t.Fatalf("netPrice %s != totalPrice %s - discount %s",
			totals.NetPrice, totals.TotalPrice, totals.DiscountAmount)
	}

	sum := decimal.Zero
	gross := decimal.Zero
	for _, line := range draft.Lines() {
		sum = sum.Add(line.ExtPrice).Add(line.Discount)
		gross = gross.Add(line.Quantity.Mul(line.UnitPrice).Round(2))
	}
	if !totals.TotalPrice.Equal(sum) {
		t.Fatalf("totalPrice %s != sum(extPrice+discount) %s", totals.TotalPrice, sum)
	}
	if !totals.TotalPrice.Equal(gross) {
		t.Fatalf("totalPrice %s != sum(qty*unitPrice) %s", totals.TotalPrice, gross)
	}
}

func TestDraftTotalsHoldAfterEveryMutation(t *testing.T) {
	draft := NewDraft()
	a := mustBuild(t, paddyItem("p1", "Sona Masoori", 100, 50), "5", "10")
	b := mustBuild(t, paddyItem("p2", "IR64", 37, 50), "2.5", "")
	c := mustBuild(t, paddyItem("p3", "Swarna", 64, 50), "3", "12.50")

	draft.AddLine(a)
	checkTotalsInvariants(t, draft)
	draft.AddLine(b)
	checkTotalsInvariants(t, draft)
	draft.AddLine(c)
	checkTotalsInvariants(t, draft)

	draft.RemoveLine(b.LineID)
	checkTotalsInvariants(t, draft)

	if err := draft.UpdateQuantity(c.LineID, "7"); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	checkTotalsInvariants(t, draft)
}

func TestRemoveLineLeavesRestIntact(t *testing.T) {
	draft := NewDraft()
	draft.SetCustomer("Ravi Traders", "Mill Road", "9000000001")
	a := mustBuild(t, paddyItem("p1", "Sona Masoori", 100, 50), "5", "")
	b := mustBuild(t, paddyItem("p2", "IR64", 37, 50), "4", "8")
	draft.AddLine(a)
	draft.AddLine(b)

	draft.RemoveLine(a.LineID)

	lines := draft.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if !lines[0].ExtPrice.Equal(b.ExtPrice) {
		t.Fatalf("remaining line ext price changed: %s != %s", lines[0].ExtPrice, b.ExtPrice)
	}
	if draft.Customer().Name != "Ravi Traders" {
		t.Fatalf("customer fields must survive line removal")
	}

	// Unknown id is a no-op.
	draft.RemoveLine("no-such-line")
	if len(draft.Lines()) != 1 {
		t.Fatalf("removing an unknown line must not change the draft")
	}
}

func TestUpdateQuantityRejectsNonPositive(t *testing.T) {
	draft := NewDraft()
	line := mustBuild(t, paddyItem("p1", "Sona Masoori", 100, 50), "5", "10")
	draft.AddLine(line)

	for _, bad := range []string{"0", "-2", "abc", ""} {
		err := draft.UpdateQuantity(line.LineID, bad)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("quantity %q: expected ValidationError, got %v", bad, err)
		}
		got := draft.Lines()[0]
		if !got.Quantity.Equal(line.Quantity) || !got.ExtPrice.Equal(line.ExtPrice) {
			t.Fatalf("quantity %q: line must be unchanged after rejected update", bad)
		}
	}
}

func TestUpdateQuantityRecomputesWithStoredPriceAndDiscount(t *testing.T) {
	draft := NewDraft()
	line := mustBuild(t, paddyItem("p1", "Sona Masoori", 100, 50), "5", "10")
	draft.AddLine(line)

	if err := draft.UpdateQuantity(line.LineID, "8"); err != nil {
		t.Fatalf("update quantity: %v", err)
	}

	got := draft.Lines()[0]
	if got.ExtPrice.StringFixed(2) != "790.00" {
		t.Fatalf("expected 8*100-10 = 790.00, got %s", got.ExtPrice.StringFixed(2))
	}
	if !got.UnitPrice.Equal(line.UnitPrice) {
		t.Fatalf("unit price must stay snapshotted")
	}
	if !got.Discount.Equal(line.Discount) {
		t.Fatalf("discount must stay unchanged")
	}
}

func TestValidateSubmitRules(t *testing.T) {
	draft := NewDraft()

	err := draft.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "items" {
		t.Fatalf("empty draft: expected items validation error, got %v", err)
	}

	draft.AddLine(mustBuild(t, paddyItem("p1", "Sona Masoori", 100, 50), "1", ""))
	err = draft.Validate()
	if !errors.As(err, &verr) || verr.Field != "customerName" {
		t.Fatalf("missing customer: expected customerName error, got %v", err)
	}

	draft.SetCustomer("Ravi Traders", "", "")
	draft.SetPaymentMethod(domain.PaymentMethod("cheque"))
	err = draft.Validate()
	if !errors.As(err, &verr) || verr.Field != "paymentMethod" {
		t.Fatalf("bad payment method: expected paymentMethod error, got %v", err)
	}

	draft.SetPaymentMethod(domain.PaymentCredit)
	if err := draft.Validate(); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}
}

func TestFromPersistedKeepsTotalsIdentical(t *testing.T) {
	bill := &domain.PersistedBill{
		ID:          "41",
		BillNumber:  "BILL-1700000000000",
		Customer:    domain.Customer{Name: "Ravi Traders", Address: "Mill Road", Phone: "9000000001"},
		PaymentType: domain.PaymentCredit,
		CreatedAt:   time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC),
		Items: []domain.PersistedItem{
			{
				ID: "1", ItemID: "p1", Category: domain.CategoryPaddy, ProductName: "Sona Masoori",
				Quantity:  decimal.NewFromInt(5),
				UnitPrice: decimal.NewFromInt(100),
				Discount:  decimal.NewFromInt(10),
				ExtPrice:  decimal.RequireFromString("490.00"),
			},
			{
				ID: "2", ItemID: "e3", Category: domain.CategoryEquipment, ProductName: "Sprayer",
				Quantity:  decimal.NewFromInt(2),
				UnitPrice: decimal.RequireFromString("349.50"),
				Discount:  decimal.Zero,
				ExtPrice:  decimal.RequireFromString("699.00"),
			},
		},
	}

	draft := FromPersisted(bill)

	totals := draft.Totals()
	if got := totals.TotalPrice.StringFixed(2); got != "1199.00" {
		t.Fatalf("expected total 1199.00, got %s", got)
	}
	if got := totals.DiscountAmount.StringFixed(2); got != "10.00" {
		t.Fatalf("expected discount 10.00, got %s", got)
	}
	if got := totals.NetPrice.StringFixed(2); got != "1189.00" {
		t.Fatalf("expected net 1189.00, got %s", got)
	}

	lines := draft.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line.LineID == "" || line.LineID == bill.Items[i].ID {
			t.Fatalf("mapped lines must get fresh client line ids")
		}
	}
	if draft.PaymentMethod() != domain.PaymentCredit {
		t.Fatalf("payment method must carry over")
	}
}
