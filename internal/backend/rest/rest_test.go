package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/domain"
	"sanraw/console/internal/session"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL, session.New("tok-123"), srv.Client(), nil)
	return c, srv
}

func TestListCatalogMapsPerCategoryNameKeys(t *testing.T) {
	var gotPath, gotAuth string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		// Numeric id and stock, as older backends serialize them.
		w.Write([]byte(`[{"id": 3, "paddy_name": "Sona Masoori", "price": "42.50", "stock": 1200}]`))
	}))
	defer srv.Close()

	items, err := c.ListCatalog(context.Background(), domain.CategoryPaddy)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if gotPath != "/paddy" {
		t.Fatalf("expected /paddy, got %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	item := items[0]
	if item.ID != "3" || item.DisplayName != "Sona Masoori" || item.Category != domain.CategoryPaddy {
		t.Fatalf("bad mapping: %+v", item)
	}
	if item.UnitPrice.StringFixed(2) != "42.50" {
		t.Fatalf("bad price: %s", item.UnitPrice)
	}
}

func TestChemicalCatalogUsesPluralPathAndPlainName(t *testing.T) {
	var gotPath string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"id": "c1", "name": "Urea 45kg", "price": "310.00", "stock": "160"}]`))
	}))
	defer srv.Close()

	items, err := c.ListCatalog(context.Background(), domain.CategoryChemical)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if gotPath != "/chemicals" {
		t.Fatalf("expected /chemicals, got %s", gotPath)
	}
	if items[0].DisplayName != "Urea 45kg" {
		t.Fatalf("bad name: %q", items[0].DisplayName)
	}
}

func sampleInput() domain.BillInput {
	return domain.BillInput{
		BillNumber:  "BILL-42",
		Customer:    domain.Customer{Name: "Ravi Traders", Address: "Mill Road", Phone: "9000000001"},
		PaymentType: domain.PaymentCredit,
		Totals: domain.Totals{
			TotalPrice:     decimal.RequireFromString("212.50"),
			DiscountAmount: decimal.RequireFromString("10"),
			NetPrice:       decimal.RequireFromString("202.50"),
		},
		Items: []domain.LineItem{{
			LineID:      "l1",
			ItemID:      "p1",
			Category:    domain.CategoryPaddy,
			ProductName: "Sona Masoori",
			Quantity:    decimal.NewFromInt(5),
			UnitPrice:   decimal.RequireFromString("42.50"),
			Discount:    decimal.NewFromInt(10),
			ExtPrice:    decimal.RequireFromString("202.50"),
		}},
	}
}

func TestCreateBillPayloadShape(t *testing.T) {
	var payload map[string]json.RawMessage
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bills" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"id": 9}`))
	}))
	defer srv.Close()

	id, err := c.CreateBill(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "9" {
		t.Fatalf("expected id 9, got %q", id)
	}

	var billData map[string]string
	if err := json.Unmarshal(payload["billData"], &billData); err != nil {
		t.Fatalf("billData: %v", err)
	}
	if billData["bill_number"] != "BILL-42" || billData["payment_type"] != "credit" {
		t.Fatalf("bad billData: %v", billData)
	}
	if billData["total_price"] != "212.50" || billData["net_price"] != "202.50" {
		t.Fatalf("totals must be fixed-2 strings: %v", billData)
	}

	var items []map[string]string
	if err := json.Unmarshal(payload["items"], &items); err != nil {
		t.Fatalf("items: %v", err)
	}
	item := items[0]
	// The item row mixes snake_case and camelCase keys.
	for _, key := range []string{"item_id", "category", "productName", "quantity", "discount", "unitPrice", "extPrice"} {
		if _, ok := item[key]; !ok {
			t.Fatalf("item payload missing %q: %v", key, item)
		}
	}
	if item["extPrice"] != "202.50" || item["quantity"] != "5" {
		t.Fatalf("bad item values: %v", item)
	}
}

func TestUpdateBillOmitsImmutableFields(t *testing.T) {
	var payload map[string]json.RawMessage
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/bills/9" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer srv.Close()

	if err := c.UpdateBill(context.Background(), "9", sampleInput()); err != nil {
		t.Fatalf("update: %v", err)
	}

	var billData map[string]string
	if err := json.Unmarshal(payload["billData"], &billData); err != nil {
		t.Fatalf("billData: %v", err)
	}
	if _, ok := billData["bill_number"]; ok {
		t.Fatalf("update must not resend bill_number: %v", billData)
	}
	if _, ok := billData["payment_type"]; ok {
		t.Fatalf("update must not resend payment_type: %v", billData)
	}
}

func TestSetPaymentStatusPatch(t *testing.T) {
	var gotMethod, gotPath string
	var body map[string]bool
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	if err := c.SetPaymentStatus(context.Background(), "7", true); err != nil {
		t.Fatalf("set payment status: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/bills/7/payment-status" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if !body["is_paid"] {
		t.Fatalf("expected is_paid true, got %v", body)
	}
}

func TestStatusCodesMapToSentinels(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bills/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	_, err := c.GetBill(context.Background(), "missing")
	if !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var fe *backend.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("expected FetchError with 404, got %v", err)
	}

	_, err = c.ListBills(context.Background())
	if !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGetBillTolerantDecoding(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 9,
			"bill_number": "BILL-42",
			"customer_name": "Ravi Traders",
			"payment_type": "credit",
			"total_price": "212.50",
			"discount_amount": 10,
			"net_price": "202.50",
			"is_paid": 1,
			"created_at": "2025-03-14 10:30:00",
			"items": [{"id": 91, "item_id": 3, "category": "paddy", "product_name": "Sona Masoori",
				"quantity": "5", "unit_price": 42.5, "discount": "10", "ext_price": "202.50"}]
		}`))
	}))
	defer srv.Close()

	bill, err := c.GetBill(context.Background(), "9")
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if bill.ID != "9" || !bill.IsPaid {
		t.Fatalf("bad header decode: %+v", bill)
	}
	if bill.CreatedAt.IsZero() {
		t.Fatalf("bare SQL datetime must parse")
	}
	if len(bill.Items) != 1 || bill.Items[0].ItemID != "3" {
		t.Fatalf("bad item decode: %+v", bill.Items)
	}
	if bill.Items[0].UnitPrice.StringFixed(2) != "42.50" {
		t.Fatalf("bad unit price: %s", bill.Items[0].UnitPrice)
	}
}
