package rest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sanraw/console/internal/domain"
)

// wireID tolerates backends that serialize row ids as numbers.
type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*w = wireID(n.String())
	return nil
}

// wireBool tolerates 0/1 booleans from tinyint columns.
type wireBool bool

func (w *wireBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*w = wireBool(b)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("boolean must be a bool or number: %s", data)
	}
	*w = n.String() != "0"
	return nil
}

// wireTime accepts RFC3339 (with or without sub-seconds) and the bare
// datetime format some SQL drivers emit.
type wireTime struct {
	time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		w.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			w.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

// catalogRow covers all three category endpoints; the display-name key
// differs per category (paddy_name, equipment_name, name).
type catalogRow struct {
	ID            wireID          `json:"id"`
	PaddyName     string          `json:"paddy_name"`
	EquipmentName string          `json:"equipment_name"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         decimal.Decimal `json:"stock"`
}

func (r catalogRow) toItem(category domain.Category) domain.CatalogItem {
	name := r.Name
	switch category {
	case domain.CategoryPaddy:
		if r.PaddyName != "" {
			name = r.PaddyName
		}
	case domain.CategoryEquipment:
		if r.EquipmentName != "" {
			name = r.EquipmentName
		}
	}
	return domain.CatalogItem{
		ID:            string(r.ID),
		DisplayName:   name,
		UnitPrice:     r.Price,
		StockQuantity: r.Stock,
		Category:      category,
	}
}

type billItemRecord struct {
	ID          wireID          `json:"id"`
	ItemID      wireID          `json:"item_id"`
	Category    string          `json:"category"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	ExtPrice    decimal.Decimal `json:"ext_price"`
}

type billRecord struct {
	ID              wireID           `json:"id"`
	BillNumber      string           `json:"bill_number"`
	CustomerName    string           `json:"customer_name"`
	CustomerAddress string           `json:"customer_address"`
	CustomerPhone   string           `json:"customer_phone"`
	PaymentType     string           `json:"payment_type"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	NetPrice        decimal.Decimal  `json:"net_price"`
	IsPaid          wireBool         `json:"is_paid"`
	CreatedAt       wireTime         `json:"created_at"`
	Items           []billItemRecord `json:"items"`
}

func (r billRecord) toBill() domain.PersistedBill {
	bill := domain.PersistedBill{
		ID:         string(r.ID),
		BillNumber: r.BillNumber,
		Customer: domain.Customer{
			Name:    r.CustomerName,
			Address: r.CustomerAddress,
			Phone:   r.CustomerPhone,
		},
		PaymentType:    domain.PaymentMethod(r.PaymentType),
		TotalPrice:     r.TotalPrice,
		DiscountAmount: r.DiscountAmount,
		NetPrice:       r.NetPrice,
		IsPaid:         bool(r.IsPaid),
		CreatedAt:      r.CreatedAt.Time,
	}
	for _, item := range r.Items {
		bill.Items = append(bill.Items, domain.PersistedItem{
			ID:          string(item.ID),
			ItemID:      string(item.ItemID),
			Category:    domain.Category(item.Category),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			ExtPrice:    item.ExtPrice,
		})
	}
	return bill
}

type createBillData struct {
	BillNumber      string `json:"bill_number"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
	PaymentType     string `json:"payment_type"`
	TotalPrice      string `json:"total_price"`
	DiscountAmount  string `json:"discount_amount"`
	NetPrice        string `json:"net_price"`
}

type updateBillData struct {
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
	TotalPrice      string `json:"total_price"`
	DiscountAmount  string `json:"discount_amount"`
	NetPrice        string `json:"net_price"`
}

// billItemPayload keeps the console's historical mix of snake_case and
// camelCase item keys; the backend expects exactly these.
type billItemPayload struct {
	ItemID      string `json:"item_id"`
	Category    string `json:"category"`
	ProductName string `json:"productName"`
	Quantity    string `json:"quantity"`
	Discount    string `json:"discount"`
	UnitPrice   string `json:"unitPrice"`
	ExtPrice    string `json:"extPrice"`
}

func itemPayloads(items []domain.LineItem) []billItemPayload {
	out := make([]billItemPayload, 0, len(items))
	for _, line := range items {
		out = append(out, billItemPayload{
			ItemID:      line.ItemID,
			Category:    string(line.Category),
			ProductName: line.ProductName,
			Quantity:    line.Quantity.String(),
			Discount:    line.Discount.StringFixed(2),
			UnitPrice:   line.UnitPrice.String(),
			ExtPrice:    line.ExtPrice.StringFixed(2),
		})
	}
	return out
}
