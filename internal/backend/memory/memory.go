// Package memory is an in-memory stand-in for the bills backend. It applies
// the reconciliation rules the real backend documents: stock is decremented
// per item on create, restored-and-redecremented on update (the item set is
// deleted and reinserted), and restored on delete. Tests run against it, and
// the console uses it as demo mode when no backend URL is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	catalog   map[domain.Category][]domain.CatalogItem
	billsByID map[string]*domain.PersistedBill
	nextID    int
	nowFn     func() time.Time
}

func New() *Store {
	return &Store{
		catalog:   make(map[domain.Category][]domain.CatalogItem),
		billsByID: make(map[string]*domain.PersistedBill),
		nextID:    1,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

func NewSeeded() *Store {
	s := New()
	s.catalog[domain.CategoryPaddy] = []domain.CatalogItem{
		seedItem("p1", "Sona Masoori", "42.50", 1200, domain.CategoryPaddy),
		seedItem("p2", "IR64", "36.00", 2400, domain.CategoryPaddy),
		seedItem("p3", "Swarna", "39.75", 1800, domain.CategoryPaddy),
		seedItem("p4", "Basmati 1121", "88.00", 350, domain.CategoryPaddy),
	}
	s.catalog[domain.CategoryEquipment] = []domain.CatalogItem{
		seedItem("e1", "Knapsack Sprayer 16L", "1450.00", 25, domain.CategoryEquipment),
		seedItem("e2", "Tarpaulin Sheet 24x30", "2100.00", 40, domain.CategoryEquipment),
		seedItem("e3", "Grain Moisture Meter", "5600.00", 8, domain.CategoryEquipment),
		seedItem("e4", "Jute Gunny Bag", "38.00", 900, domain.CategoryEquipment),
	}
	s.catalog[domain.CategoryChemical] = []domain.CatalogItem{
		seedItem("c1", "Urea 45kg", "310.00", 160, domain.CategoryChemical),
		seedItem("c2", "DAP 50kg", "1350.00", 90, domain.CategoryChemical),
		seedItem("c3", "Chlorpyrifos 1L", "420.00", 75, domain.CategoryChemical),
		seedItem("c4", "Glyphosate 1L", "510.00", 60, domain.CategoryChemical),
	}
	return s
}

func seedItem(id, name, price string, stock int64, category domain.Category) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		DisplayName:   name,
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: decimal.NewFromInt(stock),
		Category:      category,
	}
}

// SetNow overrides the clock used for bill creation timestamps. Test hook.
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

func (s *Store) ListCatalog(_ context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	if !category.Valid() {
		return nil, backend.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.CatalogItem, len(s.catalog[category]))
	copy(items, s.catalog[category])
	return items, nil
}

func (s *Store) ListBills(_ context.Context) ([]domain.PersistedBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(domain.PersistedBill) bool { return true }), nil
}

func (s *Store) ListBillsByPayment(_ context.Context, method domain.PaymentMethod) ([]domain.PersistedBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b domain.PersistedBill) bool { return b.PaymentType == method }), nil
}

// collect returns header-only copies, newest first. Callers hold s.mu.
func (s *Store) collect(keep func(domain.PersistedBill) bool) []domain.PersistedBill {
	out := make([]domain.PersistedBill, 0, len(s.billsByID))
	for _, bill := range s.billsByID {
		if !keep(*bill) {
			continue
		}
		header := *bill
		header.Items = nil
		out = append(out, header)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) GetBill(_ context.Context, id string) (*domain.PersistedBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bill, ok := s.billsByID[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	copied := *bill
	copied.Items = make([]domain.PersistedItem, len(bill.Items))
	copy(copied.Items, bill.Items)
	return &copied, nil
}

func (s *Store) CreateBill(_ context.Context, input domain.BillInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.BillNumber == "" || len(input.Items) == 0 {
		return "", fmt.Errorf("bill number and items are required")
	}

	id := strconv.Itoa(s.nextID)
	s.nextID++

	bill := &domain.PersistedBill{
		ID:             id,
		BillNumber:     input.BillNumber,
		Customer:       input.Customer,
		PaymentType:    input.PaymentType,
		TotalPrice:     input.Totals.TotalPrice,
		DiscountAmount: input.Totals.DiscountAmount,
		NetPrice:       input.Totals.NetPrice,
		CreatedAt:      s.nowFn(),
	}
	for i, line := range input.Items {
		bill.Items = append(bill.Items, domain.PersistedItem{
			ID:          fmt.Sprintf("%s-%d", id, i+1),
			ItemID:      line.ItemID,
			Category:    line.Category,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			ExtPrice:    line.ExtPrice,
		})
		s.adjustStock(line.Category, line.ItemID, line.Quantity.Neg())
	}
	s.billsByID[id] = bill
	return id, nil
}

func (s *Store) UpdateBill(_ context.Context, id string, input domain.BillInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, ok := s.billsByID[id]
	if !ok {
		return backend.ErrNotFound
	}

	// Delete-and-reinsert, as the real backend does: roll stock back for the
	// old item set, then decrement for the replacement set.
	for _, item := range bill.Items {
		s.adjustStock(item.Category, item.ItemID, item.Quantity)
	}
	bill.Items = nil
	for i, line := range input.Items {
		bill.Items = append(bill.Items, domain.PersistedItem{
			ID:          fmt.Sprintf("%s-%d", id, i+1),
			ItemID:      line.ItemID,
			Category:    line.Category,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			ExtPrice:    line.ExtPrice,
		})
		s.adjustStock(line.Category, line.ItemID, line.Quantity.Neg())
	}

	bill.Customer = input.Customer
	bill.TotalPrice = input.Totals.TotalPrice
	bill.DiscountAmount = input.Totals.DiscountAmount
	bill.NetPrice = input.Totals.NetPrice
	return nil
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, ok := s.billsByID[id]
	if !ok {
		return backend.ErrNotFound
	}
	for _, item := range bill.Items {
		s.adjustStock(item.Category, item.ItemID, item.Quantity)
	}
	delete(s.billsByID, id)
	return nil
}

func (s *Store) SetPaymentStatus(_ context.Context, id string, isPaid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, ok := s.billsByID[id]
	if !ok {
		return backend.ErrNotFound
	}
	bill.IsPaid = isPaid
	return nil
}

// adjustStock shifts one catalog row's stock by delta. Stock may go negative:
// the backend performs no reservation, and overselling under concurrent
// composers is a documented limitation this fake reproduces rather than fixes.
// Callers hold s.mu.
func (s *Store) adjustStock(category domain.Category, itemID string, delta decimal.Decimal) {
	items := s.catalog[category]
	for i := range items {
		if items[i].ID == itemID {
			items[i].StockQuantity = items[i].StockQuantity.Add(delta)
			return
		}
	}
}
