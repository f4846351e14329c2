package backend

import (
	"context"
	"errors"
	"fmt"

	"sanraw/console/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authenticated")
)

// FetchError reports a failed read from the backend: a network error or a
// non-2xx response. The operation is treated as not-happened; callers surface
// it and may retry manually.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError reports a failed write to the backend. The draft or bill the
// caller was working on is left untouched so the operation can be retried.
type SubmitError struct {
	Op     string
	Status int
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Client is the REST backend boundary. Create and update are atomic from the
// client's perspective: either the whole bill (header plus items) lands or the
// call fails. Stock reconciliation for creates, updates and deletes is the
// backend's contract; no implementation here checks or reserves stock.
type Client interface {
	ListCatalog(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error)
	ListBills(ctx context.Context) ([]domain.PersistedBill, error)
	ListBillsByPayment(ctx context.Context, method domain.PaymentMethod) ([]domain.PersistedBill, error)
	GetBill(ctx context.Context, id string) (*domain.PersistedBill, error)
	CreateBill(ctx context.Context, input domain.BillInput) (string, error)
	UpdateBill(ctx context.Context, id string, input domain.BillInput) error
	DeleteBill(ctx context.Context, id string) error
	SetPaymentStatus(ctx context.Context, id string, isPaid bool) error
}
