// Package bills persists drafts to the backend and manages the lifecycle of
// saved bills: full-replacement edits, deletion and the one-way paid flag.
package bills

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/billing"
	"sanraw/console/internal/billnum"
	"sanraw/console/internal/domain"
)

// ErrSubmitInFlight is returned when a create or update is requested for a
// draft whose previous submission has not come back yet. Guarding here is
// what keeps a double-clicked save button from producing two bills.
var ErrSubmitInFlight = errors.New("a submission for this draft is already in flight")

type CreateResult struct {
	BillNumber  string
	PersistedID string
}

type Service struct {
	client backend.Client
	log    *logrus.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}

	newBillNumber func() string
}

func New(client backend.Client, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		client:        client,
		log:           log,
		inFlight:      make(map[string]struct{}),
		newBillNumber: billnum.New,
	}
}

// Create validates the draft, stamps a fresh bill number and submits header
// plus items as one request. The backend decrements stock per item; no stock
// check or reservation happens here, so two concurrent composers can both
// sell the last unit (accepted limitation). On any failure the draft is left
// untouched for a manual retry.
func (s *Service) Create(ctx context.Context, draft *billing.Draft) (CreateResult, error) {
	if err := draft.Validate(); err != nil {
		return CreateResult{}, err
	}
	if !s.begin(draft.ID()) {
		return CreateResult{}, ErrSubmitInFlight
	}
	defer s.end(draft.ID())

	input := draft.Input()
	input.BillNumber = s.newBillNumber()

	id, err := s.client.CreateBill(ctx, input)
	if err != nil {
		s.log.WithField("billNumber", input.BillNumber).Warnf("create failed: %v", err)
		return CreateResult{}, err
	}

	s.log.WithFields(logrus.Fields{"billNumber": input.BillNumber, "id": id}).Info("bill created")
	return CreateResult{BillNumber: input.BillNumber, PersistedID: id}, nil
}

// Update sends the draft as the full replacement item set for an existing
// bill. The backend deletes and reinserts the items, rolling stock back for
// the old set and decrementing for the new one; that reconciliation is its
// contract, not verified here.
func (s *Service) Update(ctx context.Context, billID string, draft *billing.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	if !s.begin(draft.ID()) {
		return ErrSubmitInFlight
	}
	defer s.end(draft.ID())

	if err := s.client.UpdateBill(ctx, billID, draft.Input()); err != nil {
		s.log.WithField("id", billID).Warnf("update failed: %v", err)
		return err
	}
	s.log.WithField("id", billID).Info("bill updated")
	return nil
}

func (s *Service) Remove(ctx context.Context, billID string) error {
	if err := s.client.DeleteBill(ctx, billID); err != nil {
		return err
	}
	s.log.WithField("id", billID).Info("bill deleted")
	return nil
}

// MarkPaid flips a bill to paid. The transition is one-way; calling it on an
// already-paid bill is a client-side no-op and sends nothing.
func (s *Service) MarkPaid(ctx context.Context, bill *domain.PersistedBill) error {
	if bill.IsPaid {
		return nil
	}
	if err := s.client.SetPaymentStatus(ctx, bill.ID, true); err != nil {
		return err
	}
	bill.IsPaid = true
	s.log.WithField("id", bill.ID).Info("bill marked paid")
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.PersistedBill, error) {
	return s.client.ListBills(ctx)
}

func (s *Service) ListByPayment(ctx context.Context, method domain.PaymentMethod) ([]domain.PersistedBill, error) {
	return s.client.ListBillsByPayment(ctx, method)
}

func (s *Service) Get(ctx context.Context, billID string) (*domain.PersistedBill, error) {
	return s.client.GetBill(ctx, billID)
}

func (s *Service) begin(draftID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[draftID]; busy {
		return false
	}
	s.inFlight[draftID] = struct{}{}
	return true
}

func (s *Service) end(draftID string) {
	s.mu.Lock()
	delete(s.inFlight, draftID)
	s.mu.Unlock()
}
