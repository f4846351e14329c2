// Package rest is the HTTP implementation of backend.Client. It speaks the
// bills backend's JSON dialect: catalog rows keyed per category, bill headers
// in snake_case, and bill items written with the console's historical mix of
// snake_case and camelCase keys.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sanraw/console/internal/backend"
	"sanraw/console/internal/domain"
	"sanraw/console/internal/session"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	log     *logrus.Logger
}

func New(baseURL string, sess *session.Session, httpClient *http.Client, log *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: sess,
		log:     log,
	}
}

func (c *Client) ListCatalog(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	path, err := catalogPath(category)
	if err != nil {
		return nil, err
	}
	var rows []catalogRow
	if err := c.roundTrip(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fetchErr(path, err)
	}
	items := make([]domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem(category))
	}
	return items, nil
}

func (c *Client) ListBills(ctx context.Context) ([]domain.PersistedBill, error) {
	return c.listBills(ctx, "/bills")
}

func (c *Client) ListBillsByPayment(ctx context.Context, method domain.PaymentMethod) ([]domain.PersistedBill, error) {
	return c.listBills(ctx, "/bills/payment/"+string(method))
}

func (c *Client) listBills(ctx context.Context, path string) ([]domain.PersistedBill, error) {
	var rows []billRecord
	if err := c.roundTrip(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, fetchErr(path, err)
	}
	bills := make([]domain.PersistedBill, 0, len(rows))
	for _, row := range rows {
		bills = append(bills, row.toBill())
	}
	return bills, nil
}

func (c *Client) GetBill(ctx context.Context, id string) (*domain.PersistedBill, error) {
	path := "/bills/" + id
	var row billRecord
	if err := c.roundTrip(ctx, http.MethodGet, path, nil, &row); err != nil {
		return nil, fetchErr(path, err)
	}
	bill := row.toBill()
	return &bill, nil
}

func (c *Client) CreateBill(ctx context.Context, input domain.BillInput) (string, error) {
	body := map[string]any{
		"billData": createBillData{
			BillNumber:      input.BillNumber,
			CustomerName:    input.Customer.Name,
			CustomerAddress: input.Customer.Address,
			CustomerPhone:   input.Customer.Phone,
			PaymentType:     string(input.PaymentType),
			TotalPrice:      input.Totals.TotalPrice.StringFixed(2),
			DiscountAmount:  input.Totals.DiscountAmount.StringFixed(2),
			NetPrice:        input.Totals.NetPrice.StringFixed(2),
		},
		"items": itemPayloads(input.Items),
	}
	var resp struct {
		ID wireID `json:"id"`
	}
	if err := c.roundTrip(ctx, http.MethodPost, "/bills", body, &resp); err != nil {
		return "", submitErr("create bill", err)
	}
	return string(resp.ID), nil
}

func (c *Client) UpdateBill(ctx context.Context, id string, input domain.BillInput) error {
	// The update payload deliberately omits bill_number and payment_type;
	// the backend treats both as immutable on edit.
	body := map[string]any{
		"billData": updateBillData{
			CustomerName:    input.Customer.Name,
			CustomerAddress: input.Customer.Address,
			CustomerPhone:   input.Customer.Phone,
			TotalPrice:      input.Totals.TotalPrice.StringFixed(2),
			DiscountAmount:  input.Totals.DiscountAmount.StringFixed(2),
			NetPrice:        input.Totals.NetPrice.StringFixed(2),
		},
		"items": itemPayloads(input.Items),
	}
	if err := c.roundTrip(ctx, http.MethodPut, "/bills/"+id, body, nil); err != nil {
		return submitErr("update bill", err)
	}
	return nil
}

func (c *Client) DeleteBill(ctx context.Context, id string) error {
	if err := c.roundTrip(ctx, http.MethodDelete, "/bills/"+id, nil, nil); err != nil {
		return submitErr("delete bill", err)
	}
	return nil
}

func (c *Client) SetPaymentStatus(ctx context.Context, id string, isPaid bool) error {
	body := map[string]any{"is_paid": isPaid}
	if err := c.roundTrip(ctx, http.MethodPatch, "/bills/"+id+"/payment-status", body, nil); err != nil {
		return submitErr("update payment status", err)
	}
	return nil
}

func catalogPath(category domain.Category) (string, error) {
	switch category {
	case domain.CategoryPaddy:
		return "/paddy", nil
	case domain.CategoryEquipment:
		return "/equipment", nil
	case domain.CategoryChemical:
		return "/chemicals", nil
	}
	return "", fmt.Errorf("unknown category %q", category)
}

// roundTrip performs one request. Non-2xx responses come back as a
// *statusError so the operation wrappers can attach the status code.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).Warnf("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).Warn("backend rejected request")
		return newStatusError(resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	// Some write endpoints answer with an empty body; treat that as fine.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type statusError struct {
	code int
	err  error
}

func newStatusError(code int) *statusError {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &statusError{code: code, err: backend.ErrUnauthorized}
	case http.StatusNotFound:
		return &statusError{code: code, err: backend.ErrNotFound}
	}
	return &statusError{code: code, err: errors.New(strings.ToLower(http.StatusText(code)))}
}

func (e *statusError) Error() string { return fmt.Sprintf("status %d: %v", e.code, e.err) }
func (e *statusError) Unwrap() error { return e.err }

func fetchErr(endpoint string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return &backend.FetchError{Endpoint: endpoint, Status: se.code, Err: se.err}
	}
	return &backend.FetchError{Endpoint: endpoint, Err: err}
}

func submitErr(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return &backend.SubmitError{Op: op, Status: se.code, Err: se.err}
	}
	return &backend.SubmitError{Op: op, Err: err}
}
