package wave

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/wave-go/internal/transport"
)

const (
	pathPayout       = "/v1/payout"
	pathPayoutBatch  = "/v1/payout-batch"
	pathPayoutSearch = "/v1/payouts/search"
)

// PayoutService covers the Payout API.
type PayoutService struct {
	p *transport.Pipeline
}

// NewIdempotencyKey returns a random key suitable for Idempotency-Key.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// Create sends a single payout. The API requires an Idempotency-Key; a random
// one is generated when idempotencyKey is empty, which means a retried call
// with an empty key can pay twice. Reuse the key to retry safely.
func (s *PayoutService) Create(ctx context.Context, req PayoutRequest, idempotencyKey string) (*Payout, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	amount, err := FormatAmount(req.ReceiveAmount, req.Currency)
	if err != nil {
		return nil, err
	}
	req.ReceiveAmount = amount
	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = NewIdempotencyKey()
	}
	var out Payout
	err = s.p.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    pathPayout,
		Payload: req,
		Header:  http.Header{transport.HeaderIdempotencyKey: {idempotencyKey}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBatch submits payouts for asynchronous processing and returns the
// batch id. Poll GetBatch for results.
func (s *PayoutService) CreateBatch(ctx context.Context, req PayoutBatchRequest) (*PayoutBatch, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	payouts := make([]PayoutRequest, len(req.Payouts))
	for i, p := range req.Payouts {
		amount, err := FormatAmount(p.ReceiveAmount, p.Currency)
		if err != nil {
			return nil, err
		}
		p.ReceiveAmount = amount
		payouts[i] = p
	}
	var out PayoutBatch
	if err := s.p.Post(ctx, pathPayoutBatch, pathPayoutBatch, PayoutBatchRequest{Payouts: payouts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a payout by id.
func (s *PayoutService) Get(ctx context.Context, payoutID string) (*Payout, error) {
	if err := requireID("payout_id", payoutID); err != nil {
		return nil, err
	}
	var out Payout
	if err := s.p.Get(ctx, pathPayout+"/"+url.PathEscape(payoutID), pathPayout+"/{id}", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBatch fetches a payout batch and the payouts it produced so far.
func (s *PayoutService) GetBatch(ctx context.Context, batchID string) (*PayoutBatch, error) {
	if err := requireID("batch_id", batchID); err != nil {
		return nil, err
	}
	var out PayoutBatch
	if err := s.p.Get(ctx, pathPayoutBatch+"/"+url.PathEscape(batchID), pathPayoutBatch+"/{id}", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search lists payouts created with clientReference.
func (s *PayoutService) Search(ctx context.Context, clientReference string) ([]Payout, error) {
	if err := requireID("client_reference", clientReference); err != nil {
		return nil, err
	}
	var out PayoutList
	q := url.Values{"client_reference": {clientReference}}
	if err := s.p.Get(ctx, pathPayoutSearch, pathPayoutSearch, q, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Reverse reverses a succeeded payout. Wave only allows this within a
// limited window after the payout.
func (s *PayoutService) Reverse(ctx context.Context, payoutID string) error {
	if err := requireID("payout_id", payoutID); err != nil {
		return err
	}
	return s.p.Post(ctx, pathPayout+"/"+url.PathEscape(payoutID)+"/reverse", pathPayout+"/{id}/reverse", nil, nil)
}
