package wave

import (
	"context"
	"net/url"

	"github.com/noah-isme/wave-go/internal/transport"
)

const (
	pathBalance      = "/v1/balance"
	pathTransactions = "/v1/transactions"
)

// BalanceService covers the Balance & Reconciliation API.
type BalanceService struct {
	p *transport.Pipeline
}

// Get returns the wallet balance. params may be nil.
func (s *BalanceService) Get(ctx context.Context, params *BalanceParams) (*Balance, error) {
	var query any
	if params != nil {
		query = params
	}
	var out Balance
	if err := s.p.Get(ctx, pathBalance, pathBalance, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns one page of transactions for a day. params may be
// nil.
func (s *BalanceService) ListTransactions(ctx context.Context, params *TransactionListParams) (*TransactionList, error) {
	var query any
	if params != nil {
		if err := check(params); err != nil {
			return nil, err
		}
		query = params
	}
	var out TransactionList
	if err := s.p.Get(ctx, pathTransactions, pathTransactions, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundTransaction refunds a merchant payment by transaction id.
func (s *BalanceService) RefundTransaction(ctx context.Context, transactionID string) error {
	if err := requireID("transaction_id", transactionID); err != nil {
		return err
	}
	path := pathTransactions + "/" + url.PathEscape(transactionID) + "/refund"
	return s.p.Post(ctx, path, pathTransactions+"/{id}/refund", nil, nil)
}
