package wave

import (
	"context"
	"net/url"

	"github.com/noah-isme/wave-go/internal/transport"
)

const pathCheckoutSessions = "/v1/checkout/sessions"

// CheckoutService covers the Checkout API.
type CheckoutService struct {
	p *transport.Pipeline
}

// CreateSession opens a checkout session. Amount is formatted for Currency
// before sending.
func (s *CheckoutService) CreateSession(ctx context.Context, req CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	amount, err := FormatAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	req.Amount = amount
	var out CheckoutSession
	if err := s.p.Post(ctx, pathCheckoutSessions, pathCheckoutSessions, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches a session by id.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if err := requireID("session_id", sessionID); err != nil {
		return nil, err
	}
	var out CheckoutSession
	if err := s.p.Get(ctx, sessionPath(sessionID, ""), pathCheckoutSessions+"/{id}", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSessionByTransactionID fetches the session that produced a transaction.
func (s *CheckoutService) GetSessionByTransactionID(ctx context.Context, transactionID string) (*CheckoutSession, error) {
	if err := requireID("transaction_id", transactionID); err != nil {
		return nil, err
	}
	var out CheckoutSession
	q := url.Values{"transaction_id": {transactionID}}
	if err := s.p.Get(ctx, pathCheckoutSessions, pathCheckoutSessions, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchSessions lists the sessions created with clientReference.
func (s *CheckoutService) SearchSessions(ctx context.Context, clientReference string) ([]CheckoutSession, error) {
	if err := requireID("client_reference", clientReference); err != nil {
		return nil, err
	}
	var out CheckoutSessionList
	q := url.Values{"client_reference": {clientReference}}
	if err := s.p.Get(ctx, pathCheckoutSessions+"/search", pathCheckoutSessions+"/search", q, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// RefundSession refunds a completed session in full.
func (s *CheckoutService) RefundSession(ctx context.Context, sessionID string) error {
	if err := requireID("session_id", sessionID); err != nil {
		return err
	}
	return s.p.Post(ctx, sessionPath(sessionID, "/refund"), pathCheckoutSessions+"/{id}/refund", nil, nil)
}

// ExpireSession closes an open session so it can no longer be paid.
func (s *CheckoutService) ExpireSession(ctx context.Context, sessionID string) error {
	if err := requireID("session_id", sessionID); err != nil {
		return err
	}
	return s.p.Post(ctx, sessionPath(sessionID, "/expire"), pathCheckoutSessions+"/{id}/expire", nil, nil)
}

func sessionPath(id, suffix string) string {
	return pathCheckoutSessions + "/" + url.PathEscape(id) + suffix
}
