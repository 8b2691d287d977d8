package wave

import (
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/wave-go/internal/transport"
	"github.com/noah-isme/wave-go/webhook"
)

const pathWebhooks = "/v1/webhooks"

// WebhookService manages webhook registrations.
//
// Deprecated: register webhooks in the Wave business portal and verify
// deliveries with package webhook.
type WebhookService struct {
	p      *transport.Pipeline
	logger zerolog.Logger
	warn   sync.Once
}

func newWebhookService(p *transport.Pipeline, logger zerolog.Logger) *WebhookService {
	return &WebhookService{p: p, logger: logger}
}

func (s *WebhookService) deprecated() {
	s.warn.Do(func() {
		s.logger.Warn().Msg("wave webhook management API is deprecated and will be removed")
	})
}

func (s *WebhookService) List(ctx context.Context, params *WebhookListParams) (*WebhookList, error) {
	s.deprecated()
	var query any
	if params != nil {
		if err := check(params); err != nil {
			return nil, err
		}
		query = params
	}
	var out WebhookList
	if err := s.p.Get(ctx, pathWebhooks, pathWebhooks, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WebhookService) Create(ctx context.Context, req CreateWebhookRequest) (*Webhook, error) {
	s.deprecated()
	if err := check(req); err != nil {
		return nil, err
	}
	var out Webhook
	if err := s.p.Post(ctx, pathWebhooks, pathWebhooks, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WebhookService) Get(ctx context.Context, webhookID string) (*Webhook, error) {
	s.deprecated()
	if err := requireID("webhook_id", webhookID); err != nil {
		return nil, err
	}
	var out Webhook
	if err := s.p.Get(ctx, webhookPath(webhookID, ""), pathWebhooks+"/{id}", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the fields set on req.
func (s *WebhookService) Update(ctx context.Context, webhookID string, req UpdateWebhookRequest) (*Webhook, error) {
	s.deprecated()
	if err := requireID("webhook_id", webhookID); err != nil {
		return nil, err
	}
	if err := check(req); err != nil {
		return nil, err
	}
	var out Webhook
	if err := s.p.Post(ctx, webhookPath(webhookID, ""), pathWebhooks+"/{id}", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WebhookService) Delete(ctx context.Context, webhookID string) error {
	s.deprecated()
	if err := requireID("webhook_id", webhookID); err != nil {
		return err
	}
	return s.p.Post(ctx, webhookPath(webhookID, "/delete"), pathWebhooks+"/{id}/delete", struct{}{}, nil)
}

// Test asks Wave to send a test event to the webhook URL.
func (s *WebhookService) Test(ctx context.Context, webhookID string) (*WebhookTestResult, error) {
	s.deprecated()
	if err := requireID("webhook_id", webhookID); err != nil {
		return nil, err
	}
	var out WebhookTestResult
	if err := s.p.Post(ctx, webhookPath(webhookID, "/test"), pathWebhooks+"/{id}/test", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifySharedSecret is webhook.VerifySharedSecret.
func (s *WebhookService) VerifySharedSecret(authHeader, secret string) (bool, error) {
	return webhook.VerifySharedSecret(authHeader, secret)
}

// VerifySignatureSecret is webhook.VerifySignatureSecret.
func (s *WebhookService) VerifySignatureSecret(payload []byte, signatureHeader, secret string) (bool, error) {
	return webhook.VerifySignatureSecret(payload, signatureHeader, secret)
}

func webhookPath(id, suffix string) string {
	return pathWebhooks + "/" + url.PathEscape(id) + suffix
}
