// Package wave is a client for the Wave payments API.
//
//	client, err := wave.New(wave.Config{APIKey: os.Getenv("WAVE_API_KEY")})
//	if err != nil {
//		return err
//	}
//	session, err := client.Checkout.CreateSession(ctx, wave.CreateCheckoutSessionRequest{...})
//
// Failed calls return *apierror.Error, which matches the apierror sentinels
// with errors.Is. Invalid arguments are rejected before any request with an
// *apierror.PreconditionError. Network failures are returned unchanged.
package wave

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/wave-go/internal/transport"
)

// Version of this client library.
const Version = transport.Version

// Request describes a raw API call for endpoints without a typed helper.
type Request = transport.Request

// Metrics collects per-call Prometheus series; see NewMetrics.
type Metrics = transport.Metrics

// NewMetrics registers the client collectors under namespace.
var NewMetrics = transport.NewMetrics

// Option customises a Client.
type Option func(*transport.Config)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *transport.Config) { cfg.HTTPClient = c }
}

// WithLogger sets the sink for debug logging.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *transport.Config) { cfg.Logger = &l }
}

// WithMetrics records every call on m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *transport.Config) { cfg.Metrics = m }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *transport.Config) { cfg.UserAgent = ua }
}

// Client groups the resource clients. It is safe for concurrent use.
type Client struct {
	Balance   *BalanceService
	Checkout  *CheckoutService
	Payout    *PayoutService
	Merchants *MerchantService
	// Webhooks manages webhook registrations.
	//
	// Deprecated: webhook registration moved to the business portal.
	Webhooks *WebhookService

	pipeline *transport.Pipeline
	config   Config
}

// New validates cfg and builds a Client. An empty or malformed APIKey fails
// here rather than on the first call.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	tc := transport.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Debug:   cfg.Debug,
	}
	for _, opt := range opts {
		opt(&tc)
	}
	p, err := transport.New(tc)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if tc.Logger != nil {
		logger = *tc.Logger
	}
	c := &Client{pipeline: p, config: cfg}
	c.Balance = &BalanceService{p: p}
	c.Checkout = &CheckoutService{p: p}
	c.Payout = &PayoutService{p: p}
	c.Merchants = &MerchantService{p: p}
	c.Webhooks = newWebhookService(p, logger)
	return c, nil
}

// Config returns the effective configuration with defaults applied.
func (c *Client) Config() Config {
	return c.config
}

// Do executes req and decodes a successful body into out.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	return c.pipeline.Do(ctx, req, out)
}

// Raw executes req and returns the undecoded JSON body.
func (c *Client) Raw(ctx context.Context, req Request) (json.RawMessage, error) {
	return c.pipeline.Execute(ctx, req)
}
