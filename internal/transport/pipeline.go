package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/wave-go/apierror"
)

// Version is reported in the default User-Agent.
const Version = "0.4.0"

// Header names and values used on every call.
const (
	HeaderAuthorization  = "Authorization"
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"
	HeaderUserAgent      = "User-Agent"
	HeaderIdempotencyKey = "Idempotency-Key"
	ContentTypeJSON      = "application/json"
)

const tracerName = "github.com/noah-isme/wave-go/internal/transport"

// Config configures a Pipeline. APIKey and BaseURL are required; the rest
// fall back to defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Debug      bool
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	Metrics    *Metrics
	UserAgent  string
}

// Request describes a single API call.
type Request struct {
	Method string
	// Path is relative to the base URL and may carry a query string.
	Path string
	// Route is a low-cardinality template of Path used to label spans and
	// metrics. Path is used when empty.
	Route string
	// Payload becomes the query string for GET and the JSON body for POST.
	Payload any
	// Header entries replace the defaults with the same name.
	Header http.Header
}

// Pipeline issues authenticated calls against the Wave API and converts
// non-2xx responses into *apierror.Error. It holds no mutable state and is
// safe for concurrent use.
type Pipeline struct {
	base      *url.URL
	apiKey    string
	timeout   time.Duration
	debug     bool
	client    *http.Client
	logger    zerolog.Logger
	metrics   *Metrics
	userAgent string
	tracer    trace.Tracer
}

// New validates cfg and returns a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apierror.Required("credential")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, apierror.Required("base_url")
	}
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apierror.InvalidFormat("base_url")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "wave_transport").Logger()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "wave-go/" + Version
	}
	return &Pipeline{
		base:      base,
		apiKey:    cfg.APIKey,
		timeout:   cfg.Timeout,
		debug:     cfg.Debug,
		client:    client,
		logger:    logger,
		metrics:   cfg.Metrics,
		userAgent: userAgent,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Get issues a GET with params encoded as the query string.
func (p *Pipeline) Get(ctx context.Context, path, route string, params, out any) error {
	return p.Do(ctx, Request{Method: http.MethodGet, Path: path, Route: route, Payload: params}, out)
}

// Post issues a POST with body encoded as JSON.
func (p *Pipeline) Post(ctx context.Context, path, route string, body, out any) error {
	return p.Do(ctx, Request{Method: http.MethodPost, Path: path, Route: route, Payload: body}, out)
}

// Do executes req and decodes a 2xx body into out. A nil out or an empty
// body leaves out untouched.
func (p *Pipeline) Do(ctx context.Context, req Request, out any) error {
	raw, err := p.Execute(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Execute performs exactly one HTTP exchange. It returns the raw JSON body
// on 2xx (nil when empty), an *apierror.Error on any other status, and the
// transport error unchanged when no response was obtained.
func (p *Pipeline) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method != http.MethodGet && method != http.MethodPost {
		return nil, apierror.Unsupported("method")
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, apierror.Required("path")
	}
	target, body, err := p.encode(method, req)
	if err != nil {
		return nil, err
	}
	route := req.Route
	if route == "" {
		route = target.Path
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ctx, span := p.tracer.Start(ctx, fmt.Sprintf("wave.%s %s", method, route), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("wave.route", route),
	)

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	p.applyHeaders(httpReq, req.Header)
	p.logRequest(httpReq, body)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.metrics.observe(method, route, statusTransportError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		p.logTransportError(httpReq, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		p.metrics.observe(method, route, statusTransportError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, err
	}
	p.metrics.observe(method, route, statusLabel(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apierror.FromResponse(resp.StatusCode, raw)
		apiErr.Method = method
		apiErr.Path = target.Path
		span.SetStatus(codes.Error, apiErr.Kind.String())
		p.logErrorResponse(httpReq, resp, raw)
		return nil, apiErr
	}
	p.logResponse(httpReq, resp, raw)

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var msg json.RawMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return msg, nil
}

func (p *Pipeline) applyHeaders(req *http.Request, extra http.Header) {
	req.Header.Set(HeaderAuthorization, "Bearer "+p.apiKey)
	req.Header.Set(HeaderContentType, ContentTypeJSON)
	req.Header.Set(HeaderAccept, ContentTypeJSON)
	req.Header.Set(HeaderUserAgent, p.userAgent)
	for name, values := range extra {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
}

func (p *Pipeline) encode(method string, req Request) (*url.URL, []byte, error) {
	ref, err := url.Parse(strings.TrimSpace(req.Path))
	if err != nil {
		return nil, nil, apierror.InvalidFormat("path")
	}
	target := *p.base
	target.Path = joinPath(p.base.Path, ref.Path)
	target.RawPath = joinPath(p.base.EscapedPath(), ref.EscapedPath())
	query := ref.Query()

	var body []byte
	switch method {
	case http.MethodGet:
		values, err := encodeQuery(req.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode query: %w", err)
		}
		for key, vs := range values {
			for _, v := range vs {
				query.Add(key, v)
			}
		}
	case http.MethodPost:
		if req.Payload != nil {
			body, err = json.Marshal(req.Payload)
			if err != nil {
				return nil, nil, fmt.Errorf("encode body: %w", err)
			}
		}
	}
	target.RawQuery = query.Encode()
	return &target, body, nil
}

func joinPath(base, rel string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
}
