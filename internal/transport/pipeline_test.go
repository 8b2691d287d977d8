package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wave-go/apierror"
	"github.com/noah-isme/wave-go/internal/transport"
)

const testKey = "wave_sn_prod_test_key_0123456789"

func newPipeline(t *testing.T, srv *httptest.Server, mutate func(*transport.Config)) *transport.Pipeline {
	t.Helper()
	cfg := transport.Config{
		APIKey:     testKey,
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		HTTPClient: srv.Client(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := transport.New(cfg)
	require.NoError(t, err)
	return p
}

func TestNewRequiresCredentialAndBaseURL(t *testing.T) {
	_, err := transport.New(transport.Config{BaseURL: "https://api.wave.com"})
	require.ErrorIs(t, err, apierror.ErrRequired)

	_, err = transport.New(transport.Config{APIKey: testKey, BaseURL: "not a url"})
	require.ErrorIs(t, err, apierror.ErrInvalidFormat)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   apierror.Kind
		target error
	}{
		{http.StatusUnauthorized, apierror.KindAuthentication, apierror.ErrAuthentication},
		{http.StatusForbidden, apierror.KindPermission, apierror.ErrPermission},
		{http.StatusNotFound, apierror.KindNotFound, apierror.ErrNotFound},
		{http.StatusUnprocessableEntity, apierror.KindValidation, apierror.ErrValidation},
		{http.StatusTooManyRequests, apierror.KindRateLimit, apierror.ErrRateLimit},
		{http.StatusInternalServerError, apierror.KindServer, apierror.ErrServer},
		{http.StatusServiceUnavailable, apierror.KindServer, apierror.ErrServer},
		{http.StatusBadRequest, apierror.KindGeneric, apierror.ErrGeneric},
		{http.StatusConflict, apierror.KindGeneric, apierror.ErrGeneric},
		{http.StatusBadGateway, apierror.KindGeneric, apierror.ErrGeneric},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"code":"some-code","message":"some message","details":[{"loc":["body","amount"],"msg":"bad"}]}`)
			}))
			t.Cleanup(srv.Close)

			p := newPipeline(t, srv, nil)
			err := p.Get(context.Background(), "/v1/balance", "/v1/balance", nil, nil)
			require.ErrorIs(t, err, tc.target)

			apiErr, ok := apierror.As(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, apiErr.Kind)
			require.Equal(t, tc.status, apiErr.HTTPStatus)
			require.Equal(t, "some-code", apiErr.Code)
			require.Equal(t, "some message", apiErr.Message)
			require.Len(t, apiErr.Details, 1)
			require.Equal(t, http.MethodGet, apiErr.Method)
			require.Equal(t, "/v1/balance", apiErr.Path)
		})
	}
}

func TestUndecodableErrorBodyIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "upstream overloaded")
	}))
	t.Cleanup(srv.Close)

	err := newPipeline(t, srv, nil).Get(context.Background(), "/v1/balance", "", nil, nil)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	require.Equal(t, apierror.KindGeneric, apiErr.Kind)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.HTTPStatus)
	require.Equal(t, "upstream overloaded", apiErr.Message)
}

func TestHeadersAndCallerOverride(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p := newPipeline(t, srv, nil)
	header := http.Header{}
	header.Set(transport.HeaderIdempotencyKey, "idem-1")
	header.Set(transport.HeaderContentType, "application/vnd.wave+json")
	err := p.Do(context.Background(), transport.Request{Method: http.MethodPost, Path: "/v1/payout", Payload: map[string]string{"mobile": "+221555110219"}, Header: header}, nil)
	require.NoError(t, err)

	require.Equal(t, "Bearer "+testKey, got.Get("Authorization"))
	require.Equal(t, "application/vnd.wave+json", got.Get("Content-Type"))
	require.Equal(t, "idem-1", got.Get("Idempotency-Key"))
	require.Equal(t, "wave-go/"+transport.Version, got.Get("User-Agent"))
}

func TestGetEncodesPayloadAsQuery(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotPath = r.URL.Path
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"amount":"1000","currency":"XOF"}`)
	}))
	t.Cleanup(srv.Close)

	type params struct {
		IncludeSubaccounts bool   `url:"include_subaccounts,omitempty"`
		After              string `url:"after,omitempty"`
	}
	var out struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	p := newPipeline(t, srv, nil)
	err := p.Get(context.Background(), "/v1/transactions?date=2024-01-02", "/v1/transactions", params{IncludeSubaccounts: true}, &out)
	require.NoError(t, err)

	require.Equal(t, "/v1/transactions", gotPath)
	require.Equal(t, "true", gotQuery.Get("include_subaccounts"))
	require.Equal(t, "2024-01-02", gotQuery.Get("date"))
	require.False(t, gotQuery.Has("after"))
	require.Equal(t, "1000", out.Amount)
	require.Equal(t, "XOF", out.Currency)
}

func TestPostEncodesJSONBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":"cos-1","nested":{"list":[1,2,3]}}`)
	}))
	t.Cleanup(srv.Close)

	p := newPipeline(t, srv, nil)
	raw, err := p.Execute(context.Background(), transport.Request{Method: "post", Path: "v1/checkout/sessions", Payload: map[string]any{"amount": "100", "currency": "XOF"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"cos-1","nested":{"list":[1,2,3]}}`, string(raw))
	require.Equal(t, "100", body["amount"])
}

func TestEmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	p := newPipeline(t, srv, nil)
	raw, err := p.Execute(context.Background(), transport.Request{Method: http.MethodPost, Path: "/v1/checkout/sessions/cos-1/expire"})
	require.NoError(t, err)
	require.Nil(t, raw)

	out := map[string]string{"kept": "yes"}
	require.NoError(t, p.Post(context.Background(), "/v1/checkout/sessions/cos-1/expire", "", nil, &out))
	require.Equal(t, "yes", out["kept"])
}

func TestMalformedSuccessBodyIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	t.Cleanup(srv.Close)

	_, err := newPipeline(t, srv, nil).Execute(context.Background(), transport.Request{Method: http.MethodGet, Path: "/v1/balance"})
	require.Error(t, err)
	var syntaxErr *json.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	_, isAPI := apierror.As(err)
	require.False(t, isAPI)
}

func TestTimeoutPropagatesTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	p := newPipeline(t, srv, func(cfg *transport.Config) { cfg.Timeout = 50 * time.Millisecond })
	err := p.Get(context.Background(), "/v1/balance", "", nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	_, isAPI := apierror.As(err)
	require.False(t, isAPI)
}

func TestPreconditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	t.Cleanup(srv.Close)
	p := newPipeline(t, srv, nil)

	_, err := p.Execute(context.Background(), transport.Request{Method: http.MethodGet, Path: "  "})
	require.ErrorIs(t, err, apierror.ErrRequired)

	_, err = p.Execute(context.Background(), transport.Request{Method: http.MethodDelete, Path: "/v1/webhooks/1"})
	require.ErrorIs(t, err, apierror.ErrUnsupported)
	require.True(t, apierror.IsPrecondition(err))
}

func TestDistinctIdempotencyKeysAreNotConflated(t *testing.T) {
	var mu sync.Mutex
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{"id":"pt-1"}`)
	}))
	t.Cleanup(srv.Close)

	p := newPipeline(t, srv, nil)
	for _, key := range []string{"a", "a", "b"} {
		h := http.Header{}
		h.Set(transport.HeaderIdempotencyKey, key)
		require.NoError(t, p.Do(context.Background(), transport.Request{Method: http.MethodPost, Path: "/v1/payout", Header: h}, nil))
	}
	require.Equal(t, []string{"a", "a", "b"}, keys)
}

func TestDebugLoggingRedactsCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":"not-found","message":"missing"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	p := newPipeline(t, srv, func(cfg *transport.Config) {
		cfg.Debug = true
		cfg.Logger = &logger
	})
	require.NoError(t, p.Post(context.Background(), "/v1/checkout/sessions", "", map[string]string{"amount": "10"}, nil))
	require.Error(t, p.Get(context.Background(), "/v1/missing", "", nil, nil))

	out := buf.String()
	require.Contains(t, out, `"message":"wave_request"`)
	require.Contains(t, out, `"message":"wave_response"`)
	require.Contains(t, out, `"message":"wave_error"`)
	require.Contains(t, out, `Bearer ***`)
	require.NotContains(t, out, testKey)
	require.Equal(t, 4, strings.Count(out, "\n"))
}

func TestDebugDisabledLogsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	p := newPipeline(t, srv, func(cfg *transport.Config) { cfg.Logger = &logger })
	require.NoError(t, p.Get(context.Background(), "/v1/balance", "", nil, nil))
	require.Zero(t, buf.Len())
}

func TestMetricsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/reverse") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"code":"payout-reversal-time-limit-exceeded","message":"too late"}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics("test", reg)
	require.Same(t, metrics.Requests, transport.NewMetrics("test", reg).Requests)

	p := newPipeline(t, srv, func(cfg *transport.Config) { cfg.Metrics = metrics })
	require.NoError(t, p.Get(context.Background(), "/v1/payout/pt-1", "/v1/payout/{id}", nil, nil))
	err := p.Post(context.Background(), "/v1/payout/pt-1/reverse", "/v1/payout/{id}/reverse", nil, nil)
	require.True(t, errors.Is(err, apierror.ErrValidation))

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "/v1/payout/{id}", "200")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.WithLabelValues("POST", "/v1/payout/{id}/reverse", "422")))
}
