package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wave-go/internal/common"
	"github.com/noah-isme/wave-go/internal/config"
	"github.com/noah-isme/wave-go/internal/health"
	"github.com/noah-isme/wave-go/internal/obs"
	"github.com/noah-isme/wave-go/internal/ratelimit"
	"github.com/noah-isme/wave-go/internal/security"
	"github.com/noah-isme/wave-go/webhook"
)

func main() {
	cfg, err := config.LoadReceiver()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		Enabled:       cfg.Obs.EnableTracing,
		ServiceName:   "wave-webhookd",
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set; replay protection and rate limiting disabled")
	}

	verifier, err := cfg.Verifier()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise webhook verifier")
	}

	probes := &health.Handler{Probes: map[string]health.Probe{"redis": health.RedisProbe(redisClient)}}
	router := newRouter(routerDeps{
		Config:   cfg,
		Verifier: verifier,
		Redis:    redisClient,
		Health:   probes,
		Logger:   logger,
		Registry: prometheus.DefaultRegisterer,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		probes.Drain()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Str("strategy", string(verifier.Strategy)).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

type routerDeps struct {
	Config   *config.Config
	Verifier webhook.Verifier
	Redis    *redis.Client
	Health   *health.Handler
	Logger   zerolog.Logger
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

func newRouter(d routerDeps) http.Handler {
	ns := d.Config.Obs.MetricsNamespace
	httpObs := obs.HTTPObs{Metrics: obs.NewHTTPMetrics(ns, d.Registry)}
	requestLogger := obs.RequestLogger{Logger: d.Logger}

	receiver := webhook.Handler{
		Verifier:     d.Verifier,
		MaxBodyBytes: d.Config.Webhook.MaxBodyBytes,
		Tolerance:    d.Config.Webhook.Tolerance,
		ReplayTTL:    d.Config.Webhook.ReplayTTL,
		Recorder:     obs.NewWebhookMetrics(ns, d.Registry),
		Logger:       &d.Logger,
	}
	if d.Redis != nil {
		receiver.Replay = webhook.RedisReplayGuard{Client: d.Redis, Prefix: "wave:webhook:"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if d.Config.Webhook.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{HSTSMaxAge: 31536000}.Middleware)
	r.Use(obs.TracingMiddleware)
	r.Use(requestLogger.Middleware)
	r.Use(httpObs.Middleware)

	r.Get("/healthz", d.Health.Live)
	r.Get("/readyz", d.Health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if d.Redis != nil {
			limiter := ratelimit.Handler{
				Limiter:    ratelimit.Limiter{Client: d.Redis, Prefix: "wave:webhook:rl:"},
				Window:     d.Config.Webhook.RateLimitWindow,
				Max:        d.Config.Webhook.RateLimitMax,
				TrustProxy: d.Config.Webhook.TrustProxy,
				OnError: func(err error) {
					d.Logger.Warn().Err(err).Msg("rate limiter unavailable")
				},
			}
			r.Use(limiter.Middleware)
		}
		r.Use(receiver.Middleware)
		r.Post("/webhooks/wave", handleEvent(d.Logger))
	})
	return r
}

// handleEvent acknowledges a verified delivery. Deliveries are logged; no
// further processing happens in the receiver itself.
func handleEvent(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evt, ok := webhook.EventFromContext(r.Context())
		if !ok {
			common.JSONError(w, r, http.StatusBadRequest, "INVALID_EVENT", "missing event")
			return
		}
		logger.Info().
			Str("event_id", evt.ID).
			Str("event_type", string(evt.Type)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("wave_event")
		w.WriteHeader(http.StatusNoContent)
	}
}
