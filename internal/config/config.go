package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	wave "github.com/noah-isme/wave-go"
	"github.com/noah-isme/wave-go/webhook"
)

// Config holds command configuration loaded from the environment.
type Config struct {
	AppEnv   string
	Port     string
	RedisURL string
	Wave     Wave
	Webhook  Webhook
	Obs      Obs
}

// Wave configures the outbound API client.
type Wave struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// Webhook configures the inbound receiver.
type Webhook struct {
	Strategy        webhook.Strategy
	Secret          string
	Tolerance       time.Duration
	MaxBodyBytes    int64
	ReplayTTL       time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	// TrustProxy keys rate limits on forwarded client headers.
	TrustProxy bool
}

// Obs configures logging, metrics and tracing.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	EnableTracing    bool
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env
// files without enforcing command-specific requirements.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:   valueOrDefault(k.String("APP_ENV"), "development"),
		Port:     valueOrDefault(k.String("PORT"), "8080"),
		RedisURL: strings.TrimSpace(k.String("REDIS_URL")),
		Wave: Wave{
			APIKey:  strings.TrimSpace(k.String("WAVE_API_KEY")),
			BaseURL: valueOrDefault(k.String("WAVE_BASE_URL"), wave.DefaultBaseURL),
			Timeout: parseDuration(k.String("WAVE_TIMEOUT"), "30s"),
			Debug:   parseBool(k.String("WAVE_DEBUG")),
		},
		Webhook: Webhook{
			Strategy:        webhook.Strategy(strings.ToUpper(valueOrDefault(k.String("WAVE_WEBHOOK_STRATEGY"), string(webhook.StrategySigningSecret)))),
			Secret:          k.String("WAVE_WEBHOOK_SECRET"),
			Tolerance:       parseDuration(k.String("WAVE_WEBHOOK_TOLERANCE"), "0s"),
			MaxBodyBytes:    parseInt64(k.String("WEBHOOK_MAX_BODY_BYTES"), 1<<20),
			ReplayTTL:       parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
			RateLimitMax:    int(parseInt64(k.String("WEBHOOK_RATE_LIMIT_MAX"), 120)),
			RateLimitWindow: parseDuration(k.String("WEBHOOK_RATE_LIMIT_WINDOW"), "1m"),
			TrustProxy:      parseBool(k.String("WEBHOOK_TRUST_PROXY")),
		},
		Obs: Obs{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "wave"),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING")),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		},
	}
	return cfg, nil
}

// LoadClient loads configuration for commands calling the Wave API.
func LoadClient() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.Wave.APIKey == "" {
		return nil, errors.New("WAVE_API_KEY is required")
	}
	return cfg, nil
}

// LoadReceiver loads configuration for the webhook receiver.
func LoadReceiver() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	strategy, err := webhook.ParseStrategy(string(cfg.Webhook.Strategy))
	if err != nil {
		return nil, fmt.Errorf("WAVE_WEBHOOK_STRATEGY: %w", err)
	}
	cfg.Webhook.Strategy = strategy
	if cfg.Webhook.Secret == "" {
		return nil, errors.New("WAVE_WEBHOOK_SECRET is required")
	}
	return cfg, nil
}

// ClientConfig converts the Wave section into a client configuration.
func (c *Config) ClientConfig() wave.Config {
	return wave.Config{
		APIKey:  c.Wave.APIKey,
		BaseURL: c.Wave.BaseURL,
		Timeout: c.Wave.Timeout,
		Debug:   c.Wave.Debug,
	}
}

// Verifier builds the webhook verifier for the configured strategy.
func (c *Config) Verifier() (webhook.Verifier, error) {
	return webhook.NewVerifier(c.Webhook.Strategy, c.Webhook.Secret)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt64(value string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 || f > 1 {
		return fallback
	}
	return f
}

// LoadForTests runs load with env applied, restoring the previous values
// afterwards.
func LoadForTests(env map[string]string, load func() (*Config, error)) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
