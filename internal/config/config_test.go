package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wave-go/apierror"
	"github.com/noah-isme/wave-go/internal/config"
	"github.com/noah-isme/wave-go/webhook"
)

func baseEnv() map[string]string {
	return map[string]string{
		"WAVE_API_KEY":               "",
		"WAVE_BASE_URL":              "",
		"WAVE_TIMEOUT":               "",
		"WAVE_DEBUG":                 "",
		"WAVE_WEBHOOK_STRATEGY":      "",
		"WAVE_WEBHOOK_SECRET":        "",
		"WAVE_WEBHOOK_TOLERANCE":     "",
		"WEBHOOK_MAX_BODY_BYTES":     "",
		"WEBHOOK_REPLAY_TTL":         "",
		"WEBHOOK_TRUST_PROXY":        "",
		"OBS_TRACING_SAMPLING_RATIO": "",
		"PORT":                       "",
	}
}

func TestLoadClientDefaults(t *testing.T) {
	env := baseEnv()
	env["WAVE_API_KEY"] = "wave_sn_prod_AbCdEfGhIjKlMnOpQrSt"
	cfg, err := config.LoadForTests(env, config.LoadClient)
	require.NoError(t, err)

	require.Equal(t, "https://api.wave.com", cfg.Wave.BaseURL)
	require.Equal(t, 30*time.Second, cfg.Wave.Timeout)
	require.False(t, cfg.Wave.Debug)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 1.0, cfg.Obs.SamplingRatio)

	cc := cfg.ClientConfig()
	require.Equal(t, env["WAVE_API_KEY"], cc.APIKey)
	require.Equal(t, 30*time.Second, cc.Timeout)
}

func TestLoadClientRequiresKey(t *testing.T) {
	_, err := config.LoadForTests(baseEnv(), config.LoadClient)
	require.EqualError(t, err, "WAVE_API_KEY is required")
}

func TestLoadClientOverrides(t *testing.T) {
	env := baseEnv()
	env["WAVE_API_KEY"] = "wave_sn_prod_AbCdEfGhIjKlMnOpQrSt"
	env["WAVE_BASE_URL"] = "https://sandbox.example.com"
	env["WAVE_TIMEOUT"] = "5s"
	env["WAVE_DEBUG"] = "yes"
	env["PORT"] = ":9090"
	cfg, err := config.LoadForTests(env, config.LoadClient)
	require.NoError(t, err)
	require.Equal(t, "https://sandbox.example.com", cfg.Wave.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Wave.Timeout)
	require.True(t, cfg.Wave.Debug)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}

func TestLoadReceiver(t *testing.T) {
	env := baseEnv()
	env["WAVE_WEBHOOK_SECRET"] = "wave_webhook_secret"
	env["WAVE_WEBHOOK_STRATEGY"] = "shared_secret"
	env["WAVE_WEBHOOK_TOLERANCE"] = "5m"
	env["WEBHOOK_MAX_BODY_BYTES"] = "2048"
	env["WEBHOOK_REPLAY_TTL"] = "not-a-duration"
	cfg, err := config.LoadForTests(env, config.LoadReceiver)
	require.NoError(t, err)

	require.Equal(t, webhook.StrategySharedSecret, cfg.Webhook.Strategy)
	require.Equal(t, 5*time.Minute, cfg.Webhook.Tolerance)
	require.EqualValues(t, 2048, cfg.Webhook.MaxBodyBytes)
	require.Equal(t, 24*time.Hour, cfg.Webhook.ReplayTTL)
	require.False(t, cfg.Webhook.TrustProxy)

	v, err := cfg.Verifier()
	require.NoError(t, err)
	require.Equal(t, webhook.StrategySharedSecret, v.Strategy)
}

func TestLoadReceiverTrustProxy(t *testing.T) {
	env := baseEnv()
	env["WAVE_WEBHOOK_SECRET"] = "wave_webhook_secret"
	env["WEBHOOK_TRUST_PROXY"] = "true"
	cfg, err := config.LoadForTests(env, config.LoadReceiver)
	require.NoError(t, err)
	require.True(t, cfg.Webhook.TrustProxy)
}

func TestLoadReceiverValidation(t *testing.T) {
	_, err := config.LoadForTests(baseEnv(), config.LoadReceiver)
	require.EqualError(t, err, "WAVE_WEBHOOK_SECRET is required")

	env := baseEnv()
	env["WAVE_WEBHOOK_SECRET"] = "s"
	env["WAVE_WEBHOOK_STRATEGY"] = "basic"
	_, err = config.LoadForTests(env, config.LoadReceiver)
	require.ErrorIs(t, err, apierror.ErrUnsupported)
}
