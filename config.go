package wave

import (
	"regexp"
	"strings"
	"time"

	"github.com/noah-isme/wave-go/apierror"
)

// Defaults applied by Config.normalize.
const (
	DefaultBaseURL = "https://api.wave.com"
	DefaultTimeout = 30 * time.Second
)

var apiKeyPattern = regexp.MustCompile(`^wave_[a-zA-Z0-9_-]{20,}$`)

// Config holds the connection settings of a Client. It is copied at
// construction and not read again.
type Config struct {
	APIKey  string
	BaseURL string `validate:"omitempty,url"`
	Timeout time.Duration
	// Debug logs every request and response through the logger given with
	// WithLogger. The Authorization header is masked.
	Debug bool
}

// ValidAPIKey reports whether key has the shape of a Wave API key.
func ValidAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

func (c Config) normalize() (Config, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Config{}, apierror.Required("credential")
	}
	if !ValidAPIKey(c.APIKey) {
		return Config{}, apierror.InvalidFormat("credential")
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if err := validate.Struct(c); err != nil {
		return Config{}, apierror.InvalidFormat("base_url")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c, nil
}
