package webhook

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/wave-go/apierror"
)

// Strategy is the security strategy a webhook was registered with.
type Strategy string

const (
	StrategySharedSecret  Strategy = "SHARED_SECRET"
	StrategySigningSecret Strategy = "SIGNING_SECRET"
)

// ParseStrategy normalises s into a known Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategySharedSecret:
		return StrategySharedSecret, nil
	case StrategySigningSecret:
		return StrategySigningSecret, nil
	default:
		return "", apierror.Unsupported("strategy")
	}
}

// Verifier authenticates deliveries for a single webhook registration.
type Verifier struct {
	Strategy Strategy
	Secret   string
}

// NewVerifier validates the strategy and secret.
func NewVerifier(strategy Strategy, secret string) (Verifier, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return Verifier{}, err
	}
	if secret == "" {
		return Verifier{}, apierror.Required("secret")
	}
	return Verifier{Strategy: strategy, Secret: secret}, nil
}

// Verify checks the delivery using exactly one strategy. A missing header
// surfaces as a precondition error from the underlying check.
func (v Verifier) Verify(header http.Header, body []byte) (bool, error) {
	switch v.Strategy {
	case StrategySharedSecret:
		return VerifySharedSecret(header.Get(AuthorizationHeader), v.Secret)
	case StrategySigningSecret:
		return VerifySignatureSecret(body, header.Get(SignatureHeader), v.Secret)
	default:
		return false, apierror.Unsupported("strategy")
	}
}

// SignedAt returns the timestamp carried by the Wave-Signature header. It
// reports false for the shared-secret strategy or an unparsable header.
func (v Verifier) SignedAt(header http.Header) (time.Time, bool) {
	if v.Strategy != StrategySigningSecret {
		return time.Time{}, false
	}
	sig, ok := ParseSignature(header.Get(SignatureHeader))
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(sig.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
