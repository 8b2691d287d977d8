// Package webhook authenticates inbound Wave webhook deliveries.
//
// Two mutually exclusive strategies exist. A webhook registered with
// SHARED_SECRET receives the secret verbatim as "Authorization: Bearer
// <secret>". A webhook registered with SIGNING_SECRET receives a
// "Wave-Signature: t=<unix>,v1=<hex>[,v1=<hex>...]" header where each v1
// value is a hex HMAC-SHA256 of the timestamp string immediately followed by
// the raw body, keyed by the signing secret. Several v1 values appear while a
// secret is being rotated; any one matching is sufficient.
//
// Verification failures are reported as false. Only missing arguments are
// reported as errors, as *apierror.PreconditionError.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/noah-isme/wave-go/apierror"
)

// Header names read by the verifiers.
const (
	AuthorizationHeader = "Authorization"
	SignatureHeader     = "Wave-Signature"
)

const (
	timestampKey = "t"
	signatureKey = "v1"
)

// Signature is a parsed Wave-Signature header.
type Signature struct {
	Timestamp  string
	Candidates []string
}

// ParseSignature splits a Wave-Signature header into its timestamp and v1
// candidates. Tokens with other keys or without '=' are ignored. The header
// is rejected when the timestamp is missing, empty or repeated.
func ParseSignature(header string) (Signature, bool) {
	var sig Signature
	seenTimestamp := false
	for _, token := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(token), "=")
		if !ok {
			continue
		}
		switch key {
		case timestampKey:
			if seenTimestamp {
				return Signature{}, false
			}
			seenTimestamp = true
			sig.Timestamp = value
		case signatureKey:
			sig.Candidates = append(sig.Candidates, value)
		}
	}
	if sig.Timestamp == "" {
		return Signature{}, false
	}
	return sig, true
}

// ComputeSignature returns the hex HMAC-SHA256 of timestamp||payload keyed by
// secret.
func ComputeSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue renders a Wave-Signature header for payload, with one
// v1 entry per secret. It is what Wave sends and is useful for tests and
// local replays.
func SignatureHeaderValue(timestamp string, payload []byte, secrets ...string) string {
	var b strings.Builder
	b.WriteString(timestampKey + "=" + timestamp)
	for _, secret := range secrets {
		b.WriteString("," + signatureKey + "=")
		b.WriteString(ComputeSignature(secret, timestamp, payload))
	}
	return b.String()
}

// VerifySharedSecret reports whether authHeader is exactly "Bearer <secret>".
func VerifySharedSecret(authHeader, secret string) (bool, error) {
	if authHeader == "" {
		return false, apierror.Required("auth_header")
	}
	if secret == "" {
		return false, apierror.Required("secret")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) == 1, nil
}

// VerifySignatureSecret reports whether signatureHeader carries at least one
// v1 digest matching payload under secret. Freshness of the timestamp is not
// checked here; see Handler.Tolerance.
func VerifySignatureSecret(payload []byte, signatureHeader, secret string) (bool, error) {
	if len(payload) == 0 {
		return false, apierror.Required("payload")
	}
	if signatureHeader == "" {
		return false, apierror.Required("signature")
	}
	if secret == "" {
		return false, apierror.Required("secret")
	}
	sig, ok := ParseSignature(signatureHeader)
	if !ok {
		return false, nil
	}
	expected := []byte(ComputeSignature(secret, sig.Timestamp, payload))
	matched := false
	for _, candidate := range sig.Candidates {
		if hmac.Equal(expected, []byte(candidate)) {
			matched = true
		}
	}
	return matched, nil
}
