package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wave-go/apierror"
	"github.com/noah-isme/wave-go/webhook"
)

func hmacHex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySharedSecret(t *testing.T) {
	ok, err := webhook.VerifySharedSecret("Bearer abc", "abc")
	require.NoError(t, err)
	require.True(t, ok)

	for _, header := range []string{"Bearer xyz", "Basic abc", "Bearer  abc", "Bearer abc extra", "bearer abc", "abc"} {
		ok, err := webhook.VerifySharedSecret(header, "abc")
		require.NoError(t, err, header)
		require.False(t, ok, header)
	}

	_, err = webhook.VerifySharedSecret("", "abc")
	require.ErrorIs(t, err, apierror.ErrRequired)
	require.True(t, apierror.IsPrecondition(err))

	_, err = webhook.VerifySharedSecret("Bearer abc", "")
	require.ErrorIs(t, err, apierror.ErrRequired)
}

func TestVerifySignatureSecret(t *testing.T) {
	d := hmacHex("s", "100p")
	require.Equal(t, d, webhook.ComputeSignature("s", "100", []byte("p")))

	ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=100,v1="+d, "s")
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("any mutated character fails", func(t *testing.T) {
		for i := range d {
			mutated := []byte(d)
			if mutated[i] == '0' {
				mutated[i] = '1'
			} else {
				mutated[i] = '0'
			}
			ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=100,v1="+string(mutated), "s")
			require.NoError(t, err)
			require.False(t, ok, "position %d", i)
		}
	})

	t.Run("missing timestamp fails closed", func(t *testing.T) {
		ok, err := webhook.VerifySignatureSecret([]byte("p"), "v1="+d, "s")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rotation accepts any matching candidate", func(t *testing.T) {
		d1 := hmacHex("old-secret", "100p")
		ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=100,v1="+d1+",v1="+d, "s")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("no candidates never match", func(t *testing.T) {
		for _, secret := range []string{"s", "other", "x"} {
			ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=100", secret)
			require.NoError(t, err)
			require.False(t, ok)
		}
	})

	t.Run("timestamp is part of the digest", func(t *testing.T) {
		ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=101,v1="+d, "s")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("repeated timestamp fails closed", func(t *testing.T) {
		ok, err := webhook.VerifySignatureSecret([]byte("p"), "t=100,t=101,v1="+d, "s")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("garbage header fails closed", func(t *testing.T) {
		ok, err := webhook.VerifySignatureSecret([]byte("p"), "not-a-signature", "s")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("empty arguments are preconditions", func(t *testing.T) {
		_, err := webhook.VerifySignatureSecret(nil, "t=100,v1="+d, "s")
		require.ErrorIs(t, err, apierror.ErrRequired)
		_, err = webhook.VerifySignatureSecret([]byte("p"), "", "s")
		require.ErrorIs(t, err, apierror.ErrRequired)
		_, err = webhook.VerifySignatureSecret([]byte("p"), "t=100,v1="+d, "")
		require.ErrorIs(t, err, apierror.ErrRequired)
	})
}

func TestParseSignature(t *testing.T) {
	sig, ok := webhook.ParseSignature(" t=1623158400 , v1=aa,v2=ignored,junk, v1=bb")
	require.True(t, ok)
	require.Equal(t, "1623158400", sig.Timestamp)
	require.Equal(t, []string{"aa", "bb"}, sig.Candidates)

	_, ok = webhook.ParseSignature("t=,v1=aa")
	require.False(t, ok)
}

func TestSignatureHeaderValueRoundTrip(t *testing.T) {
	body := []byte(`{"id":"AE_1","type":"checkout.session.completed"}`)
	header := webhook.SignatureHeaderValue("1700000000", body, "old", "new")

	for _, secret := range []string{"old", "new"} {
		ok, err := webhook.VerifySignatureSecret(body, header, secret)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := webhook.VerifySignatureSecret(body, header, "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifierDispatchesOneStrategy(t *testing.T) {
	body := []byte(`{"id":"evt"}`)
	h := http.Header{}
	h.Set(webhook.AuthorizationHeader, "Bearer secret")
	h.Set(webhook.SignatureHeader, webhook.SignatureHeaderValue("100", body, "secret"))

	shared, err := webhook.NewVerifier(webhook.StrategySharedSecret, "secret")
	require.NoError(t, err)
	ok, err := shared.Verify(h, body)
	require.NoError(t, err)
	require.True(t, ok)

	onlySig := http.Header{}
	onlySig.Set(webhook.SignatureHeader, h.Get(webhook.SignatureHeader))
	_, err = shared.Verify(onlySig, body)
	require.ErrorIs(t, err, apierror.ErrRequired)

	signing, err := webhook.NewVerifier(webhook.StrategySigningSecret, "secret")
	require.NoError(t, err)
	ok, err = signing.Verify(h, body)
	require.NoError(t, err)
	require.True(t, ok)

	signedAt, ok := signing.SignedAt(h)
	require.True(t, ok)
	require.Equal(t, time.Unix(100, 0), signedAt)

	_, ok = shared.SignedAt(h)
	require.False(t, ok)
}

func TestParseStrategy(t *testing.T) {
	s, err := webhook.ParseStrategy(" signing_secret ")
	require.NoError(t, err)
	require.Equal(t, webhook.StrategySigningSecret, s)

	_, err = webhook.ParseStrategy("hmac")
	require.ErrorIs(t, err, apierror.ErrUnsupported)

	_, err = webhook.NewVerifier(webhook.StrategySharedSecret, "")
	require.ErrorIs(t, err, apierror.ErrRequired)
}

func TestDecodeEventAcceptsLegacyField(t *testing.T) {
	evt, err := webhook.DecodeEvent([]byte(`{"id":"AE_1","type":"checkout.session.completed","data":{"amount":"100"}}`))
	require.NoError(t, err)
	require.Equal(t, webhook.EventCheckoutSessionCompleted, evt.Type)
	require.JSONEq(t, `{"amount":"100"}`, string(evt.Data))

	evt, err = webhook.DecodeEvent([]byte(`{"event":"payout.completed","webhook_id":"wh_1","created_at":"2024-01-02T03:04:05Z","data":{}}`))
	require.NoError(t, err)
	require.Equal(t, webhook.EventPayoutCompleted, evt.Type)
	require.Equal(t, "wh_1", evt.WebhookID)
	require.NotNil(t, evt.CreatedAt)
}
