package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wave-go/apierror"
)

func TestKindForStatus(t *testing.T) {
	cases := map[int]apierror.Kind{
		http.StatusUnauthorized:        apierror.KindAuthentication,
		http.StatusForbidden:           apierror.KindPermission,
		http.StatusNotFound:            apierror.KindNotFound,
		http.StatusUnprocessableEntity: apierror.KindValidation,
		http.StatusTooManyRequests:     apierror.KindRateLimit,
		http.StatusInternalServerError: apierror.KindServer,
		http.StatusServiceUnavailable:  apierror.KindServer,
		http.StatusBadRequest:          apierror.KindGeneric,
		http.StatusConflict:            apierror.KindGeneric,
		http.StatusBadGateway:          apierror.KindGeneric,
		418:                            apierror.KindGeneric,
	}
	for status, want := range cases {
		require.Equal(t, want, apierror.KindForStatus(status), "status %d", status)
	}
}

func TestFromResponseDecodesBody(t *testing.T) {
	raw := []byte(`{"code":"request-validation-error","message":"Request invalid","details":[{"loc":["body","payouts",0,"amount"],"msg":"field required","type":"value_error.missing"}]}`)
	err := apierror.FromResponse(http.StatusUnprocessableEntity, raw)

	require.Equal(t, apierror.KindValidation, err.Kind)
	require.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	require.Equal(t, "request-validation-error", err.Code)
	require.Equal(t, "Request invalid", err.Message)
	require.Len(t, err.Details, 1)
	require.Equal(t, "body.payouts[0].amount", err.Details[0].Loc.String())
	require.Equal(t, "field required", err.Details[0].Msg)
	require.Equal(t, "body.payouts[0].amount: field required", err.Details[0].String())
}

func TestFromResponseKeepsKindWhenDetailsMalformed(t *testing.T) {
	raw := []byte(`{"code":"request-validation-error","message":"Request invalid","details":{"amount":"invalid"}}`)
	err := apierror.FromResponse(http.StatusUnprocessableEntity, raw)

	require.Equal(t, apierror.KindValidation, err.Kind)
	require.Equal(t, "request-validation-error", err.Code)
	require.Equal(t, "Request invalid", err.Message)
	require.Empty(t, err.Details)
}

func TestFromResponseFallsBackToGeneric(t *testing.T) {
	err := apierror.FromResponse(http.StatusNotFound, []byte("<html>gone</html>"))
	require.Equal(t, apierror.KindGeneric, err.Kind)
	require.Equal(t, http.StatusNotFound, err.HTTPStatus)
	require.Equal(t, "<html>gone</html>", err.Message)

	empty := apierror.FromResponse(http.StatusBadGateway, nil)
	require.Equal(t, apierror.KindGeneric, empty.Kind)
	require.Equal(t, http.StatusText(http.StatusBadGateway), empty.Message)

	shapeless := apierror.FromResponse(http.StatusForbidden, []byte(`{"error":"nope"}`))
	require.Equal(t, apierror.KindGeneric, shapeless.Kind)
	require.Equal(t, http.StatusForbidden, shapeless.HTTPStatus)
}

func TestNewKeepsUndocumentedStatus(t *testing.T) {
	err := apierror.New(409, apierror.Body{Code: "idempotency-mismatch", Message: "conflict"})
	require.Equal(t, apierror.KindGeneric, err.Kind)
	require.Equal(t, 409, err.HTTPStatus)
	require.Equal(t, 409, apierror.StatusCode(fmt.Errorf("wrapped: %w", err)))
	require.Equal(t, 0, apierror.StatusCode(errors.New("plain")))
}

func TestSentinelsMatchByKind(t *testing.T) {
	err := error(apierror.New(http.StatusTooManyRequests, apierror.Body{Code: "too-many-requests"}))
	wrapped := fmt.Errorf("list transactions: %w", err)

	require.ErrorIs(t, wrapped, apierror.ErrRateLimit)
	require.NotErrorIs(t, wrapped, apierror.ErrServer)
	require.NotErrorIs(t, wrapped, apierror.ErrGeneric)

	apiErr, ok := apierror.As(wrapped)
	require.True(t, ok)
	require.Equal(t, "too-many-requests", apiErr.Code)
}

func TestErrorMessage(t *testing.T) {
	err := apierror.New(http.StatusNotFound, apierror.Body{Code: "not-found", Message: "Payout not found"})
	err.Method = http.MethodGet
	err.Path = "/v1/payout/pt-1"
	require.Equal(t, "wave: not_found error [404] not-found: Payout not found [GET /v1/payout/pt-1]", err.Error())
}

func TestLocationRoundTrip(t *testing.T) {
	var loc apierror.Location
	require.NoError(t, json.Unmarshal([]byte(`["query",2,"first"]`), &loc))
	require.Equal(t, "query[2].first", loc.String())

	out, err := json.Marshal(loc)
	require.NoError(t, err)
	require.JSONEq(t, `["query",2,"first"]`, string(out))

	require.Error(t, json.Unmarshal([]byte(`[true]`), &loc))
}

func TestPreconditionError(t *testing.T) {
	err := apierror.Required("credential")
	require.EqualError(t, err, "credential is required")
	require.ErrorIs(t, err, apierror.ErrRequired)
	require.True(t, apierror.IsPrecondition(err))

	_, isAPI := apierror.As(err)
	require.False(t, isAPI)

	require.EqualError(t, apierror.InvalidFormat("credential"), "credential has invalid format")
	require.ErrorIs(t, apierror.Unsupported("method"), apierror.ErrUnsupported)
	require.False(t, apierror.IsPrecondition(errors.New("other")))
}
