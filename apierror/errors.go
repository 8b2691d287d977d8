// Package apierror defines the failures surfaced by the Wave client: API
// rejections classified by HTTP status, and precondition failures raised
// before any request is sent.
package apierror

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an API rejection. The set is closed; statuses without a
// dedicated kind map to KindGeneric.
type Kind int

const (
	// KindGeneric covers every status without a dedicated kind.
	KindGeneric Kind = iota
	// KindAuthentication is returned for HTTP 401.
	KindAuthentication
	// KindPermission is returned for HTTP 403.
	KindPermission
	// KindNotFound is returned for HTTP 404.
	KindNotFound
	// KindValidation is returned for HTTP 422.
	KindValidation
	// KindRateLimit is returned for HTTP 429.
	KindRateLimit
	// KindServer is returned for HTTP 500 and 503.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	default:
		return "generic"
	}
}

// KindForStatus returns the kind mapped to an HTTP status code.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return KindServer
	default:
		return KindGeneric
	}
}

// Sentinels for errors.Is. Each matches any *Error of the same kind.
var (
	ErrGeneric        = &Error{Kind: KindGeneric}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrPermission     = &Error{Kind: KindPermission}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrRateLimit      = &Error{Kind: KindRateLimit}
	ErrServer         = &Error{Kind: KindServer}
)

// Body is the error document returned by the Wave API.
type Body struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error is an API rejection: the remote service answered with a non-2xx status.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Code       string
	Message    string
	Details    []FieldError

	// Method and Path identify the failed request when known.
	Method string
	Path   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "wave: %s error [%d]", e.Kind, e.HTTPStatus)
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Method != "" && e.Path != "" {
		fmt.Fprintf(&b, " [%s %s]", e.Method, e.Path)
	}
	return b.String()
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.HTTPStatus != 0 || t.Code != "" {
		return false
	}
	return e.Kind == t.Kind
}

// New builds the error for status from a decoded body. It is the generic
// constructor: any status is accepted, including ones the API does not
// document.
func New(status int, body Body) *Error {
	return &Error{
		Kind:       KindForStatus(status),
		HTTPStatus: status,
		Code:       body.Code,
		Message:    body.Message,
		Details:    body.Details,
	}
}

// FromResponse builds the error for a non-2xx response. When raw does not
// hold the expected error document the result is KindGeneric carrying the
// status and whatever text the body had.
func FromResponse(status int, raw []byte) *Error {
	trimmed := bytes.TrimSpace(raw)
	if body, ok := decodeBody(trimmed); ok {
		return New(status, body)
	}
	message := string(trimmed)
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Kind:       KindGeneric,
		HTTPStatus: status,
		Message:    message,
	}
}

// decodeBody reads code and message independently of details, so a
// malformed details member does not discard the rest of the document.
func decodeBody(raw []byte) (Body, bool) {
	if len(raw) == 0 {
		return Body{}, false
	}
	var doc struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if json.Unmarshal(raw, &doc) != nil || (doc.Code == "" && doc.Message == "") {
		return Body{}, false
	}
	body := Body{Code: doc.Code, Message: doc.Message}
	if len(doc.Details) > 0 {
		var details []FieldError
		if json.Unmarshal(doc.Details, &details) == nil {
			body.Details = details
		}
	}
	return body, true
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// API rejection.
func StatusCode(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.HTTPStatus
	}
	return 0
}
