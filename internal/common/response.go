package common

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the error payload returned by the receiver.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// JSON writes v as the response body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders {"error": ErrorBody}. The request id is taken from the
// chi RequestID middleware when present.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := ErrorBody{Code: code, Message: message}
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
	}
	JSON(w, status, map[string]ErrorBody{"error": body})
}
