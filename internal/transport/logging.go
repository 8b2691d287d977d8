package transport

import (
	"net/http"
	"strings"
)

const redactedBearer = "Bearer ***"

func (p *Pipeline) logRequest(req *http.Request, body []byte) {
	if !p.debug {
		return
	}
	p.logger.Info().
		Str("method", req.Method).
		Str("path", req.URL.RequestURI()).
		Interface("headers", redactHeaders(req.Header)).
		Str("body", string(body)).
		Msg("wave_request")
}

func (p *Pipeline) logResponse(req *http.Request, resp *http.Response, body []byte) {
	if !p.debug {
		return
	}
	p.logger.Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Interface("headers", resp.Header).
		Str("body", string(body)).
		Msg("wave_response")
}

func (p *Pipeline) logErrorResponse(req *http.Request, resp *http.Response, body []byte) {
	if !p.debug {
		return
	}
	p.logger.Error().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Interface("headers", resp.Header).
		Str("body", string(body)).
		Msg("wave_error")
}

func (p *Pipeline) logTransportError(req *http.Request, err error) {
	if !p.debug {
		return
	}
	p.logger.Error().
		Err(err).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("wave_error")
}

// redactHeaders copies h with the bearer credential masked.
func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if v := out.Get(HeaderAuthorization); strings.HasPrefix(v, "Bearer ") {
		out.Set(HeaderAuthorization, redactedBearer)
	}
	return out
}
