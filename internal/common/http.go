// Package common holds HTTP helpers shared by the webhook receiver.
package common

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the originating client address. The first valid entry of
// X-Forwarded-For wins, then X-Real-IP, then the connection address.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		if addr, err := netip.ParseAddr(xr); err == nil {
			return addr.String()
		}
	}
	return RemoteIP(r)
}

// RemoteIP returns the connection address without consulting any
// client-supplied header.
func RemoteIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
