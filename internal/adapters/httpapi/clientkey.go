package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientKey identifies the caller for rate limiting and recipe ownership.
// Explicit X-Client-Key wins; otherwise the first hop of X-Forwarded-For,
// otherwise the remote address without its port.
func clientKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-Client-Key")); k != "" {
		return k
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
