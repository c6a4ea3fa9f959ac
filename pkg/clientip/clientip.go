// Package clientip extracts the real client IP address from HTTP requests,
// honoring the proxy headers commonly set by load balancers.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client IP for the request. It checks X-Forwarded-For
// (first address) and X-Real-IP before falling back to RemoteAddr.
func GetIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		if net.ParseIP(xrip) != nil {
			return xrip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
