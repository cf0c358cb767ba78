package ratelimiter

import (
	"math"
	"net"
	"net/http"
	"strconv"
)

// KeyFunc extracts the limiter key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the remote host of the connection. Forwarding
// headers are only reflected when middleware.RealIP runs in front, which is
// safe only behind a proxy that overwrites them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the per-key limit with 429 and a Retry-After header.
func Middleware(registry Registry, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := registry.GetOrCreate(key(r))
			if !limiter.Allow() {
				retryAfter := int(math.Ceil(limiter.TimeUntilAvailable().Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
