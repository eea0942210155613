// internal/api/throttle.go
package api

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ipThrottle applies a token-bucket limit per remote address. This is coarse
// abuse protection for the HTTP surface; the per-user transfer window lives
// in the service layer.
type ipThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPThrottle(requestsPerSecond float64, burst int) *ipThrottle {
	return &ipThrottle{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (t *ipThrottle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, exists := t.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(t.rate, t.burst)
		t.limiters[key] = limiter
	}
	return limiter
}

// Handler returns the throttling middleware handler.
func (t *ipThrottle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter(r.RemoteAddr).Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
