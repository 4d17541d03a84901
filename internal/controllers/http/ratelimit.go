package httpctrl

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientRateLimiter keeps one token bucket per remote host.
type clientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	r       rate.Limit
	b       int
}

func newClientRateLimiter(r rate.Limit, b int) *clientRateLimiter {
	return &clientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}
}

func (l *clientRateLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.clients[host]
	if !ok {
		lim = rate.NewLimiter(l.r, l.b)
		l.clients[host] = lim
	}
	return lim
}

func (l *clientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.limiter(host).Allow() {
			writeErr(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
