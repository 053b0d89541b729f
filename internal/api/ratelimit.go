package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client address
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	lim, ok := l.clients[client]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// reset forgets every client bucket; called periodically to bound memory
func (l *clientLimiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clients = make(map[string]*rate.Limiter)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// middleware rejects requests over the limit with a JSON 429
func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return l.limitWith(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errRateLimited)
	})(next)
}

// limitWith lets the caller choose how an over-limit request is answered
func (l *clientLimiter) limitWith(reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the refill time of one token, in whole seconds
func (l *clientLimiter) retryAfter() int {
	retry := time.Second
	if l.limit > 0 {
		retry = time.Duration(float64(time.Second) / float64(l.limit))
	}
	return int(retry.Seconds() + 0.999)
}
