package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"vendzone/internal/config"
)

// clientLimiter keeps one token bucket per client address. Idle buckets are
// dropped once the map grows past maxClients.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const (
	maxClients = 10000
	clientIdle = 10 * time.Minute
)

// newClientLimiter returns nil, meaning unlimited, when RPS is zero.
func newClientLimiter(cfg config.Rate) *clientLimiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{limit: rate.Limit(cfg.RPS), burst: burst, clients: map[string]*clientBucket{}}
}

func (l *clientLimiter) allow(r *http.Request) bool {
	if l == nil {
		return true
	}
	key := clientKey(r)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxClients {
			l.sweep(now)
		}
		b = &clientBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (l *clientLimiter) sweep(now time.Time) {
	for k, b := range l.clients {
		if now.Sub(b.seen) > clientIdle {
			delete(l.clients, k)
		}
	}
}

// clientKey prefers the first X-Forwarded-For hop, then the remote host.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
