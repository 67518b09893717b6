package server

import (
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/blegw/internal/logging"
)

// clientLimiter keeps one token bucket per client address. The least
// recently seen clients are evicted once size is reached.
type clientLimiter struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *rate.Limiter]
	limit rate.Limit
	burst int
}

func newClientLimiter(rps float64, burst, size int) (*clientLimiter, error) {
	c, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{cache: c, limit: rate.Limit(rps), burst: burst}, nil
}

func (c *clientLimiter) Allow(client string) bool {
	c.mu.Lock()
	l, ok := c.cache.Get(client)
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.cache.Add(client, l)
	}
	c.mu.Unlock()
	return l.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			logging.Warn("Rate limit exceeded",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
