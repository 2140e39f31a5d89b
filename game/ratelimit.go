package game

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequestsStr = "too-many-requests"

const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	locker  sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

func newIPRateLimiter(limit rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
	}
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.locker.Lock()
	defer l.locker.Unlock()

	now := time.Now()
	for addr, client := range l.clients {
		if now.Sub(client.lastSeen) > limiterIdleTimeout {
			delete(l.clients, addr)
		}
	}

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// RateLimitMiddleware applies a per-client-IP token bucket. Exhausted buckets
// answer 429 with the standard envelope.
func RateLimitMiddleware(limit rate.Limit, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(limit, burst)
	return func(ctx *gin.Context) {
		if !limiter.get(ctx.ClientIP()).Allow() {
			respondError(ctx, http.StatusTooManyRequests, ErrTooManyRequestsStr)
			return
		}
		ctx.Next()
	}
}
