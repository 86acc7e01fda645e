package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles token login attempts per client address so tokens
// cannot be guessed through POST /login.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	every    time.Duration
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows burst attempts per client, refilled one every
// interval. Clients idle for longer than ten intervals are forgotten.
func NewLoginLimiter(every time.Duration, burst int) *LoginLimiter {
	if every <= 0 {
		every = 10 * time.Second
	}
	if burst <= 0 {
		burst = 5
	}
	return &LoginLimiter{
		limiters: make(map[string]*clientLimiter),
		every:    every,
		burst:    burst,
		idle:     10 * every,
		now:      time.Now,
	}
}

// Allow reports whether client may attempt a login now.
func (l *LoginLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	cl, ok := l.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (l *LoginLimiter) evictIdle(now time.Time) {
	for client, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > l.idle {
			delete(l.limiters, client)
		}
	}
}
