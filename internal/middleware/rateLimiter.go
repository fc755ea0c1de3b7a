package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type IPRateLimiter struct {
	ips       map[string]*ipLimiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	idleAfter time.Duration
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*ipLimiter), rateLimit: r, burstRate: b, idleAfter: 10 * time.Minute}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := time.Now()
	entry, exists := i.ips[ip]
	if !exists {
		i.pruneLocked(now)
		entry = &ipLimiter{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// pruneLocked forgets clients that have been quiet for a while.
func (i *IPRateLimiter) pruneLocked(now time.Time) {
	for ip, entry := range i.ips {
		if now.Sub(entry.lastSeen) > i.idleAfter {
			delete(i.ips, ip)
		}
	}
}
