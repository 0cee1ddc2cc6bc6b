package services

import (
	"sync"

	"golang.org/x/time/rate"

	"liveask/internal/domain"
)

// maxTrackedLimiters bounds the limiter map. When the cap is hit the pool is
// reset wholesale; briefly forgetting offenders is cheaper than tracking
// every fingerprint a large event ever saw.
const maxTrackedLimiters = 10000

// limiterPool keeps one token bucket per fingerprint to blunt spam from a
// single client without accounts.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[domain.Fingerprint]*rate.Limiter
	r        rate.Limit
	b        int
}

func newLimiterPool(perSecond float64, burst int) *limiterPool {
	if perSecond <= 0 {
		perSecond = 2
	}
	if burst <= 0 {
		burst = 10
	}
	return &limiterPool{
		limiters: make(map[domain.Fingerprint]*rate.Limiter),
		r:        rate.Limit(perSecond),
		b:        burst,
	}
}

func (p *limiterPool) allow(fp domain.Fingerprint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.limiters) >= maxTrackedLimiters {
		p.limiters = make(map[domain.Fingerprint]*rate.Limiter)
	}
	l, ok := p.limiters[fp]
	if !ok {
		l = rate.NewLimiter(p.r, p.b)
		p.limiters[fp] = l
	}
	return l.Allow()
}
