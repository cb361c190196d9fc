package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// agentLimiters holds one token bucket per agent. Buckets idle for an hour
// are dropped on the next sweep.
type agentLimiters struct {
	mu      sync.Mutex
	perSec  rate.Limit
	burst   int
	buckets map[string]*agentBucket
	swept   time.Time
}

type agentBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newAgentLimiters(perSec float64, burst int) *agentLimiters {
	return &agentLimiters{
		perSec:  rate.Limit(perSec),
		burst:   burst,
		buckets: make(map[string]*agentBucket),
		swept:   time.Now(),
	}
}

func (l *agentLimiters) allow(agentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[agentID]
	if !ok {
		b = &agentBucket{lim: rate.NewLimiter(l.perSec, l.burst)}
		l.buckets[agentID] = b
	}
	b.seen = now

	if now.Sub(l.swept) > time.Hour {
		for id, bb := range l.buckets {
			if now.Sub(bb.seen) > time.Hour {
				delete(l.buckets, id)
			}
		}
		l.swept = now
	}
	return b.lim.Allow()
}
