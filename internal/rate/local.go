package rate

import (
	"context"
	"sync"

	xrate "golang.org/x/time/rate"
)

// LocalLimiter keeps one token bucket per key inside the process.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   xrate.Limit
	burst   int
	buckets map[string]*xrate.Limiter
}

// NewLocalLimiter allows perSecond requests per key with the given burst.
func NewLocalLimiter(perSecond float64, burst int) *LocalLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LocalLimiter{
		limit:   xrate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*xrate.Limiter),
	}
}

func (l *LocalLimiter) bucket(key string) *xrate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = xrate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}

// Allow consumes a token when one is available now. Otherwise it reports how
// long until the next token without consuming anything.
func (l *LocalLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	b := l.bucket(key)
	r := b.Reserve()
	if !r.OK() {
		return Result{Allowed: false, RetryAfter: minRetry}, nil
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return Result{Allowed: false, RetryAfter: d}, nil
	}
	remaining := int64(b.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining}, nil
}
