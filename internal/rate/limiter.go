// Package rate limita el tráfico saliente hacia la API del proveedor.
//
// Dos backends comparten el contrato Limiter:
//   - LocalLimiter: token bucket en proceso (golang.org/x/time/rate).
//   - RedisLimiter: ventana fija compartida entre réplicas (INCR + EXPIRE).
package rate

import (
	"context"
	"time"
)

// Result describe la decisión para una key.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter decide si una operación identificada por key puede salir ahora.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// minRetry evita un loop caliente si el backend no informa RetryAfter.
const minRetry = 25 * time.Millisecond

// Wait bloquea hasta que l permita key o ctx termine.
func Wait(ctx context.Context, l Limiter, key string) error {
	for {
		res, err := l.Allow(ctx, key)
		if err != nil {
			return err
		}
		if res.Allowed {
			return nil
		}
		d := res.RetryAfter
		if d < minRetry {
			d = minRetry
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
