package remote

import (
	"context"
	"sync"
	"time"
)

// Pacer is a token-bucket limiter for remote API calls. Providers such as
// Google Drive throttle aggressively on burst traffic; a shared pacer keeps
// concurrent workers under the per-user rate without coordinating otherwise.
type Pacer struct {
	mu     sync.Mutex
	rate   float64 // tokens per second, <= 0 means unpaced
	burst  float64
	tokens float64
	last   time.Time
}

// NewPacer creates a pacer allowing callsPerSecond sustained calls.
// callsPerSecond <= 0 disables pacing.
func NewPacer(callsPerSecond float64) *Pacer {
	burst := callsPerSecond
	if burst < 1 {
		burst = 1
	}
	return &Pacer{
		rate:   callsPerSecond,
		burst:  burst,
		tokens: burst,
		last:   time.Now(),
	}
}

// Wait blocks until a call token is available or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.rate <= 0 {
		return ctx.Err()
	}

	for {
		p.mu.Lock()
		now := time.Now()
		p.tokens += now.Sub(p.last).Seconds() * p.rate
		if p.tokens > p.burst {
			p.tokens = p.burst
		}
		p.last = now

		if p.tokens >= 1 {
			p.tokens--
			p.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - p.tokens) / p.rate * float64(time.Second))
		p.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
