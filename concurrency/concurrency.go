// Package concurrency provides the advisory concurrency primitives named
// in §5: a circuit breaker, a token-bucket rate limiter, and a resource
// budget counter. None of these are load-bearing for correctness — the
// core verify/build path is synchronous and single-threaded per call — an
// embedding host may use them when running verify in a service context.
package concurrency

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/internal/telemetry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var log = telemetry.New("concurrency")

// Breaker wraps gobreaker.CircuitBreaker around an arbitrary operation,
// modeling the closed/open/half-open state machine of §5.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// BreakerConfig configures NewBreaker.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32        // requests allowed through in half-open
	Interval    time.Duration // cleared-counts interval while closed; 0 disables
	Timeout     time.Duration // how long to stay open before probing half-open
	// TripAfterConsecutiveFailures opens the breaker once this many
	// consecutive failures have been observed.
	TripAfterConsecutiveFailures uint32
}

// NewBreaker builds a Breaker from cfg, defaulting TripAfterConsecutiveFailures
// to 5 and Timeout to 30s if unset.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.TripAfterConsecutiveFailures == 0 {
		cfg.TripAfterConsecutiveFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.TripAfterConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infow("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker, short-circuiting with
// errs.ErrPolicyViolation while open.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: circuit breaker %s: %v", errs.ErrPolicyViolation, b.cb.Name(), err)
		}
		return nil, err
	}
	return result, nil
}

// State reports the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Limiter wraps golang.org/x/time/rate as a token-bucket rate limiter over
// archive operations (§5).
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter returns a Limiter permitting ratePerSecond sustained
// operations with a burst of burst.
func NewLimiter(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether an operation may proceed immediately, without
// blocking or consuming a future token.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.rl.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", errs.ErrPolicyViolation, err)
	}
	return nil
}

// Budget is an atomic counter of a bounded resource (cpu-time, memory,
// operation count) an embedding host may use to cap concurrent verify
// work (§5).
type Budget struct {
	limit     int64
	allocated int64
}

// NewBudget returns a Budget capped at limit units.
func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit}
}

// TryAcquire attempts to reserve amount units, returning false if doing so
// would exceed the budget's limit.
func (b *Budget) TryAcquire(amount int64) bool {
	for {
		current := atomic.LoadInt64(&b.allocated)
		next := current + amount
		if next > b.limit {
			return false
		}
		if atomic.CompareAndSwapInt64(&b.allocated, current, next) {
			return true
		}
	}
}

// Release returns amount units to the budget.
func (b *Budget) Release(amount int64) {
	atomic.AddInt64(&b.allocated, -amount)
}

// InUse reports the currently allocated units.
func (b *Budget) InUse() int64 {
	return atomic.LoadInt64(&b.allocated)
}
