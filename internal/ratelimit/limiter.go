// Package ratelimit decides whether an outgoing request may be sent now.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

// Reason explains an admission decision.
type Reason string

const (
	ReasonAdmitted Reason = "admitted"
	ReasonInterval Reason = "min_interval"
	ReasonPeriod   Reason = "period_cap"
	ReasonDay      Reason = "day_cap"
)

// Decision is the outcome of one admission attempt.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Config holds the admission limits.
type Config struct {
	MinInterval  time.Duration
	MaxPerPeriod int
	// MaxPerDay of zero disables the daily cap.
	MaxPerDay int
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter enforces a minimum spacing between admissions, a cap per period
// and an optional daily cap. The period counter is only cleared by
// ResetPeriod; the limiter holds no timer.
type Limiter struct {
	mu       sync.Mutex
	cfg      Config
	interval *rate.Limiter // nil when no spacing is required
	now      func() time.Time

	count       int
	dayCount    int
	day         time.Time
	windowStart time.Time
	last        time.Time
}

// New creates a limiter. The first call is always admitted.
func New(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if cfg.MinInterval > 0 {
		l.interval = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	now := l.now()
	l.windowStart = now
	l.day = dayOf(now)
	return l
}

// TryAdmit reports whether a request may be sent now and records it if so.
func (l *Limiter) TryAdmit() bool {
	return l.Admit().Allowed
}

// Admit evaluates the rules in order: spacing, period cap, daily cap.
// Counters change only when the request is admitted.
func (l *Limiter) Admit() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if d := dayOf(now); !d.Equal(l.day) {
		l.day = d
		l.dayCount = 0
	}

	if l.interval != nil && l.interval.TokensAt(now) < 1 {
		return Decision{Reason: ReasonInterval}
	}
	if l.count >= l.cfg.MaxPerPeriod {
		return Decision{Reason: ReasonPeriod}
	}
	if l.cfg.MaxPerDay > 0 && l.dayCount >= l.cfg.MaxPerDay {
		return Decision{Reason: ReasonDay}
	}

	if l.interval != nil {
		l.interval.AllowN(now, 1)
	}
	l.count++
	l.dayCount++
	l.last = now
	return Decision{Allowed: true, Reason: ReasonAdmitted}
}

// ResetPeriod clears the period counter and starts a new window.
func (l *Limiter) ResetPeriod() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count = 0
	l.windowStart = l.now()
}

// Count returns the number of admissions in the current period.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Window returns a snapshot of the counters.
func (l *Limiter) Window() model.RateWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	return model.RateWindow{
		MessageCount:  l.count,
		DayCount:      l.dayCount,
		WindowStart:   l.windowStart,
		LastMessageAt: l.last,
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
