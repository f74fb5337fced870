package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

// Resetter is anything whose period counter can be cleared.
type Resetter interface {
	ResetPeriod()
}

// Scheduler clears a limiter's period counter at a fixed interval.
type Scheduler struct {
	target Resetter
	period time.Duration
	log    *logger.Logger

	once sync.Once
	wg   conc.WaitGroup
	stop context.CancelFunc
	mu   sync.Mutex
}

// NewScheduler creates a scheduler; nothing runs until Start.
func NewScheduler(target Resetter, period time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Global()
	}
	return &Scheduler{
		target: target,
		period: period,
		log:    log.Named("ratelimit"),
	}
}

// Start launches the reset loop. Later calls do nothing. The loop ends when
// ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.stop = cancel
		s.mu.Unlock()

		s.wg.Go(func() {
			s.run(ctx)
		})
		s.log.Debug("rate window scheduler started", zap.Duration("period", s.period))
	})
}

// Stop ends the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.target.ResetPeriod()
			metrics.SetRateWindow(0)
			s.log.Debug("rate window reset")
		}
	}
}
