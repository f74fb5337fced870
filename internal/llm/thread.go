package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

// ErrRunTimeout is wrapped when a run does not finish within the poll budget.
var ErrRunTimeout = errors.New("assistant run did not complete in time")

var errRunPending = errors.New("assistant run still in progress")

// ThreadOptions controls run polling.
type ThreadOptions struct {
	PollAttempts int
	PollInterval time.Duration
}

// ThreadProtocol keeps one remote thread per process and sends every text
// as a message on it, then runs the assistant and polls for the answer.
type ThreadProtocol struct {
	Deps
	opts ThreadOptions
	log  *logger.Logger

	mu       sync.RWMutex
	threadID string
	epoch    uint64
	group    singleflight.Group
}

// NewThreadProtocol creates the stateful protocol. No thread is created
// until the first Reply.
func NewThreadProtocol(deps Deps, opts ThreadOptions, log *logger.Logger) *ThreadProtocol {
	if log == nil {
		log = logger.Global()
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 30
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &ThreadProtocol{
		Deps: deps,
		opts: opts,
		log:  log.Named("thread"),
	}
}

// Name returns the protocol name.
func (p *ThreadProtocol) Name() string {
	return ProtocolThread
}

// ThreadID returns the current remote thread id, empty before first use.
func (p *ThreadProtocol) ThreadID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.threadID
}

// Reset forgets the remote thread; the next Reply opens a new one. A
// creation still in flight does not bring the old thread back.
func (p *ThreadProtocol) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threadID = ""
	p.epoch++
}

// Reply posts text to the thread, runs the assistant and returns its answer.
func (p *ThreadProtocol) Reply(ctx context.Context, text string) (*model.Reply, error) {
	start := time.Now()

	threadID, err := p.ensureThread(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.send(ctx, threadID, text); err != nil {
		return nil, err
	}

	runID, err := p.startRun(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if err := p.waitRun(ctx, threadID, runID); err != nil {
		return nil, err
	}

	desc, err := p.Builder.ListMessages(threadID)
	if err != nil {
		return nil, err
	}
	raw, err := p.Transport.Do(ctx, desc)
	if err != nil {
		return nil, err
	}
	content, err := p.Validator.ThreadMessages(raw)
	if err != nil {
		return nil, err
	}

	return &model.Reply{
		Text:     content,
		Protocol: ProtocolThread,
		Latency:  time.Since(start),
	}, nil
}

// ensureThread returns the thread id, creating the thread at most once
// per epoch even when called concurrently. Creation runs detached from the
// caller, so one caller giving up does not fail the others; each caller
// still stops waiting when its own ctx is done.
func (p *ThreadProtocol) ensureThread(ctx context.Context) (string, error) {
	p.mu.RLock()
	id, epoch := p.threadID, p.epoch
	p.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	ch := p.group.DoChan("thread-"+strconv.FormatUint(epoch, 10), func() (any, error) {
		return p.createThread(context.WithoutCancel(ctx), epoch)
	})

	select {
	case <-ctx.Done():
		return "", model.NewError(model.KindNetworkFailure, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// createThread opens a remote thread and stores it unless Reset ran since
// epoch was read. The descriptor timeout bounds the request.
func (p *ThreadProtocol) createThread(ctx context.Context, epoch uint64) (string, error) {
	p.mu.RLock()
	id := p.threadID
	p.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	desc, err := p.Builder.CreateThread()
	if err != nil {
		return "", err
	}
	raw, err := p.Transport.Do(ctx, desc)
	if err != nil {
		return "", err
	}
	id, err = p.Validator.Thread(raw)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	current := p.epoch == epoch
	if current {
		p.threadID = id
	}
	p.mu.Unlock()

	metrics.ThreadsCreated.Inc()
	p.log.Info("thread created", zap.String("thread_id", id), zap.Bool("kept", current))
	return id, nil
}

func (p *ThreadProtocol) send(ctx context.Context, threadID, text string) error {
	desc, err := p.Builder.PostMessage(threadID, text)
	if err != nil {
		return err
	}
	if _, err := p.Transport.Do(ctx, desc); err != nil {
		var ce *model.Error
		if errors.As(err, &ce) && ce.StatusCode == http.StatusNotFound {
			p.log.Warn("thread not found, dropping it", zap.String("thread_id", threadID))
			p.Reset()
		}
		return err
	}
	return nil
}

func (p *ThreadProtocol) startRun(ctx context.Context, threadID string) (string, error) {
	desc, err := p.Builder.CreateRun(threadID)
	if err != nil {
		return "", err
	}
	raw, err := p.Transport.Do(ctx, desc)
	if err != nil {
		return "", err
	}
	runID, _, err := p.Validator.Run(raw)
	return runID, err
}

// waitRun polls the run until it completes, fails, or the budget runs out.
// This bounded poll is the only repetition in a turn.
func (p *ThreadProtocol) waitRun(ctx context.Context, threadID, runID string) error {
	desc, err := p.Builder.GetRun(threadID, runID)
	if err != nil {
		return err
	}
	if err := sleep(ctx, p.opts.PollInterval); err != nil {
		return model.NewError(model.KindNetworkFailure, err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.opts.PollInterval), uint64(p.opts.PollAttempts-1)),
		ctx,
	)

	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		raw, err := p.Transport.Do(ctx, desc)
		if err != nil {
			return backoff.Permanent(err)
		}
		_, status, err := p.Validator.Run(raw)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch status {
		case openai.RunStatusCompleted:
			return nil
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusRequiresAction:
			p.log.Warn("run ended without reply",
				zap.String("run_id", runID),
				zap.String("status", string(status)),
			)
			return backoff.Permanent(model.GeneralError("assistant run "+string(status), 0, nil))
		}
		return errRunPending
	}, b)
	metrics.RunPollAttempts.Observe(float64(attempts))

	var ce *model.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errRunPending):
		p.log.Warn("run poll budget exhausted",
			zap.String("run_id", runID),
			zap.Int("attempts", attempts),
		)
		return model.NewError(model.KindNetworkFailure, ErrRunTimeout)
	case errors.As(err, &ce):
		return err
	default:
		return model.NewError(model.KindNetworkFailure, err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
