// Package service wires moderation, admission, request building, transport
// and validation into the assistant client used by front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/legal-assistant/internal/config"
	"github.com/capitalize-ai/legal-assistant/internal/filter"
	"github.com/capitalize-ai/legal-assistant/internal/llm"
	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/internal/ratelimit"
	"github.com/capitalize-ai/legal-assistant/pkg/local"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

const tracerName = "github.com/capitalize-ai/legal-assistant/internal/service"

const (
	kindText  = "text"
	kindImage = "image"
)

var (
	ErrNoCredential = errors.New("api key is missing or malformed")
	ErrEmptyImage   = errors.New("image data is empty")
)

// Option configures an Assistant.
type Option func(*options)

type options struct {
	transport  llm.Transport
	httpClient *http.Client
	clock      func() time.Time
	log        *logger.Logger
	protocol   llm.Protocol
}

// WithTransport replaces the HTTP transport.
func WithTransport(t llm.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sets the client used by the default transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithClock replaces time.Now for the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithProtocol replaces the protocol selected by configuration.
func WithProtocol(p llm.Protocol) Option {
	return func(o *options) { o.protocol = p }
}

// Assistant is the single entry point for sending user input to the
// remote assistant. Every text passes validation, the content filter and
// the rate limiter, in that order, before any request is built.
type Assistant struct {
	cfg       *config.Config
	filter    *filter.Filter
	limiter   *ratelimit.Limiter
	scheduler *ratelimit.Scheduler
	deps      llm.Deps
	protocol  llm.Protocol
	log       *logger.Logger
	tracer    trace.Tracer
}

// New builds an assistant from configuration.
func New(cfg *config.Config, opts ...Option) (*Assistant, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Global()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.transport == nil {
		o.transport = llm.NewHTTPTransport(o.httpClient, o.log)
	}

	f, err := filter.New(cfg.Content.FilteredWords, cfg.Content.Patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile content patterns: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		MinInterval:  cfg.Limits.MinInterval,
		MaxPerPeriod: cfg.Limits.MaxPerMinute,
		MaxPerDay:    cfg.Limits.MaxPerDay,
	}, ratelimit.WithClock(o.clock))

	deps := llm.Deps{
		Builder:   llm.NewBuilder(builderConfig(cfg)),
		Transport: o.transport,
		Validator: llm.NewValidator(cfg.Limits.MaxResponseLength),
	}

	protocol := o.protocol
	if protocol == nil {
		if strings.EqualFold(cfg.Assistant.Protocol, config.ProtocolThread) {
			protocol = llm.NewThreadProtocol(deps, llm.ThreadOptions{
				PollAttempts: cfg.Assistant.PollAttempts,
				PollInterval: cfg.Assistant.PollInterval,
			}, o.log)
		} else {
			protocol = llm.NewCompletionProtocol(deps)
		}
	}

	log := o.log.Named("assistant")
	return &Assistant{
		cfg:       cfg,
		filter:    f,
		limiter:   limiter,
		scheduler: ratelimit.NewScheduler(limiter, cfg.Limits.ResetPeriod, log),
		deps:      deps,
		protocol:  protocol,
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

func builderConfig(cfg *config.Config) llm.BuilderConfig {
	return llm.BuilderConfig{
		BaseURL:      cfg.API.BaseURL,
		APIKey:       strings.TrimSpace(cfg.API.Key),
		TextModel:    cfg.API.TextModel,
		VisionModel:  cfg.API.VisionModel,
		Temperature:  cfg.API.Temperature,
		MaxTokens:    cfg.API.MaxTokens,
		TextTimeout:  cfg.API.Timeout,
		ImageTimeout: cfg.API.ImageTimeout,
		AssistantID:  cfg.Assistant.ID,
		APIVersion:   cfg.Assistant.APIVersion,
		Image: llm.ImageOptions{
			MaxDimension:         cfg.Image.MaxDimension,
			Quality:              cfg.Image.Quality,
			CompressedQuality:    cfg.Image.CompressedQuality,
			CompressionThreshold: cfg.Image.CompressionThreshold,
		},
	}
}

// Start launches the periodic rate window reset. Calling it again has no effect.
func (a *Assistant) Start(ctx context.Context) {
	a.scheduler.Start(ctx)
}

// Stop ends the rate window reset loop.
func (a *Assistant) Stop() {
	a.scheduler.Stop()
}

// Protocol returns the name of the active protocol.
func (a *Assistant) Protocol() string {
	return a.protocol.Name()
}

// Ready reports whether the client can send requests at all.
func (a *Assistant) Ready() error {
	if !a.cfg.API.HasCredential() {
		return ErrNoCredential
	}
	return nil
}

// Window returns the current admission counters.
func (a *Assistant) Window() model.RateWindow {
	return a.limiter.Window()
}

// Reset drops remote conversation state, if the protocol keeps any.
func (a *Assistant) Reset() {
	a.protocol.Reset()
}

// SendText sends user text and returns the validated reply.
func (a *Assistant) SendText(ctx context.Context, text string) (reply *model.Reply, err error) {
	ctx, span := a.tracer.Start(ctx, "assistant.SendText",
		trace.WithAttributes(attribute.String("assistant.protocol", a.protocol.Name())),
	)
	start := time.Now()
	defer func() {
		err = a.finish(span, kindText, a.protocol.Name(), start, reply, err)
	}()

	if !a.cfg.API.HasCredential() {
		return nil, model.NewError(model.KindMissingCredential, ErrNoCredential)
	}

	trimmed, err := filter.ValidateInput(text, a.cfg.Limits.MaxMessageLength)
	if err != nil {
		metrics.RecordAdmission(kindText, "invalid")
		return nil, err
	}

	if v := a.filter.Classify(trimmed); !v.Allowed {
		metrics.RecordAdmission(kindText, "filtered")
		a.log.Info("message blocked by content filter", zap.String("match", v.Match))
		return nil, &model.Error{Kind: model.KindContentFiltered, Err: fmt.Errorf("matched %q", v.Match)}
	}

	if err := a.admit(ctx, kindText); err != nil {
		return nil, err
	}

	return a.protocol.Reply(ctx, trimmed)
}

// SendImage sends an image and returns the validated reply. Images always
// use the stateless completion request. Whether they pass the rate limiter
// is controlled by limits.admit_images.
func (a *Assistant) SendImage(ctx context.Context, data []byte) (reply *model.Reply, err error) {
	ctx, span := a.tracer.Start(ctx, "assistant.SendImage",
		trace.WithAttributes(attribute.Int("image.bytes", len(data))),
	)
	start := time.Now()
	defer func() {
		err = a.finish(span, kindImage, llm.ProtocolCompletion, start, reply, err)
	}()

	if !a.cfg.API.HasCredential() {
		return nil, model.NewError(model.KindMissingCredential, ErrNoCredential)
	}
	if len(data) == 0 {
		return nil, model.NewError(model.KindImageProcessingFailure, ErrEmptyImage)
	}

	img, err := llm.CompressImage(data, builderConfig(a.cfg).Image)
	if err != nil {
		metrics.RecordAdmission(kindImage, "invalid")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("image.width", img.Width),
		attribute.Int("image.height", img.Height),
	)

	if a.cfg.Limits.AdmitImages {
		if err := a.admit(ctx, kindImage); err != nil {
			return nil, err
		}
	} else if err := ctx.Err(); err != nil {
		return nil, model.NewError(model.KindNetworkFailure, err)
	}

	desc, err := a.deps.Builder.ImageFrom(img)
	if err != nil {
		return nil, err
	}
	return llm.Complete(ctx, a.deps, desc, start, llm.ProtocolCompletion)
}

// admit consults the rate limiter. A context that is already done is
// reported without consuming a slot.
func (a *Assistant) admit(ctx context.Context, kind string) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordAdmission(kind, "cancelled")
		return model.NewError(model.KindNetworkFailure, err)
	}

	d := a.limiter.Admit()
	metrics.SetRateWindow(a.limiter.Count())
	if !d.Allowed {
		metrics.RecordAdmission(kind, string(d.Reason))
		a.log.Info("message rejected by rate limiter", zap.String("kind", kind), zap.String("reason", string(d.Reason)))
		return &model.Error{
			Kind:   model.KindRateLimited,
			Origin: model.OriginLocal,
			Err:    fmt.Errorf("local limit: %s", d.Reason),
		}
	}
	metrics.RecordAdmission(kind, "admitted")
	return nil
}

// finish classifies err and records the outcome in logs, metrics and the span.
func (a *Assistant) finish(span trace.Span, kind, protocol string, start time.Time, reply *model.Reply, err error) error {
	defer span.End()

	elapsed := time.Since(start)
	log := a.log.ForRequest(kind, protocol)
	if err == nil {
		metrics.RecordRequest(kind, protocol, "ok", elapsed.Seconds())
		span.SetAttributes(attribute.Int("reply.length", len(reply.Text)))
		log.Info("reply received", zap.Duration("elapsed", elapsed), zap.Int("length", len(reply.Text)))
		return nil
	}

	ce := model.Classify(err)
	metrics.RecordRequest(kind, protocol, string(ce.Kind), elapsed.Seconds())
	span.RecordError(ce)
	span.SetStatus(codes.Error, string(ce.Kind))
	log.Warn("request failed",
		zap.String("error_kind", string(ce.Kind)),
		zap.Int("status", ce.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.Error(ce),
	)
	return ce
}

// Describe returns the localized text for an error returned by this client.
func (a *Assistant) Describe(err error, lang local.Language) string {
	if err == nil {
		return ""
	}
	ce := model.Classify(err)
	kind := string(ce.Kind)

	var text string
	switch ce.Kind {
	case model.KindGeneral:
		msg := ce.Message
		if msg == "" {
			msg = ce.Error()
		}
		text = local.ErrorText(lang, kind, msg)
	case model.KindInvalidInput:
		text = local.ErrorText(lang, kind, a.cfg.Limits.MaxMessageLength)
	default:
		text = local.ErrorText(lang, kind)
	}

	if hint := local.Recovery(lang, kind); hint != "" {
		text += "\n" + hint
	}
	return text
}
