package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

const tracerName = "github.com/capitalize-ai/legal-assistant/internal/llm"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Transport executes descriptors. Implementations return the body of a
// successful response or a *model.Error.
type Transport interface {
	Do(ctx context.Context, d *Descriptor) ([]byte, error)
}

// HTTPTransport sends descriptors over net/http.
type HTTPTransport struct {
	client *http.Client
	log    *logger.Logger
	tracer trace.Tracer
}

// NewHTTPTransport creates a transport. A nil client uses a fresh
// http.Client; per-request timeouts come from the descriptor.
func NewHTTPTransport(client *http.Client, log *logger.Logger) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.Global()
	}
	return &HTTPTransport{
		client: client,
		log:    log.Named("transport"),
		tracer: otel.Tracer(tracerName),
	}
}

// Do sends the request and classifies the outcome.
func (t *HTTPTransport) Do(ctx context.Context, d *Descriptor) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "llm.http "+d.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", d.Method),
			attribute.String("http.url", d.Endpoint),
		),
	)
	defer span.End()

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.Endpoint, bytes.NewReader(d.Body))
	if err != nil {
		return nil, t.fail(span, model.GeneralError("failed to create request", 0, err))
	}
	req.Header = d.Header.Clone()

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Warn("request failed",
			zap.String("method", d.Method),
			zap.String("endpoint", d.Endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		metrics.RecordHTTPResponse(d.Method, "error")
		return nil, t.fail(span, model.NewError(model.KindNetworkFailure, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordHTTPResponse(d.Method, "error")
		return nil, t.fail(span, model.NewError(model.KindNetworkFailure, fmt.Errorf("failed to read response: %w", err)))
	}

	status := strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	metrics.RecordHTTPResponse(d.Method, status)
	t.log.Debug("response received",
		zap.String("method", d.Method),
		zap.String("endpoint", d.Endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, t.fail(span, StatusError(resp.StatusCode, body))
}

func (t *HTTPTransport) fail(span trace.Span, err *model.Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(err.Kind))
	return err
}

// StatusError classifies a non-2xx response.
func StatusError(code int, body []byte) *model.Error {
	msg := serverMessage(body)
	switch {
	case code == http.StatusUnauthorized:
		return &model.Error{Kind: model.KindMissingCredential, StatusCode: code, Err: fmt.Errorf("unauthorized: %s", msg)}
	case code == http.StatusTooManyRequests:
		return &model.Error{Kind: model.KindRateLimited, StatusCode: code, Origin: model.OriginServer, Err: fmt.Errorf("rate limited: %s", msg)}
	case code >= 500:
		return model.GeneralError("server error", code, fmt.Errorf("server: %s", msg))
	default:
		return &model.Error{Kind: model.KindNetworkFailure, StatusCode: code, Err: fmt.Errorf("unexpected status: %s", msg)}
	}
}

func serverMessage(body []byte) string {
	var resp openai.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
