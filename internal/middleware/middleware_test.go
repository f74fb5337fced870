package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/capitalize-ai/legal-assistant/pkg/logger"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

func get(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitPerIP(t *testing.T) {
	t.Parallel()

	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, get(h, "/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, get(h, "/", "10.0.0.1:1001").Code)

	rec := get(h, "/", "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded","retry_after":60}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, get(h, "/", "10.0.0.2:1000").Code)
}

func TestLoggingCountsByRoute(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(Logging(logger.Nop()))
	r.Get("/turns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := metrics.OpsRequestsTotal.WithLabelValues("/turns/{id}", "202")
	before := testutil.ToFloat64(counter)

	assert.Equal(t, http.StatusAccepted, get(r, "/turns/1", "127.0.0.1:1").Code)
	assert.Equal(t, http.StatusAccepted, get(r, "/turns/2", "127.0.0.1:1").Code)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
