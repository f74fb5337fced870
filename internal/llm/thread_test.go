package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
)

// fakeAssistantAPI serves the thread endpoints. Runs finish after
// completeAfter polls with finalStatus.
type fakeAssistantAPI struct {
	completeAfter int32
	finalStatus   string
	createDelay   time.Duration

	threads  atomic.Int32
	messages atomic.Int32
	runs     atomic.Int32
	polls    atomic.Int32

	mu      sync.Mutex
	posted  []string
	headers []string
}

func (f *fakeAssistantAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Get("OpenAI-Beta"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := strings.TrimPrefix(r.URL.Path, "/v1")
	switch {
	case r.Method == http.MethodPost && path == "/threads":
		time.Sleep(f.createDelay)
		n := f.threads.Add(1)
		fmt.Fprintf(w, `{"id":"thread_%d","object":"thread","created_at":1}`, n)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/messages"):
		f.messages.Add(1)
		f.mu.Lock()
		f.posted = append(f.posted, path)
		f.mu.Unlock()
		fmt.Fprint(w, `{"id":"msg_u","object":"thread.message","role":"user","content":[]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/runs"):
		f.runs.Add(1)
		fmt.Fprint(w, `{"id":"run_1","object":"thread.run","status":"queued"}`)
	case r.Method == http.MethodGet && strings.Contains(path, "/runs/"):
		status := "in_progress"
		if f.polls.Add(1) >= f.completeAfter {
			status = f.finalStatus
		}
		fmt.Fprintf(w, `{"id":"run_1","object":"thread.run","status":%q}`, status)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/messages"):
		fmt.Fprint(w, `{"object":"list","data":[
			{"id":"msg_a","role":"assistant","content":[{"type":"text","text":{"value":" Respuesta del asistente ","annotations":[]}}]},
			{"id":"msg_u","role":"user","content":[{"type":"text","text":{"value":"pregunta","annotations":[]}}]}
		]}`)
	default:
		http.NotFound(w, r)
	}
}

func newThreadProtocol(t *testing.T, api http.Handler, attempts int) *ThreadProtocol {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	deps := Deps{
		Builder:   NewBuilder(testBuilderConfig(srv.URL + "/v1")),
		Transport: NewHTTPTransport(srv.Client(), logger.Nop()),
		Validator: NewValidator(5000),
	}
	return NewThreadProtocol(deps, ThreadOptions{PollAttempts: attempts, PollInterval: time.Millisecond}, logger.Nop())
}

func TestThreadProtocolReply(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 3, finalStatus: "completed"}
	p := newThreadProtocol(t, api, 30)

	reply, err := p.Reply(context.Background(), "¿Qué es un contrato?")
	require.NoError(t, err)
	assert.Equal(t, "Respuesta del asistente", reply.Text)
	assert.Equal(t, ProtocolThread, reply.Protocol)
	assert.Equal(t, "thread_1", p.ThreadID())
	assert.EqualValues(t, 3, api.polls.Load())

	_, err = p.Reply(context.Background(), "otra pregunta")
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.threads.Load(), "the thread is reused")
	assert.EqualValues(t, 2, api.messages.Load())

	api.mu.Lock()
	defer api.mu.Unlock()
	for _, h := range api.headers {
		assert.Equal(t, "assistants=v2", h)
	}
}

func TestThreadProtocolCreatesOneThreadConcurrently(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1, finalStatus: "completed", createDelay: 50 * time.Millisecond}
	p := newThreadProtocol(t, api, 30)

	var wg conc.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		i := i
		wg.Go(func() {
			id, err := p.ensureThread(context.Background())
			assert.NoError(t, err)
			ids[i] = id
		})
	}
	wg.Wait()

	assert.EqualValues(t, 1, api.threads.Load())
	for _, id := range ids {
		assert.Equal(t, "thread_1", id)
	}
}

func TestThreadProtocolPollExhaustion(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1000, finalStatus: "completed"}
	p := newThreadProtocol(t, api, 5)

	_, err := p.Reply(context.Background(), "hola")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunTimeout)
	assert.Equal(t, model.KindNetworkFailure, model.KindOf(err))
	assert.EqualValues(t, 5, api.polls.Load())
}

func TestThreadProtocolFailedRun(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 2, finalStatus: "failed"}
	p := newThreadProtocol(t, api, 30)

	_, err := p.Reply(context.Background(), "hola")
	require.Error(t, err)
	assert.Equal(t, model.KindGeneral, model.KindOf(err))
	assert.Contains(t, err.Error(), "failed")
	assert.EqualValues(t, 2, api.polls.Load())
}

func TestThreadProtocolReset(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1, finalStatus: "completed"}
	p := newThreadProtocol(t, api, 30)

	_, err := p.Reply(context.Background(), "uno")
	require.NoError(t, err)
	p.Reset()
	assert.Empty(t, p.ThreadID())

	_, err = p.Reply(context.Background(), "dos")
	require.NoError(t, err)
	assert.Equal(t, "thread_2", p.ThreadID())
}

func TestThreadProtocolCancelledWhilePolling(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1000, finalStatus: "completed"}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	deps := Deps{
		Builder:   NewBuilder(testBuilderConfig(srv.URL + "/v1")),
		Transport: NewHTTPTransport(srv.Client(), logger.Nop()),
		Validator: NewValidator(5000),
	}
	p := NewThreadProtocol(deps, ThreadOptions{PollAttempts: 30, PollInterval: time.Hour}, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Reply(ctx, "hola")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, model.KindNetworkFailure, model.KindOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestThreadProtocolDropsMissingThread(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1, finalStatus: "completed"}
	mux := http.NewServeMux()
	gone := atomic.Bool{}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if gone.Load() && r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		api.ServeHTTP(w, r)
	})
	p := newThreadProtocol(t, mux, 30)

	_, err := p.Reply(context.Background(), "uno")
	require.NoError(t, err)

	gone.Store(true)
	_, err = p.Reply(context.Background(), "dos")
	require.Error(t, err)
	assert.Empty(t, p.ThreadID())
}

func TestCompletionProtocol(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write(completionBody(t, "Un contrato es un acuerdo entre partes."))
	}))
	defer srv.Close()

	p := NewCompletionProtocol(Deps{
		Builder:   NewBuilder(testBuilderConfig(srv.URL + "/v1")),
		Transport: NewHTTPTransport(srv.Client(), logger.Nop()),
		Validator: NewValidator(5000),
	})

	reply, err := p.Reply(context.Background(), "¿Qué es un contrato?")
	require.NoError(t, err)
	assert.Equal(t, "Un contrato es un acuerdo entre partes.", reply.Text)
	assert.Equal(t, "gpt-3.5-turbo", reply.Model)
	assert.Equal(t, ProtocolCompletion, reply.Protocol)
}

func TestThreadCreationSurvivesCancelledFirstCaller(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1, finalStatus: "completed", createDelay: 150 * time.Millisecond}
	p := newThreadProtocol(t, api, 30)

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.ensureThread(first)
		firstErr <- err
	}()

	// Let the first caller start the creation, then join it and give up.
	time.Sleep(30 * time.Millisecond)
	second := make(chan string, 1)
	go func() {
		id, err := p.ensureThread(context.Background())
		assert.NoError(t, err)
		second <- id
	}()
	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.KindNetworkFailure, model.KindOf(err))

	assert.Equal(t, "thread_1", <-second)
	assert.Equal(t, "thread_1", p.ThreadID())
	assert.EqualValues(t, 1, api.threads.Load())
}

func TestThreadResetDuringCreationIsKept(t *testing.T) {
	t.Parallel()

	api := &fakeAssistantAPI{completeAfter: 1, finalStatus: "completed", createDelay: 100 * time.Millisecond}
	p := newThreadProtocol(t, api, 30)

	done := make(chan string, 1)
	go func() {
		id, err := p.ensureThread(context.Background())
		assert.NoError(t, err)
		done <- id
	}()

	time.Sleep(30 * time.Millisecond)
	p.Reset()

	assert.Equal(t, "thread_1", <-done)
	assert.Empty(t, p.ThreadID(), "a reset during creation wins")

	id, err := p.ensureThread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread_2", id)
}
