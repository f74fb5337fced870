package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/local"
)

type fakeChat struct {
	asked   []string
	images  []string
	cleared int
	pending string
	fails   int
	err     error
}

func (f *fakeChat) Ask(_ context.Context, text string) (model.ChatMessage, error) {
	f.asked = append(f.asked, text)
	if f.err != nil && len(f.asked) <= f.fails {
		f.pending = text
		return model.ChatMessage{}, f.err
	}
	f.pending = ""
	return model.NewAssistantMessage("answer to " + text), nil
}

func (f *fakeChat) Pending() string { return f.pending }

func (f *fakeChat) AskImage(_ context.Context, data []byte, label string) (model.ChatMessage, error) {
	f.images = append(f.images, label)
	return model.NewAssistantMessage("image " + label), nil
}

func (f *fakeChat) Clear()                    { f.cleared++ }
func (f *fakeChat) Describe(err error) string { return "described: " + err.Error() }
func (f *fakeChat) Usage() string             { return "usage 1/5" }
func (f *fakeChat) Language() local.Language  { return local.En }

func runREPL(t *testing.T, c *fakeChat, input string, readFile readFileFunc) string {
	t.Helper()
	var out bytes.Buffer
	r := newREPL(c, strings.NewReader(input), &out)
	if readFile != nil {
		r.readFile = readFile
	}
	require.NoError(t, r.run(context.Background()))
	return out.String()
}

func TestREPLAsksAndPrintsReplies(t *testing.T) {
	t.Parallel()

	c := &fakeChat{}
	out := runREPL(t, c, "  what is a lease?  \n\n/usage\n/quit\nnever sent\n", nil)

	assert.Equal(t, []string{"what is a lease?"}, c.asked)
	assert.Contains(t, out, local.Greeting.Text(local.En))
	assert.Contains(t, out, "answer to what is a lease?")
	assert.Contains(t, out, "usage 1/5")
	assert.NotContains(t, out, "never sent")
}

func TestREPLDescribesErrors(t *testing.T) {
	t.Parallel()

	c := &fakeChat{err: errors.New("boom"), fails: 1}
	out := runREPL(t, c, "hello\n", nil)

	assert.Contains(t, out, "described: boom")
}

func TestREPLNewClearsSession(t *testing.T) {
	t.Parallel()

	c := &fakeChat{}
	runREPL(t, c, "/new\n", nil)

	assert.Equal(t, 1, c.cleared)
}

func TestREPLImage(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{"/tmp/contract.png": {0x89, 'P', 'N', 'G'}}
	readFile := func(path string) ([]byte, error) {
		if data, ok := files[path]; ok {
			return data, nil
		}
		return nil, os.ErrNotExist
	}

	c := &fakeChat{}
	out := runREPL(t, c, "/image /tmp/contract.png\n/image /tmp/missing.png\n", readFile)

	assert.Equal(t, []string{"contract.png"}, c.images)
	assert.Contains(t, out, "image contract.png")
	assert.Contains(t, out, local.ImageRead.Format(local.En, "/tmp/missing.png"))
}

func TestREPLStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	r := newREPL(&fakeChat{}, pr, &out)
	assert.NoError(t, r.run(ctx))
}

func TestREPLRetryResendsOnlyOnRequest(t *testing.T) {
	t.Parallel()

	c := &fakeChat{err: errors.New("timeout"), fails: 1}
	out := runREPL(t, c, "/retry\nhola\n/retry\n/retry\n", nil)

	assert.Equal(t, []string{"hola", "hola"}, c.asked)
	assert.Contains(t, out, "described: timeout")
	assert.Contains(t, out, "answer to hola")
	assert.Equal(t, 2, strings.Count(out, local.NothingToResend.Text(local.En)))
}
