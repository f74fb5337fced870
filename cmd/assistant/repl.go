package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/local"
)

// chat is the part of service.Session the loop needs.
type chat interface {
	Ask(ctx context.Context, text string) (model.ChatMessage, error)
	AskImage(ctx context.Context, data []byte, label string) (model.ChatMessage, error)
	Pending() string
	Clear()
	Describe(err error) string
	Usage() string
	Language() local.Language
}

type readFileFunc func(path string) ([]byte, error)

// repl reads one line at a time from in and writes replies to out until
// /quit, EOF or ctx is done.
type repl struct {
	chat     chat
	in       io.Reader
	out      io.Writer
	readFile readFileFunc
}

func newREPL(c chat, in io.Reader, out io.Writer) *repl {
	return &repl{chat: c, in: in, out: out, readFile: os.ReadFile}
}

func (r *repl) run(ctx context.Context) error {
	lang := r.chat.Language()
	fmt.Fprintln(r.out, local.Greeting.Text(lang))
	fmt.Fprintln(r.out, local.Help.Text(lang))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(r.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handle runs one command or question and reports whether to stop.
func (r *repl) handle(ctx context.Context, line string) bool {
	lang := r.chat.Language()
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, local.Help.Text(lang))
	case "/new":
		r.chat.Clear()
		fmt.Fprintln(r.out, local.Greeting.Text(lang))
	case "/usage":
		fmt.Fprintln(r.out, r.chat.Usage())
	case "/retry":
		text := r.chat.Pending()
		if text == "" {
			fmt.Fprintln(r.out, local.NothingToResend.Text(lang))
			return false
		}
		fmt.Fprintln(r.out, local.Thinking.Text(lang))
		r.print(r.chat.Ask(ctx, text))
	case "/image":
		path := strings.TrimSpace(arg)
		data, err := r.readFile(path)
		if err != nil {
			fmt.Fprintln(r.out, local.ImageRead.Format(lang, path))
			return false
		}
		fmt.Fprintln(r.out, local.Thinking.Text(lang))
		r.print(r.chat.AskImage(ctx, data, filepath.Base(path)))
	default:
		fmt.Fprintln(r.out, local.Thinking.Text(lang))
		r.print(r.chat.Ask(ctx, line))
	}
	return false
}

func (r *repl) print(msg model.ChatMessage, err error) {
	if err != nil {
		fmt.Fprintln(r.out, r.chat.Describe(err))
		return
	}
	fmt.Fprintln(r.out, msg.Text)
}
