package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/logger"
)

const copyFeedback = 2 * time.Second

// Completer is the backend half of the completion widget.
type Completer interface {
	Complete(ctx context.Context, req api.CompletionRequest) (api.CompletionResponse, error)
}

// CompletionView is what the completion widget drives. Implementations must
// be safe to call from any goroutine.
type CompletionView interface {
	// SetLoading shows or hides the loading indicator. Showing it also hides
	// the result and error regions and disables the trigger; hiding it
	// re-enables the trigger and leaves the other regions alone.
	SetLoading(loading bool)
	ShowResult(original, completion string)
	ShowError(message string)
	// SetCopyFeedback switches the copy control between its normal and
	// "Copied!" look.
	SetCopyFeedback(label string, copied bool)
}

// Input holds the raw form values at trigger time.
type Input struct {
	Text        string
	MaxTokens   string
	Temperature string
	TopK        string
}

type Completion struct {
	backend   Completer
	view      CompletionView
	clipboard ClipboardWriter
	afterFunc AfterFunc
	logger    *logger.Logger

	mu         sync.Mutex
	state      State
	original   string
	completion string
}

type CompletionOption func(*Completion)

func WithCompletionAfterFunc(f AfterFunc) CompletionOption {
	return func(c *Completion) {
		c.afterFunc = f
	}
}

func NewCompletion(backend Completer, view CompletionView, clip ClipboardWriter, opts ...CompletionOption) *Completion {
	c := &Completion{
		backend:   backend,
		view:      view,
		clipboard: clip,
		afterFunc: realAfterFunc,
		logger:    logger.NewLogger("completion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Completion) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one completion attempt. It blocks until the backend answers,
// so callers on a UI event loop should run it on its own goroutine.
func (c *Completion) Submit(ctx context.Context, in Input) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		c.showError(MsgEmptyInput)
		return
	}

	req := buildCompletionRequest(text, in)

	c.setState(StateLoading)
	c.view.SetLoading(true)
	defer c.view.SetLoading(false)

	c.logger.Infof("Completing %d chars (max_tokens=%d temperature=%g top_k=%d)", len(text), req.MaxTokens, req.Temperature, req.TopK)
	resp, err := c.backend.Complete(ctx, req)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn("Completion rejected: ", statusErr)
			msg := statusErr.Message
			if msg == "" {
				msg = MsgUnknownError
			}
			c.showError(msg)
			return
		}
		c.logger.Error("Completion failed: ", err)
		c.showError(MsgUnreachable)
		return
	}

	if strings.TrimSpace(resp.Completion) == "" {
		c.showError(MsgEmptyCompletion)
		return
	}
	c.showResult(resp.OriginalText, resp.Completion)
}

// Copy puts the displayed original text plus completion on the clipboard and
// flashes the copy control for two seconds.
func (c *Completion) Copy() {
	c.mu.Lock()
	full := c.original + c.completion
	c.mu.Unlock()

	if err := c.clipboard.WriteText(full); err != nil {
		c.logger.Error("Failed to copy text: ", err)
		return
	}

	c.view.SetCopyFeedback(CopiedLabel, true)
	c.afterFunc(copyFeedback, func() {
		c.view.SetCopyFeedback(CopyLabel, false)
	})
}

func (c *Completion) showError(msg string) {
	c.setState(StateError)
	c.view.ShowError(msg)
}

func (c *Completion) showResult(original, completion string) {
	c.mu.Lock()
	c.state = StateResult
	c.original = original
	c.completion = completion
	c.mu.Unlock()
	c.view.ShowResult(original, completion)
}

func (c *Completion) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
