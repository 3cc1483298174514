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

const welcomeDelay = 500 * time.Millisecond

// Chatter is the backend half of the chat widget.
type Chatter interface {
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
}

// ChatView is what the chat widget drives. Implementations must be safe to
// call from any goroutine and scroll to the newest entry after AppendEntry
// and whenever loading is shown.
type ChatView interface {
	AppendEntry(e Entry)
	ClearInput()
	// SetLoading toggles the loading indicator and disables the trigger
	// while it is shown.
	SetLoading(loading bool)
	FocusInput()
}

type Chat struct {
	backend    Chatter
	view       ChatView
	afterFunc  AfterFunc
	transcript Transcript
	logger     *logger.Logger
	welcome    sync.Once

	mu    sync.Mutex
	state State
}

type ChatOption func(*Chat)

func WithChatAfterFunc(f AfterFunc) ChatOption {
	return func(c *Chat) {
		c.afterFunc = f
	}
}

func NewChat(backend Chatter, view ChatView, opts ...ChatOption) *Chat {
	c := &Chat{
		backend:   backend,
		view:      view,
		afterFunc: realAfterFunc,
		logger:    logger.NewLogger("chat"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start schedules the welcome entry. Further calls do nothing.
func (c *Chat) Start() {
	c.welcome.Do(func() {
		c.afterFunc(welcomeDelay, func() {
			c.append(EntryBot, MsgWelcome)
		})
	})
}

func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Chat) Transcript() []Entry {
	return c.transcript.Entries()
}

// Submit sends one message. Blank input is ignored without feedback. It
// blocks until the backend answers.
func (c *Chat) Submit(ctx context.Context, input string) {
	message := strings.TrimSpace(input)
	if message == "" {
		return
	}

	c.append(EntryUser, message)
	c.view.ClearInput()

	c.setState(StateLoading)
	c.view.SetLoading(true)
	defer func() {
		c.view.SetLoading(false)
		c.view.FocusInput()
	}()

	c.logger.Info("Input request: ", message)
	resp, err := c.backend.Chat(ctx, api.ChatRequest{Message: message})
	if err != nil {
		c.setState(StateError)
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn("Chat rejected: ", statusErr)
			msg := statusErr.Message
			if msg == "" {
				msg = MsgUnknownError
			}
			c.append(EntryError, "Error: "+msg)
			return
		}
		c.logger.Error("Chat failed: ", err)
		c.append(EntryError, "Error: "+MsgUnreachable)
		return
	}

	c.setState(StateResult)
	reply := strings.TrimSpace(resp.Reply)
	if reply == "" {
		c.append(EntryBot, MsgNoReply)
		return
	}
	c.append(EntryBot, reply)
}

func (c *Chat) append(kind EntryKind, text string) {
	c.view.AppendEntry(c.transcript.Append(kind, text))
}

func (c *Chat) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
