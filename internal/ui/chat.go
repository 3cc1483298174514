package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/bz888/promptpad/internal/widget"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const thinking = "[::i]Bot is thinking...[-:-:-]"

// ChatPage renders the chat widget: a scrolling conversation, a loading line
// and the question box with its Send button.
type ChatPage struct {
	app        *App
	root       *tview.Flex
	transcript *tview.TextView
	loading    *tview.TextView
	input      *tview.TextArea
	send       *tview.Button
	busy       atomic.Bool
	submit     func(string)
}

func NewChatPage(app *App) *ChatPage {
	p := &ChatPage{app: app}

	p.transcript = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true).
		SetScrollable(true)
	p.transcript.SetTitle("Conversation").SetBorder(true)

	p.loading = tview.NewTextView().SetDynamicColors(true)

	p.input = tview.NewTextArea().SetPlaceholder("Type your message and press Enter (Shift+Enter for a new line)")
	p.input.SetTitle("Question").SetBorder(true)

	p.send = tview.NewButton("Send").SetSelectedFunc(func() {
		p.trigger()
	})

	inputRow := tview.NewFlex().
		AddItem(p.input, 0, 1, true).
		AddItem(p.send, 10, 0, false)

	p.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(p.transcript, 0, 1, false).
		AddItem(p.loading, 1, 0, false).
		AddItem(inputRow, 6, 0, true)

	p.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter && event.Modifiers()&tcell.ModShift == 0 {
			p.trigger()
			return nil
		}
		return event
	})
	p.transcript.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			app.focus(p.input)
		}
		return event
	})
	return p
}

// Bind wires the page's trigger to the widget.
func (p *ChatPage) Bind(ctx context.Context, chat *widget.Chat) {
	p.submit = func(text string) {
		go chat.Submit(ctx, text)
	}
}

func (p *ChatPage) Root() tview.Primitive {
	return p.root
}

func (p *ChatPage) Input() tview.Primitive {
	return p.input
}

// runs on the event loop
func (p *ChatPage) trigger() {
	if p.busy.Load() || p.submit == nil {
		return
	}
	text := p.input.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	// Held until the widget's deferred SetLoading(false); key events queued
	// behind this one must not send again.
	p.busy.Store(true)
	p.send.SetDisabled(true)
	p.submit(text)
}

func (p *ChatPage) AppendEntry(e widget.Entry) {
	p.app.update(func() {
		fmt.Fprintf(p.transcript, `["%s"]%s[""]`, e.ID, formatEntry(e))
		p.transcript.ScrollToEnd()
	})
}

func (p *ChatPage) ClearInput() {
	p.app.update(func() {
		p.input.SetText("", false)
	})
}

func (p *ChatPage) SetLoading(loading bool) {
	p.busy.Store(loading)
	p.app.update(func() {
		p.send.SetDisabled(loading)
		if loading {
			p.loading.SetText(thinking)
			p.transcript.ScrollToEnd()
			return
		}
		p.loading.Clear()
	})
}

func (p *ChatPage) FocusInput() {
	p.app.update(func() {
		p.app.focus(p.input)
	})
}

func formatEntry(e widget.Entry) string {
	text := tview.Escape(e.Text)
	switch e.Kind {
	case widget.EntryUser:
		return fmt.Sprintf("[red::b]You:[-::-]\n%s\n\n", text)
	case widget.EntryError:
		return fmt.Sprintf("[red]%s[-]\n\n", text)
	default:
		return fmt.Sprintf("[green::b]Bot:[-::-]\n%s\n\n", text)
	}
}
