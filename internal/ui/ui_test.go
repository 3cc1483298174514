package ui

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/widget"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp drives app on a simulation screen and stops it when the test ends.
func runApp(t *testing.T, app *App, page, focus tview.Primitive) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	app.app.SetScreen(screen)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(page, focus)
	}()
	app.sync(func() {})

	t.Cleanup(func() {
		app.Stop()
		assert.NoError(t, <-done)
	})
	return screen
}

func frontPage(app *App, p *CompletionPage) string {
	var name string
	app.sync(func() {
		name, _ = p.output.GetFrontPage()
	})
	return name
}

type blockingChatter struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingChatter) Chat(_ context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	b.calls.Add(1)
	<-b.release
	return api.ChatResponse{Reply: "echo " + req.Message}, nil
}

type stubCompleter struct {
	resp api.CompletionResponse
	err  error
}

func (s stubCompleter) Complete(context.Context, api.CompletionRequest) (api.CompletionResponse, error) {
	return s.resp, s.err
}

func completionInput(text string) widget.Input {
	return widget.Input{Text: text, MaxTokens: "50", Temperature: "0.8", TopK: "50"}
}

func TestFormatEntry(t *testing.T) {
	assert.Equal(t, "[red::b]You:[-::-]\nhello\n\n", formatEntry(widget.Entry{Kind: widget.EntryUser, Text: "hello"}))
	assert.Equal(t, "[green::b]Bot:[-::-]\nhi\n\n", formatEntry(widget.Entry{Kind: widget.EntryBot, Text: "hi"}))
	assert.Equal(t, "[red]Error: rate limited[-]\n\n", formatEntry(widget.Entry{Kind: widget.EntryError, Text: "Error: rate limited"}))
}

func TestFormatEntryEscapesTags(t *testing.T) {
	out := formatEntry(widget.Entry{Kind: widget.EntryBot, Text: "[red]not a colour[-]"})
	assert.NotContains(t, out, "\n[red]not")
}

func TestIsCtrlEnter(t *testing.T) {
	assert.True(t, isCtrlEnter(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModCtrl)))
	assert.True(t, isCtrlEnter(tcell.NewEventKey(tcell.KeyCtrlJ, 0, tcell.ModCtrl)))
	assert.False(t, isCtrlEnter(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}

func TestCompletionTriggerClampsBeforeSubmit(t *testing.T) {
	p := NewCompletionPage(NewApp(false))
	var got []widget.Input
	p.submit = func(in widget.Input) { got = append(got, in) }

	p.text.SetText("Once upon a time", true)
	p.maxTokens.SetText("500")
	p.topK.SetText("0")
	p.trigger()

	require.Len(t, got, 1)
	assert.Equal(t, "Once upon a time", got[0].Text)
	assert.Equal(t, "200", got[0].MaxTokens)
	assert.Equal(t, "1", got[0].TopK)
	assert.Equal(t, "0.8", got[0].Temperature)
	assert.Equal(t, "200", p.maxTokens.GetText())
}

func TestCompletionTriggerClampsOverflow(t *testing.T) {
	p := NewCompletionPage(NewApp(false))
	var got []widget.Input
	p.submit = func(in widget.Input) { got = append(got, in) }

	p.text.SetText("Once", true)
	p.maxTokens.SetText("99999999999999999999")
	p.topK.SetText("99999999999999999999")
	p.trigger()

	require.Len(t, got, 1)
	assert.Equal(t, "200", got[0].MaxTokens)
	assert.Equal(t, "100", got[0].TopK)
}

func TestTriggerIgnoredWhileBusy(t *testing.T) {
	p := NewChatPage(NewApp(false))
	calls := 0
	p.submit = func(string) { calls++ }
	p.input.SetText("hello", true)

	p.trigger()
	p.trigger()
	assert.Equal(t, 1, calls)
	assert.True(t, p.busy.Load())

	p.busy.Store(false)
	p.trigger()
	assert.Equal(t, 2, calls)
}

func TestBlankChatTriggerDoesNotHoldBusy(t *testing.T) {
	p := NewChatPage(NewApp(false))
	calls := 0
	p.submit = func(string) { calls++ }
	p.input.SetText("   ", true)

	p.trigger()

	assert.Zero(t, calls)
	assert.False(t, p.busy.Load())
}

func TestCompletionTriggerHoldsBusyUntilLoadingEnds(t *testing.T) {
	p := NewCompletionPage(NewApp(false))
	calls := 0
	p.submit = func(widget.Input) { calls++ }

	p.trigger()
	assert.False(t, p.busy.Load(), "blank text shows an error without loading")

	p.text.SetText("Once", true)
	p.trigger()
	p.trigger()
	assert.Equal(t, 2, calls)
	assert.True(t, p.busy.Load())
}

func TestChatDoubleEnterSendsOnce(t *testing.T) {
	app := NewApp(false)
	page := NewChatPage(app)
	backend := &blockingChatter{release: make(chan struct{})}
	chat := widget.NewChat(backend, page)
	page.Bind(context.Background(), chat)
	page.input.SetText("hello", true)

	screen := runApp(t, app, page.Root(), page.Input())
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)

	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return backend.calls.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)

	close(backend.release)
	require.Eventually(t, func() bool {
		return len(chat.Transcript()) == 2 && !page.busy.Load()
	}, time.Second, 5*time.Millisecond)

	entries := chat.Transcript()
	assert.Equal(t, "hello", entries[0].Text)
	assert.Equal(t, "echo hello", entries[1].Text)
}

func TestCompletionErrorStaysInFrontAfterLoading(t *testing.T) {
	app := NewApp(false)
	page := NewCompletionPage(app)
	completion := widget.NewCompletion(stubCompleter{err: &api.StatusError{StatusCode: 400, Message: "Empty text"}}, page, nil)
	runApp(t, app, page.Root(), page.Input())
	assert.Equal(t, pageIdle, frontPage(app, page))

	completion.Submit(context.Background(), completionInput("Once"))

	assert.Equal(t, pageError, frontPage(app, page))
	var message string
	app.sync(func() { message = page.errorView.GetText(true) })
	assert.Equal(t, "Empty text", message)
	assert.False(t, page.busy.Load())
}

func TestCompletionResultStaysInFrontAfterLoading(t *testing.T) {
	app := NewApp(false)
	page := NewCompletionPage(app)
	backend := stubCompleter{resp: api.CompletionResponse{OriginalText: "Once", Completion: " upon a time"}}
	completion := widget.NewCompletion(backend, page, nil)
	runApp(t, app, page.Root(), page.Input())

	completion.Submit(context.Background(), completionInput("Once"))

	assert.Equal(t, pageResult, frontPage(app, page))
	var shown string
	app.sync(func() { shown = page.resultView.GetText(true) })
	assert.Equal(t, "Once upon a time", shown)
}

func TestCompletionEmptyInputShowsErrorPage(t *testing.T) {
	app := NewApp(false)
	page := NewCompletionPage(app)
	completion := widget.NewCompletion(stubCompleter{}, page, nil)
	runApp(t, app, page.Root(), page.Input())

	completion.Submit(context.Background(), completionInput("  "))

	assert.Equal(t, pageError, frontPage(app, page))
}

func TestTerminalWriterWritesOnEventLoop(t *testing.T) {
	app := NewApp(false)
	page := NewCompletionPage(app)
	runApp(t, app, page.Root(), page.Input())

	var out bytes.Buffer
	clip := widget.TerminalClipboard{Out: app.TerminalWriter(&out)}
	require.NoError(t, clip.WriteText("Once upon a time"))

	assert.Contains(t, out.String(), base64.StdEncoding.EncodeToString([]byte("Once upon a time")))
}
