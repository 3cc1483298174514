package ui

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bz888/promptpad/internal/api"
	"github.com/bz888/promptpad/internal/widget"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageIdle    = "idle"
	pageLoading = "loading"
	pageResult  = "result"
	pageError   = "error"
)

var (
	copyDefault = tcell.StyleDefault.Background(tcell.NewHexColor(0x00796b)).Foreground(tcell.ColorWhite)
	copySuccess = tcell.StyleDefault.Background(tcell.NewHexColor(0x4caf50)).Foreground(tcell.ColorWhite)
)

// CompletionPage renders the completion widget: the input form on top and
// an output area that shows exactly one of idle, loading, result or error.
type CompletionPage struct {
	app         *App
	root        *tview.Flex
	form        *tview.Form
	text        *tview.TextArea
	maxTokens   *tview.InputField
	temperature *tview.InputField
	topK        *tview.InputField
	complete    *tview.Button
	output      *tview.Pages
	resultView  *tview.TextView
	errorView   *tview.TextView
	copyButton  *tview.Button
	busy        atomic.Bool
	submit      func(widget.Input)
	copyText    func()
}

func NewCompletionPage(app *App) *CompletionPage {
	p := &CompletionPage{app: app}

	p.text = tview.NewTextArea().
		SetLabel("Text").
		SetSize(6, 0).
		SetPlaceholder("Enter the beginning of a text (Ctrl+Enter to complete)")

	p.maxTokens = numberField("Max Tokens", strconv.Itoa(api.DefaultMaxTokens), tview.InputFieldInteger, widget.ClampMaxTokens)
	p.temperature = numberField("Temperature", strconv.FormatFloat(api.DefaultTemperature, 'g', -1, 64), tview.InputFieldFloat, nil)
	p.topK = numberField("Top K", strconv.Itoa(api.DefaultTopK), tview.InputFieldInteger, widget.ClampTopK)

	p.form = tview.NewForm().
		AddFormItem(p.text).
		AddFormItem(p.maxTokens).
		AddFormItem(p.temperature).
		AddFormItem(p.topK).
		AddButton("Complete", func() {
			p.trigger()
		})
	p.form.SetTitle("Text Completion").SetBorder(true)
	p.complete = p.form.GetButton(0)

	p.resultView = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	p.errorView = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetTextColor(tcell.ColorRed)
	p.copyButton = tview.NewButton(widget.CopyLabel).SetSelectedFunc(func() {
		p.copy()
	})
	p.copyButton.SetStyle(copyDefault)

	result := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(p.resultView, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(p.copyButton, 18, 0, false).
			AddItem(nil, 0, 1, false), 1, 0, false)

	p.output = tview.NewPages().
		AddPage(pageIdle, tview.NewTextView().SetText("The completion will appear here."), true, true).
		AddPage(pageLoading, tview.NewTextView().SetDynamicColors(true).SetText("[::i]Generating completion...[-:-:-]"), true, false).
		AddPage(pageResult, result, true, false).
		AddPage(pageError, p.errorView, true, false)
	p.output.SetTitle("Result").SetBorder(true)

	p.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(p.form, 0, 3, true).
		AddItem(p.output, 0, 2, false)

	p.text.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if isCtrlEnter(event) {
			p.trigger()
			return nil
		}
		return event
	})
	p.root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlY {
			if name, _ := p.output.GetFrontPage(); name == pageResult {
				p.copy()
				return nil
			}
		}
		return event
	})
	return p
}

// numberField builds an input field that applies clamp when the user leaves
// it, the terminal counterpart of a change event.
func numberField(label, value string, accept func(string, rune) bool, clamp func(string) string) *tview.InputField {
	field := tview.NewInputField().
		SetLabel(label).
		SetText(value).
		SetFieldWidth(8).
		SetAcceptanceFunc(accept)
	if clamp != nil {
		field.SetDoneFunc(func(tcell.Key) {
			field.SetText(clamp(field.GetText()))
		})
	}
	return field
}

// Terminals that cannot report Ctrl+Enter send Ctrl+J (line feed) instead.
func isCtrlEnter(event *tcell.EventKey) bool {
	if event.Key() == tcell.KeyEnter && event.Modifiers()&tcell.ModCtrl != 0 {
		return true
	}
	return event.Key() == tcell.KeyCtrlJ
}

// Bind wires the page's controls to the widget.
func (p *CompletionPage) Bind(ctx context.Context, completion *widget.Completion) {
	p.submit = func(in widget.Input) {
		go completion.Submit(ctx, in)
	}
	p.copyText = func() {
		go completion.Copy()
	}
}

func (p *CompletionPage) Root() tview.Primitive {
	return p.root
}

func (p *CompletionPage) Input() tview.Primitive {
	return p.text
}

// runs on the event loop
func (p *CompletionPage) trigger() {
	if p.busy.Load() || p.submit == nil {
		return
	}
	// Leaving a field by mouse does not fire its done func, so clamp here too.
	p.maxTokens.SetText(widget.ClampMaxTokens(p.maxTokens.GetText()))
	p.topK.SetText(widget.ClampTopK(p.topK.GetText()))

	// Blank text never reaches loading, so only a real request holds busy
	// until the widget's deferred SetLoading(false).
	if strings.TrimSpace(p.text.GetText()) != "" {
		p.busy.Store(true)
		p.complete.SetDisabled(true)
	}
	p.submit(widget.Input{
		Text:        p.text.GetText(),
		MaxTokens:   p.maxTokens.GetText(),
		Temperature: p.temperature.GetText(),
		TopK:        p.topK.GetText(),
	})
}

// runs on the event loop
func (p *CompletionPage) copy() {
	if p.copyText != nil {
		p.copyText()
	}
}

func (p *CompletionPage) SetLoading(loading bool) {
	p.busy.Store(loading)
	p.app.update(func() {
		p.complete.SetDisabled(loading)
		if loading {
			p.output.SwitchToPage(pageLoading)
			return
		}
		if name, _ := p.output.GetFrontPage(); name == pageLoading {
			p.output.SwitchToPage(pageIdle)
		}
	})
}

func (p *CompletionPage) ShowResult(original, completion string) {
	p.app.update(func() {
		p.resultView.SetText(tview.Escape(original) + "[yellow]" + tview.Escape(completion) + "[-]")
		p.resultView.ScrollToBeginning()
		p.output.SwitchToPage(pageResult)
	})
}

func (p *CompletionPage) ShowError(message string) {
	p.app.update(func() {
		p.errorView.SetText(tview.Escape(message))
		p.output.SwitchToPage(pageError)
	})
}

func (p *CompletionPage) SetCopyFeedback(label string, copied bool) {
	p.app.update(func() {
		p.copyButton.SetLabel(label)
		if copied {
			p.copyButton.SetStyle(copySuccess)
			return
		}
		p.copyButton.SetStyle(copyDefault)
	})
}
