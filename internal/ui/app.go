package ui

import (
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App is the terminal shell shared by both pages: the tview application,
// the page layout and the optional debug console.
type App struct {
	app          *tview.Application
	mainFlex     *tview.Flex
	debugConsole *tview.TextView
	debugVisible bool
}

func NewApp(dev bool) *App {
	a := &App{app: tview.NewApplication()}
	a.app.EnablePaste(true)
	a.app.EnableMouse(true)
	a.debugConsole = a.initDebugConsole()
	a.debugVisible = dev
	return a
}

func (a *App) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			a.app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger (F2)").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// DebugConsole is the writer handed to the logger in dev mode.
func (a *App) DebugConsole() *tview.TextView {
	return a.debugConsole
}

// Run shows page with focus on focus and blocks until the user quits.
func (a *App) Run(page tview.Primitive, focus tview.Primitive) error {
	a.mainFlex = tview.NewFlex().
		AddItem(page, 0, 2, true)
	if a.debugVisible {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
	}

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyF2 {
			a.toggleDebugConsole()
			return nil
		}
		return event
	})

	return a.app.SetRoot(a.mainFlex, true).SetFocus(focus).Run()
}

func (a *App) Stop() {
	a.app.Stop()
}

// TerminalWriter wraps out so raw escape sequences (OSC52 copies) are written
// on the event loop, never in the middle of a redraw. Write must not be
// called from the event loop.
func (a *App) TerminalWriter(out io.Writer) io.Writer {
	return &loopWriter{app: a, out: out}
}

type loopWriter struct {
	app *App
	out io.Writer
}

func (w *loopWriter) Write(b []byte) (n int, err error) {
	w.app.sync(func() {
		n, err = w.out.Write(b)
	})
	return n, err
}

// runs on the event loop
func (a *App) toggleDebugConsole() {
	if a.debugVisible {
		a.mainFlex.RemoveItem(a.debugConsole)
	} else {
		a.mainFlex.AddItem(a.debugConsole, 0, 1, false)
	}
	a.debugVisible = !a.debugVisible
}

// update applies f on the event loop and redraws.
func (a *App) update(f func()) {
	a.app.QueueUpdateDraw(f)
}

// sync runs f on the event loop and waits for it.
func (a *App) sync(f func()) {
	done := make(chan struct{})
	a.app.QueueUpdate(func() {
		f()
		close(done)
	})
	<-done
}

func (a *App) focus(p tview.Primitive) {
	a.app.SetFocus(p)
}
