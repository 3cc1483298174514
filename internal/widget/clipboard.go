package widget

import (
	"errors"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ClipboardWriter puts text on a clipboard.
type ClipboardWriter interface {
	WriteText(text string) error
}

// SystemClipboard writes through the OS clipboard utilities (pbcopy,
// xclip, wl-copy, the Windows API).
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// TerminalClipboard asks the terminal emulator to set the clipboard with an
// OSC52 escape sequence. It works over SSH where no system clipboard exists.
type TerminalClipboard struct {
	Out io.Writer
	// Tmux wraps the sequence in a tmux passthrough.
	Tmux bool
}

func (t TerminalClipboard) WriteText(text string) error {
	if t.Out == nil {
		return errors.New("terminal clipboard has no output")
	}
	seq := osc52.New(text)
	if t.Tmux {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(t.Out)
	return err
}

// fallbackClipboard tries the preferred writer and, if that fails, the
// fallback one.
type fallbackClipboard struct {
	preferred ClipboardWriter
	fallback  ClipboardWriter
}

// WithFallback returns a writer that falls back when preferred fails.
func WithFallback(preferred, fallback ClipboardWriter) ClipboardWriter {
	return &fallbackClipboard{preferred: preferred, fallback: fallback}
}

func (f *fallbackClipboard) WriteText(text string) error {
	err := f.preferred.WriteText(text)
	if err == nil {
		return nil
	}
	if fbErr := f.fallback.WriteText(text); fbErr != nil {
		return errors.Join(err, fbErr)
	}
	return nil
}

// DetectClipboard picks a writer from what the host supports: the system
// clipboard backed by the terminal sequence, or the terminal sequence alone.
func DetectClipboard(out io.Writer) ClipboardWriter {
	terminal := TerminalClipboard{Out: out, Tmux: os.Getenv("TMUX") != ""}
	if clipboard.Unsupported {
		return terminal
	}
	return WithFallback(SystemClipboard{}, terminal)
}
