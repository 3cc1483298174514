package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivo/tview"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// sink is the shared file writer. Every tagged Logger pushes onto the same
// channel so lines land in the file in emission order.
type sink struct {
	file    *os.File
	logChan chan Message
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Logger struct {
	out  io.Writer
	tag  string
	dev  bool
	sink *sink
}

var (
	logManager *Logger
	once       sync.Once
)

// InitLogger configures the process-wide logger. Only the first call has an
// effect. out receives dev-mode lines; a *tview.TextView gets colour tags.
func InitLogger(dev bool, logPath string, out io.Writer) error {
	var initErr error
	once.Do(func() {
		logManager, initErr = New(dev, logPath, out)
	})
	return initErr
}

// New builds a root logger without touching the package-level one.
func New(dev bool, logPath string, out io.Writer) (*Logger, error) {
	l := &Logger{out: out, dev: dev}
	if logPath == "" {
		return l, nil
	}

	timestamp := time.Now().Format("20060102_150405")
	fileName := fmt.Sprintf("promptpad_log_%s.log", timestamp)
	filePath := filepath.Join(logPath, fileName)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.sink = &sink{
		file:    file,
		logChan: make(chan Message, 100),
		done:    make(chan struct{}),
	}
	go l.sink.processLogs()
	return l, nil
}

// NewLogger returns a logger tagged for one component. Before InitLogger runs
// it returns a quiet logger.
func NewLogger(tag string) *Logger {
	if logManager == nil {
		return &Logger{tag: tag}
	}
	return logManager.With(tag)
}

func (l *Logger) With(tag string) *Logger {
	return &Logger{
		out:  l.out,
		tag:  tag,
		dev:  l.dev,
		sink: l.sink,
	}
}

func (s *sink) processLogs() {
	defer close(s.done)
	for msg := range s.logChan {
		timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
		logMessage := fmt.Sprintf("%s [%s] %s: %s\n", timestamp, msg.Tag, msg.LogTypes.toString(), msg.Message)
		s.file.WriteString(logMessage)
	}
}

func (l *Logger) log(logTypes Types, message string) {
	if l.dev {
		l.write(logTypes, message)
	}

	if l.sink != nil {
		l.sink.send(Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			LogTypes:  logTypes,
		})
	}
}

// send drops the line once the sink is closed; late goroutines may still log
// while the process shuts down.
func (s *sink) send(msg Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.logChan <- msg
}

func (l *Logger) write(logTypes Types, message string) {
	if l.out == nil {
		log.Printf("[%s] %s: %s", l.tag, logTypes.toString(), message)
		return
	}

	if _, ok := l.out.(*tview.TextView); !ok {
		fmt.Fprintf(l.out, "%s [%s] %s: %s\n", time.Now().Format("2006-01-02 15:04:05"), l.tag, logTypes.toString(), message)
		return
	}

	var format string
	switch logTypes {
	case Info:
		format = "[green]DEBUG (%s): %s[-]\n"
	case Warn:
		format = "[yellow]DEBUG (%s): %s[-]\n"
	default:
		format = "[red]DEBUG (%s): %s[-]\n"
	}
	fmt.Fprintf(l.out, format, l.tag, tview.Escape(message))
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, fmt.Sprint(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.log(Info, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, fmt.Sprint(v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.log(Error, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, fmt.Sprint(v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.log(Warn, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, fmt.Sprint(v...))
	l.Close()
	os.Exit(1)
}

// Close flushes pending file lines. Safe to call from any tagged logger and
// more than once.
func (l *Logger) Close() {
	if l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	if l.sink.closed {
		l.sink.mu.Unlock()
		return
	}
	l.sink.closed = true
	close(l.sink.logChan)
	l.sink.mu.Unlock()

	<-l.sink.done
	l.sink.file.Close()
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
