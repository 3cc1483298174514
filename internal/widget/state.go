// Package widget holds the chat and completion widgets: the input handling,
// request/response flow and visible state of each, independent of the
// terminal toolkit that renders them.
package widget

import "time"

type State int

const (
	StateIdle State = iota
	StateLoading
	StateResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// AfterFunc runs f once after d. It matches time.AfterFunc so tests can
// swap in a manual clock.
type AfterFunc func(d time.Duration, f func())

func realAfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
