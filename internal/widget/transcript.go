package widget

import (
	"sync"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryUser  EntryKind = "user"
	EntryBot   EntryKind = "bot"
	EntryError EntryKind = "error"
)

// Entry is one rendered line of the chat transcript.
type Entry struct {
	ID   string
	Kind EntryKind
	Text string
}

// Transcript is append-only: entries are never edited or removed.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

func (t *Transcript) Append(kind EntryKind, text string) Entry {
	e := Entry{ID: uuid.NewString(), Kind: kind, Text: text}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e
}

func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
