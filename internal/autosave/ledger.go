package autosave

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VersionEntry is an immutable snapshot taken after a successful save.
type VersionEntry struct {
	ID        string
	Content   string
	CreatedAt time.Time
	WordCount int
}

// LedgerStore mirrors the ledger durably so history survives restarts.
type LedgerStore interface {
	// LoadVersions returns at most limit entries, newest first.
	LoadVersions(ctx context.Context, limit int) ([]VersionEntry, error)
	InsertVersion(ctx context.Context, e VersionEntry) error
	DeleteVersion(ctx context.Context, id string) error
}

// Ledger is a fixed-capacity ring of VersionEntry values. Appending to a full
// ledger silently drops the oldest entry. Not safe for concurrent use; the
// Session serialises access.
type Ledger struct {
	ring  []VersionEntry
	head  int // slot for the next append
	size  int
	newID func() string
}

func NewLedger(maxVersions int) *Ledger {
	if maxVersions < 1 {
		maxVersions = 1
	}
	return &Ledger{ring: make([]VersionEntry, maxVersions), newID: uuid.NewString}
}

func (l *Ledger) Cap() int { return len(l.ring) }
func (l *Ledger) Len() int { return l.size }

// Append records content saved at at. evicted is non-nil when the ledger was
// full and its oldest entry had to go.
func (l *Ledger) Append(content string, at time.Time) (entry VersionEntry, evicted *VersionEntry) {
	entry = VersionEntry{
		ID:        l.newID(),
		Content:   content,
		CreatedAt: at,
		WordCount: CountWords(content),
	}
	evicted = l.push(entry)
	return entry, evicted
}

func (l *Ledger) push(e VersionEntry) *VersionEntry {
	var evicted *VersionEntry
	if l.size == len(l.ring) {
		old := l.ring[l.head]
		evicted = &old
	} else {
		l.size++
	}
	l.ring[l.head] = e
	l.head = (l.head + 1) % len(l.ring)
	return evicted
}

// List returns a copy of the entries, newest first.
func (l *Ledger) List() []VersionEntry {
	out := make([]VersionEntry, 0, l.size)
	for i := 1; i <= l.size; i++ {
		out = append(out, l.ring[(l.head-i+len(l.ring))%len(l.ring)])
	}
	return out
}

// Newest returns the most recent entry.
func (l *Ledger) Newest() (VersionEntry, bool) {
	if l.size == 0 {
		return VersionEntry{}, false
	}
	return l.ring[(l.head-1+len(l.ring))%len(l.ring)], true
}

func (l *Ledger) Get(id string) (VersionEntry, bool) {
	for i := 0; i < l.size; i++ {
		e := l.ring[(l.head-1-i+2*len(l.ring))%len(l.ring)]
		if e.ID == id {
			return e, true
		}
	}
	return VersionEntry{}, false
}

// load replaces the contents with entries given newest first, keeping at most
// Cap of them.
func (l *Ledger) load(newestFirst []VersionEntry) {
	if len(newestFirst) > len(l.ring) {
		newestFirst = newestFirst[:len(l.ring)]
	}
	l.head, l.size = 0, 0
	for i := len(newestFirst) - 1; i >= 0; i-- {
		l.push(newestFirst[i])
	}
}
