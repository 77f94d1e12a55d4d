package autosave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/connectivity"
	"github.com/stretchr/testify/require"
)

const (
	testInterval = 20 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 2 * time.Millisecond
)

// fakeSaver records calls. With gate set, every call blocks until a value is
// sent on it, and that value is the call's result.
type fakeSaver struct {
	mu          sync.Mutex
	calls       []string
	err         error
	gate        chan error
	running     int
	maxRunning  int
	panicOnSave bool
}

func (f *fakeSaver) Save(ctx context.Context, content string) error {
	f.mu.Lock()
	f.calls = append(f.calls, content)
	f.running++
	if f.running > f.maxRunning {
		f.maxRunning = f.running
	}
	gate, err, boom := f.gate, f.err, f.panicOnSave
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.running--
		f.mu.Unlock()
	}()

	if boom {
		panic("boom")
	}
	if gate != nil {
		select {
		case err = <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeSaver) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSaver) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeSaver) MaxRunning() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxRunning
}

type memJournal struct {
	mu      sync.Mutex
	content string
	ok      bool
}

func (j *memJournal) LoadPending(context.Context) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.content, j.ok, nil
}

func (j *memJournal) StorePending(_ context.Context, content string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.content, j.ok = content, true
	return nil
}

func (j *memJournal) ClearPending(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.content, j.ok = "", false
	return nil
}

func (j *memJournal) Pending() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.content, j.ok
}

type memStore struct {
	mu      sync.Mutex
	entries []VersionEntry // newest first
	deleted []string
}

func (m *memStore) LoadVersions(_ context.Context, limit int) ([]VersionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) > limit {
		return append([]VersionEntry(nil), m.entries[:limit]...), nil
	}
	return append([]VersionEntry(nil), m.entries...), nil
}

func (m *memStore) InsertVersion(_ context.Context, e VersionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]VersionEntry{e}, m.entries...)
	return nil
}

func (m *memStore) DeleteVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

func newTestSession(t *testing.T, saver *fakeSaver, monitor *connectivity.Monitor, opts Options) *Session {
	t.Helper()
	if opts.Interval == 0 {
		opts.Interval = testInterval
	}
	if opts.SavedDisplay == 0 {
		opts.SavedDisplay = -1
	}
	s, err := NewSession(saver.Save, monitor, opts)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Dispose)
	return s
}

func contents(entries []VersionEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func statusIs(s *Session, want Status) func() bool {
	return func() bool { return s.State().Status == want }
}

// settle waits a few debounce windows so that any stray timer would fire.
func settle() {
	time.Sleep(5 * testInterval)
}
