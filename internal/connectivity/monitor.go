// Package connectivity tracks whether the host can reach its persistence
// backend and tells subscribers about online/offline transitions.
//
// A Monitor is fed by Set, either directly (OS hooks, a manual toggle in the
// CLI) or by Watch, which polls a Probe on a fixed interval.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

// Probe checks whether the backend is reachable right now.
type Probe interface {
	Ping(ctx context.Context) error
}

// Monitor holds the current online flag. Safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
	log    logging.Logger

	// notifyMu serializes fan-out; delivered is the last value subscribers saw.
	notifyMu  sync.Mutex
	delivered bool
}

func NewMonitor(online bool, log logging.Logger) *Monitor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Monitor{online: online, delivered: online, subs: make(map[int]func(bool)), log: log}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the environment's connectivity. Subscribers are called only on
// an actual transition, synchronously and outside the state lock. Deliveries
// are serialized and always carry the current value, so overlapping calls
// cannot leave a subscriber on a stale flag.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.mu.Unlock()

	m.log.Info(context.Background(), "connectivity changed", "online", online)
	m.notify()
}

func (m *Monitor) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	current := m.online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if current == m.delivered {
		return
	}
	m.delivered = current
	for _, fn := range subs {
		fn(current)
	}
}

// Subscribe registers fn for transitions. fn must not call Set. The returned
// func removes it and is safe to call more than once.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Subscribers reports how many callbacks are registered.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Watch pings probe every interval until ctx is done, feeding the result into
// Set. Each ping gets its own timeout.
func (m *Monitor) Watch(ctx context.Context, probe Probe, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.check(ctx, probe, timeout)

	for {
		select {
		case <-ticker.C:
			m.check(ctx, probe, timeout)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) check(ctx context.Context, probe Probe, timeout time.Duration) {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	err := probe.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.log.Debug(ctx, "connectivity probe failed", "error", err)
	}
	m.Set(err == nil)
}
