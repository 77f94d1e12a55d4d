package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SaveFunc is the externally supplied persist operation. A non-nil error
// rejects the save; wrap ErrConnectivity to mark transport loss.
type SaveFunc func(ctx context.Context, content string) error

// Observer receives persistence and status events, e.g. for metrics.
type Observer interface {
	SaveStarted()
	SaveFinished(elapsed time.Duration, err error)
	StatusChanged(status string)
	VersionsRetained(n int)
}

type nopObserver struct{}

func (nopObserver) SaveStarted() {}
func (nopObserver) SaveFinished(time.Duration, error) {}
func (nopObserver) StatusChanged(string) {}
func (nopObserver) VersionsRetained(int) {}

// GatewayStats summarises what the gateway has seen.
type GatewayStats struct {
	Attempts      int
	Failures      int
	LastAttemptAt time.Time
	LastSuccessAt time.Time
	LastError     error
}

// gateway wraps the SaveFunc: it times and records each attempt and turns
// rejections (and panics) into *PersistenceError.
type gateway struct {
	save     SaveFunc
	observer Observer
	now      func() time.Time

	mu    sync.Mutex
	stats GatewayStats
}

func newGateway(save SaveFunc, observer Observer, now func() time.Time) *gateway {
	return &gateway{save: save, observer: observer, now: now}
}

func (g *gateway) attempt(ctx context.Context, content string) (err error) {
	start := g.now()

	g.mu.Lock()
	g.stats.Attempts++
	g.stats.LastAttemptAt = start
	g.mu.Unlock()

	g.observer.SaveStarted()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("save panicked: %v", r)
		}

		g.observer.SaveFinished(g.now().Sub(start), err)

		g.mu.Lock()
		if err != nil {
			g.stats.Failures++
			g.stats.LastError = err
		} else {
			g.stats.LastSuccessAt = g.now()
			g.stats.LastError = nil
		}
		g.mu.Unlock()

		if err != nil {
			err = &PersistenceError{Err: err}
		}
	}()

	return g.save(ctx, content)
}

func (g *gateway) snapshot() GatewayStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}
