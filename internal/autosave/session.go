package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

const (
	DefaultInterval     = 30 * time.Second
	DefaultMaxVersions  = 20
	DefaultSavedDisplay = 2 * time.Second
)

// Connectivity is the session's view of the connectivity monitor.
type Connectivity interface {
	IsOnline() bool
	Set(online bool)
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Journal keeps the pending payload on local disk so unsaved edits survive a
// crash. LoadPending reports ok=false when nothing is stored.
type Journal interface {
	LoadPending(ctx context.Context) (content string, ok bool, err error)
	StorePending(ctx context.Context, content string) error
	ClearPending(ctx context.Context) error
}

type Options struct {
	// Interval is the debounce window between the last edit and the save.
	Interval time.Duration
	// MaxVersions bounds the ledger.
	MaxVersions int
	// SavedDisplay is how long Saved is shown before falling back to Idle.
	// Negative disables the fallback.
	SavedDisplay time.Duration
	// InitialContent is what the editor already holds; it does not count as
	// an unsaved change.
	InitialContent string

	Logger   logging.Logger
	Observer Observer
	Store    LedgerStore
	Journal  Journal
	Now      func() time.Time

	// OnChange is called with a fresh snapshot after every state change,
	// outside the session lock.
	OnChange func(State)
}

// State is a read-only snapshot for the UI.
type State struct {
	Status            Status
	Message           string
	Online            bool
	HasUnsavedChanges bool
	LastSavedAt       *time.Time
	Versions          int
}

// Session is one editing session's autosave engine. All mutable state is
// guarded by mu; timer and attempt callbacks take the lock and run to
// completion, so updates never interleave.
type Session struct {
	gw      *gateway
	monitor Connectivity
	opts    Options
	log     logging.Logger

	wg sync.WaitGroup

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	disposed    bool
	unsubscribe func()

	online       bool
	status       statusModel
	lastObserved string
	pending      *string
	lastSaved    *string
	lastSavedAt  *time.Time

	inFlight    bool
	flushQueued bool
	attemptSeq  uint64
	appliedSeq  uint64

	// lostDuringAttempt is set when connectivity dropped while the current
	// attempt was running.
	lostDuringAttempt bool

	timer       *time.Timer
	timerGen    uint64
	settleTimer *time.Timer
	settleGen   uint64

	ledger *Ledger
}

func NewSession(save SaveFunc, monitor Connectivity, opts Options) (*Session, error) {
	if save == nil {
		return nil, errors.New("autosave: nil SaveFunc")
	}
	if monitor == nil {
		return nil, errors.New("autosave: nil connectivity monitor")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxVersions <= 0 {
		opts.MaxVersions = DefaultMaxVersions
	}
	if opts.SavedDisplay == 0 {
		opts.SavedDisplay = DefaultSavedDisplay
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		gw:           newGateway(save, opts.Observer, opts.Now),
		monitor:      monitor,
		opts:         opts,
		log:          opts.Logger,
		lastObserved: opts.InitialContent,
		ledger:       NewLedger(opts.MaxVersions),
	}, nil
}

// Start loads persisted history and any journaled draft, then subscribes to
// connectivity changes. Calling Start twice is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.opts.Store != nil {
		entries, err := s.opts.Store.LoadVersions(ctx, s.ledger.Cap())
		if err != nil {
			s.cancel()
			s.mu.Unlock()
			return err
		}
		s.ledger.load(entries)
		if newest, ok := s.ledger.Newest(); ok {
			content, at := newest.Content, newest.CreatedAt
			s.lastSaved, s.lastSavedAt = &content, &at
		}
	}

	if s.opts.Journal != nil {
		content, ok, err := s.opts.Journal.LoadPending(ctx)
		if err != nil {
			s.log.Warn(ctx, "journal unavailable, starting clean", "error", err)
		} else if ok {
			s.lastObserved = content
			s.pending = &content
			s.armTimerLocked()
			s.log.Info(ctx, "recovered unsaved draft from journal", "words", CountWords(content))
		}
	}

	s.unsubscribe = s.monitor.Subscribe(s.onConnectivity)
	s.online = s.monitor.IsOnline()
	if !s.online {
		s.status.offline()
	}
	s.started = true

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug(ctx, "autosave session started", "online", snap.Online, "versions", snap.Versions)
	s.publish(snap)
	return nil
}

// Dispose releases the timers and the connectivity subscription, cancels the
// context passed to a running SaveFunc and waits for it to return. The result
// of that attempt is dropped.
func (s *Session) Dispose() {
	s.mu.Lock()
	if !s.started || s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.stopTimerLocked()
	s.stopSettleLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.cancel()
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.wg.Wait()
}

// Edit observes the editor's current content. Content equal to the last
// observed value is ignored; anything else becomes the pending payload and
// restarts the debounce timer.
func (s *Session) Edit(content string) error {
	s.mu.Lock()
	if !s.runningLocked() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if content == s.lastObserved {
		s.mu.Unlock()
		return nil
	}

	s.lastObserved = content
	s.setPendingLocked(content)
	s.armTimerLocked()

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// SaveNow bypasses the debounce timer. It is rejected with ErrOffline,
// ErrSaveInProgress or ErrNothingToSave when its preconditions do not hold.
// The attempt itself runs in the background; watch State for the outcome.
func (s *Session) SaveNow() error {
	s.mu.Lock()
	switch {
	case !s.runningLocked():
		s.mu.Unlock()
		return ErrSessionClosed
	case !s.online:
		s.mu.Unlock()
		return ErrOffline
	case s.inFlight:
		s.mu.Unlock()
		return ErrSaveInProgress
	case s.pending == nil:
		s.mu.Unlock()
		return ErrNothingToSave
	}

	s.flushLocked("manual")
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Versions lists the retained history, newest first.
func (s *Session) Versions() []VersionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// Restore returns the content of a retained version. It does not touch the
// ledger or start a save; feeding the content back through Edit is up to the
// caller.
func (s *Session) Restore(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ledger.Get(id)
	if !ok {
		return "", &NotFoundError{ID: id}
	}
	return e.Content, nil
}

// Stats exposes the persistence gateway counters.
func (s *Session) Stats() GatewayStats {
	return s.gw.snapshot()
}

func (s *Session) runningLocked() bool {
	return s.started && !s.disposed
}

// bg is the context for local bookkeeping writes, which must still land
// after Dispose cancelled the session context.
func (s *Session) bg() context.Context {
	return context.WithoutCancel(s.ctx)
}

func (s *Session) setPendingLocked(content string) {
	s.pending = &content
	if s.opts.Journal != nil {
		if err := s.opts.Journal.StorePending(s.bg(), content); err != nil {
			s.log.Warn(s.ctx, "journal write failed", "error", err)
		}
	}
}

func (s *Session) clearPendingLocked() {
	s.pending = nil
	if s.opts.Journal != nil {
		if err := s.opts.Journal.ClearPending(s.bg()); err != nil {
			s.log.Warn(s.ctx, "journal clear failed", "error", err)
		}
	}
}

func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = time.AfterFunc(s.opts.Interval, func() { s.onTimer(gen) })
}

// stopTimerLocked cancels the debounce timer. Bumping the generation makes a
// callback that already fired and is waiting for the lock a no-op.
func (s *Session) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) armSettleLocked() {
	s.stopSettleLocked()
	if s.opts.SavedDisplay < 0 {
		return
	}
	gen := s.settleGen
	s.settleTimer = time.AfterFunc(s.opts.SavedDisplay, func() { s.onSettle(gen) })
}

func (s *Session) stopSettleLocked() {
	s.settleGen++
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
}

func (s *Session) onTimer(gen uint64) {
	s.mu.Lock()
	if !s.runningLocked() || gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.flushLocked("debounce")
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Session) onSettle(gen uint64) {
	s.mu.Lock()
	if !s.runningLocked() || gen != s.settleGen || !s.status.settle() {
		s.mu.Unlock()
		return
	}
	s.settleTimer = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// flushLocked tries to persist the pending payload: offline keeps it pending,
// an attempt in flight defers it, unchanged content is dropped without a write.
func (s *Session) flushLocked(reason string) {
	if s.pending == nil {
		return
	}
	if !s.online {
		s.log.Debug(s.ctx, "save deferred while offline", "reason", reason)
		return
	}
	if s.inFlight {
		s.flushQueued = true
		return
	}

	content := *s.pending
	if s.lastSaved != nil && *s.lastSaved == content {
		s.stopTimerLocked()
		s.clearPendingLocked()
		return
	}
	s.startAttemptLocked(content, reason)
}

func (s *Session) startAttemptLocked(content, reason string) {
	s.stopTimerLocked()
	s.stopSettleLocked()

	s.inFlight = true
	s.lostDuringAttempt = false
	s.attemptSeq++
	seq := s.attemptSeq
	s.status.begin()

	s.log.Debug(s.ctx, "save started", "attempt", seq, "reason", reason)

	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.gw.attempt(ctx, content)
		s.finishAttempt(seq, content, err)
	}()
}

func (s *Session) finishAttempt(seq uint64, content string, err error) {
	s.mu.Lock()
	s.inFlight = false
	if s.disposed {
		s.mu.Unlock()
		s.log.Debug(s.ctx, "save finished after dispose, result dropped", "attempt", seq, "error", err)
		return
	}

	reportOffline := false
	if err == nil {
		s.applySuccessLocked(seq, content)
	} else {
		reportOffline = s.applyFailureLocked(seq, err)
	}

	if s.flushQueued && s.runningLocked() {
		s.flushQueued = false
		s.flushLocked("deferred")
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	if reportOffline {
		s.monitor.Set(false)
	}
	s.publish(snap)
}

// applySuccessLocked records a completed save. Versions are appended in
// completion order; an older attempt finishing late never rolls back the
// last-saved markers.
func (s *Session) applySuccessLocked(seq uint64, content string) {
	at := s.opts.Now()
	if seq > s.appliedSeq {
		s.appliedSeq = seq
		s.lastSaved = &content
		s.lastSavedAt = &at
	}

	entry, evicted := s.ledger.Append(content, at)
	if s.opts.Store != nil {
		if err := s.opts.Store.InsertVersion(s.bg(), entry); err != nil {
			s.log.Warn(s.ctx, "version store insert failed", "version", entry.ID, "error", err)
		}
		if evicted != nil {
			if err := s.opts.Store.DeleteVersion(s.bg(), evicted.ID); err != nil {
				s.log.Warn(s.ctx, "version store evict failed", "version", evicted.ID, "error", err)
			}
		}
	}
	s.opts.Observer.VersionsRetained(s.ledger.Len())

	if s.pending != nil && *s.pending == content {
		s.clearPendingLocked()
	}

	s.status.succeed()
	if s.status.status == StatusSaved && s.runningLocked() {
		s.armSettleLocked()
	}

	s.log.Info(s.ctx, "draft saved", "attempt", seq, "version", entry.ID, "words", entry.WordCount)
}

// applyFailureLocked keeps the content pending. Offline takes precedence over
// the error: a failure seen while offline, or caused by lost connectivity, is
// retried on reconnection instead of being shown. It reports whether the
// monitor should be told about the lost connectivity.
func (s *Session) applyFailureLocked(seq uint64, err error) bool {
	if !s.online || s.lostDuringAttempt {
		s.log.Info(s.ctx, "save failed while offline, retrying on reconnect", "attempt", seq, "error", err)
		if s.online {
			// connectivity already came back while the attempt was running
			s.flushQueued = true
		}
		return false
	}

	if IsConnectivityError(err) {
		s.online = false
		s.status.offline()
		s.log.Info(s.ctx, "connectivity lost during save, retrying on reconnect", "attempt", seq, "error", err)
		return true
	}

	msg := fallbackMessage
	var pe *PersistenceError
	if errors.As(err, &pe) {
		msg = pe.Message()
	}
	s.status.fail(msg)
	s.log.Warn(s.ctx, "save failed", "attempt", seq, "error", err)
	return false
}

// onConnectivity reacts to a monitor transition. The monitor is re-read so a
// late notification never overrides the current flag.
func (s *Session) onConnectivity(bool) {
	online := s.monitor.IsOnline()

	s.mu.Lock()
	if !s.runningLocked() || s.online == online {
		s.mu.Unlock()
		return
	}

	s.online = online
	if online {
		s.status.online(s.inFlight)
		s.flushLocked("reconnect")
	} else {
		if s.inFlight {
			s.lostDuringAttempt = true
		}
		s.stopSettleLocked()
		s.status.offline()
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Session) snapshotLocked() State {
	st := State{
		Status:            s.status.status,
		Message:           s.status.message,
		Online:            s.online,
		HasUnsavedChanges: s.pending != nil,
		Versions:          s.ledger.Len(),
	}
	if s.lastSavedAt != nil {
		at := *s.lastSavedAt
		st.LastSavedAt = &at
	}
	return st
}

func (s *Session) publish(st State) {
	s.opts.Observer.StatusChanged(st.Status.String())
	if s.opts.OnChange != nil {
		s.opts.OnChange(st)
	}
}
