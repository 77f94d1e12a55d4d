package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/dmitrijs2005/draftkeeper/internal/config"
	"github.com/dmitrijs2005/draftkeeper/internal/connectivity"
	"github.com/dmitrijs2005/draftkeeper/internal/editor"
	"github.com/dmitrijs2005/draftkeeper/internal/filex"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/metrics"
	"github.com/dmitrijs2005/draftkeeper/internal/storage"
	"golang.org/x/term"
)

const probeTimeout = 2 * time.Second

type App struct {
	config *config.Config
	log    logging.Logger

	db       *sql.DB
	remote   *sql.DB
	journal  *storage.Journal
	versions *storage.SQLiteVersions

	monitor  *connectivity.Monitor
	probe    *connectivity.HealthProbe
	recorder *metrics.Recorder
	session  *autosave.Session
	watcher  *editor.Watcher
}

// NewApp opens the local database and builds the session for c.DraftPath.
// Nothing runs until Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	for _, p := range []string{c.DatabasePath, c.DraftPath} {
		if err := filex.EnsureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	db, err := storage.OpenSQLite(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		journal:  storage.NewJournal(db, c.DocumentID),
		versions: storage.NewSQLiteVersions(db, c.DocumentID),
		monitor:  connectivity.NewMonitor(true, log),
		recorder: metrics.NewRecorder(),
	}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	target, err := a.newTarget(ctx)
	if err != nil {
		return err
	}

	if n, err := a.versions.Trim(ctx, a.config.MaxVersions); err != nil {
		return err
	} else if n > 0 {
		a.log.Info(ctx, "dropped versions beyond retention limit", "count", n)
	}

	if a.config.ProbeAddr != "" {
		a.probe, err = connectivity.NewHealthProbe(a.config.ProbeAddr, a.config.ProbeService)
		if err != nil {
			return err
		}
	}

	baseline, err := a.baseline(ctx)
	if err != nil {
		return err
	}

	a.session, err = autosave.NewSession(storage.SaveFunc(target, a.config.DocumentID), a.monitor, autosave.Options{
		Interval:       a.config.AutoSaveInterval,
		MaxVersions:    a.config.MaxVersions,
		SavedDisplay:   a.config.SavedDisplay,
		InitialContent: baseline,
		Logger:         a.log.With("document", a.config.DocumentID),
		Observer:       a.recorder,
		Store:          a.versions,
		Journal:        a.journal,
		OnChange: func(st autosave.State) {
			a.log.Debug(ctx, "autosave state", "status", st.Status.String(), "unsaved", st.HasUnsavedChanges)
		},
	})
	if err != nil {
		return err
	}

	a.watcher, err = editor.NewWatcher(a.config.DraftPath, a.onDraftChange, a.log)
	return err
}

// newTarget returns the DocumentWriter for the configured backend.
func (a *App) newTarget(ctx context.Context) (storage.DocumentWriter, error) {
	switch a.config.Backend {
	case config.BackendPostgres:
		remote, err := storage.OpenPostgres(a.config.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.remote = remote
		return storage.NewPostgresDocuments(remote), nil

	case config.BackendS3:
		return storage.NewS3Documents(ctx, a.config.S3)

	default:
		return storage.NewSQLiteDocuments(a.db), nil
	}
}

// baseline is the content already saved before this run: the newest
// retained version, or "" for a fresh document.
func (a *App) baseline(ctx context.Context) (string, error) {
	latest, err := a.versions.LoadVersions(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(latest) == 0 {
		return "", nil
	}
	return latest[0].Content, nil
}

func (a *App) onDraftChange(content string) {
	if err := a.session.Edit(content); err != nil {
		a.log.Debug(context.Background(), "edit dropped", "error", err)
	}
}

// start runs everything except the REPL.
func (a *App) start(ctx context.Context) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}

	if err := a.watcher.Start(ctx); err != nil {
		return err
	}

	// Edits made while the program was not running.
	current, err := editor.ReadDraft(a.config.DraftPath)
	if err != nil {
		return err
	}
	a.onDraftChange(current)

	if a.probe != nil {
		go a.monitor.Watch(ctx, a.probe, a.config.OnlineCheckInterval, probeTimeout)
	}

	if a.config.MetricsAddr != "" {
		go func() {
			if err := a.recorder.Serve(ctx, a.config.MetricsAddr); err != nil {
				a.log.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}
	return nil
}

// Run starts the session and blocks in the REPL until the user exits or ctx
// is done. Resources are released before it returns.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.start(ctx); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		printlnFn("draftkeeper is watching", a.watcher.Path(), "(type 'help' for commands)")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin), interactive)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

// Close is safe on a partially built App.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.session != nil {
		a.session.Dispose()
	}
	if a.probe != nil {
		_ = a.probe.Close()
	}
	if a.remote != nil {
		_ = a.remote.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) getStatus() string {
	st := a.session.State()
	s := st.Status.String()
	if st.HasUnsavedChanges {
		s += "*"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Status(ctx context.Context) error {
	st := a.session.State()

	printlnFn("Status:   ", st.Status.String())
	if st.Message != "" {
		printlnFn("Message:  ", st.Message)
	}
	printlnFn("Online:   ", st.Online)
	printlnFn("Unsaved:  ", st.HasUnsavedChanges)
	if st.LastSavedAt != nil {
		printlnFn("Saved at: ", st.LastSavedAt.Format(time.DateTime))
	}
	printlnFn("Versions: ", st.Versions)

	if since, ok, err := a.journal.PendingSince(ctx); err != nil {
		return err
	} else if ok {
		printlnFn("Unsaved since:", since.Local().Format(time.DateTime))
	}

	stats := a.session.Stats()
	printlnFn(fmt.Sprintf("Attempts: %d (%d failed)", stats.Attempts, stats.Failures))
	return nil
}

func (a *App) Save(ctx context.Context) error {
	err := a.session.SaveNow()
	switch {
	case errors.Is(err, autosave.ErrNothingToSave):
		printlnFn("Nothing to save")
		return nil
	case err != nil:
		return err
	}
	printlnFn("Saving...")
	return nil
}

func (a *App) History(ctx context.Context) error {
	versions := a.session.Versions()
	if len(versions) == 0 {
		printlnFn("No versions yet")
		return nil
	}
	for _, v := range versions {
		printlnFn(fmt.Sprintf("%s  %s  %5d words  %s",
			v.ID, v.CreatedAt.Local().Format(time.DateTime), v.WordCount, preview(v.Content, 40)))
	}
	return nil
}

// Restore writes the content of version id into the draft file and feeds it
// to the session as an edit.
func (a *App) Restore(ctx context.Context, id string) error {
	content, err := a.session.Restore(id)
	if err != nil {
		return err
	}
	if err := filex.WriteAtomic(a.config.DraftPath, []byte(content), 0o644); err != nil {
		return err
	}
	a.onDraftChange(content)
	printlnFn("Restored version", id)
	return nil
}

func (a *App) SetOnline(ctx context.Context, online bool) error {
	a.monitor.Set(online)
	if online {
		printlnFn("Marked online")
	} else {
		printlnFn("Marked offline")
	}
	if a.probe != nil {
		printlnFn("Note: the health probe overrides this on its next check")
	}
	return nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
