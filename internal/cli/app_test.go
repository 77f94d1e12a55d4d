package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/dmitrijs2005/draftkeeper/internal/config"
	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/dmitrijs2005/draftkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DraftPath = filepath.Join(dir, "draft.md")
	cfg.DatabasePath = filepath.Join(dir, "draftkeeper.db")
	cfg.AutoSaveInterval = 30 * time.Millisecond
	cfg.SavedDisplay = -1
	cfg.MaxVersions = 3
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	a, err := NewApp(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, a.start(ctx))

	t.Cleanup(func() {
		cancel()
		a.Close()
	})
	return a
}

func writeDraft(t *testing.T, cfg *config.Config, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.DraftPath, []byte(content), 0o600))
}

func waitVersions(t *testing.T, a *App, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := a.session.State()
		return st.Versions == n && !st.HasUnsavedChanges
	}, waitFor, 5*time.Millisecond)
}

func TestApp_SavesDraftChanges(t *testing.T) {
	cfg := testConfig(t)
	a := startApp(t, cfg)

	writeDraft(t, cfg, "first words")
	waitVersions(t, a, 1)

	doc, err := storage.NewSQLiteDocuments(a.db).GetDocument(context.Background(), cfg.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "first words", doc.Content)
}

func TestApp_PicksUpExistingDraft(t *testing.T) {
	cfg := testConfig(t)
	writeDraft(t, cfg, "written while stopped")

	a := startApp(t, cfg)
	waitVersions(t, a, 1)

	assert.Equal(t, "written while stopped", a.session.Versions()[0].Content)
}

func TestApp_HistorySurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	a, err := NewApp(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, a.start(ctx))

	writeDraft(t, cfg, "kept")
	waitVersions(t, a, 1)
	cancel()
	a.Close()

	b := startApp(t, cfg)
	st := b.session.State()
	assert.Equal(t, 1, st.Versions)
	assert.False(t, st.HasUnsavedChanges, "unchanged draft is the saved baseline")
}

func TestApp_RestoreWritesDraft(t *testing.T) {
	out := captureOutput(t)
	cfg := testConfig(t)
	a := startApp(t, cfg)
	ctx := context.Background()

	writeDraft(t, cfg, "version one")
	waitVersions(t, a, 1)
	writeDraft(t, cfg, "version two")
	waitVersions(t, a, 2)

	oldest := a.session.Versions()[1]
	require.NoError(t, a.Restore(ctx, oldest.ID))

	b, err := os.ReadFile(cfg.DraftPath)
	require.NoError(t, err)
	assert.Equal(t, "version one", string(b))
	assert.Contains(t, strings.Join(*out, ""), "Restored version "+oldest.ID)

	// the restored content is saved as a new version
	waitVersions(t, a, 3)
	assert.Equal(t, "version one", a.session.Versions()[0].Content)
}

func TestApp_RestoreUnknown(t *testing.T) {
	captureOutput(t)
	a := startApp(t, testConfig(t))

	err := a.Restore(context.Background(), "missing")
	require.ErrorIs(t, err, autosave.ErrVersionNotFound)
}

func TestApp_OfflineDefersSave(t *testing.T) {
	out := captureOutput(t)
	cfg := testConfig(t)
	a := startApp(t, cfg)
	ctx := context.Background()

	require.NoError(t, a.SetOnline(ctx, false))
	writeDraft(t, cfg, "typed on a plane")

	require.Eventually(t, func() bool { return a.session.State().HasUnsavedChanges }, waitFor, 5*time.Millisecond)
	require.ErrorIs(t, a.Save(ctx), autosave.ErrOffline)

	since, ok, err := a.journal.PendingSince(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, since.IsZero())

	require.NoError(t, a.SetOnline(ctx, true))
	waitVersions(t, a, 1)

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Marked offline")
	assert.Contains(t, joined, "Marked online")
}

func TestApp_StatusAndHistoryOutput(t *testing.T) {
	out := captureOutput(t)
	cfg := testConfig(t)
	a := startApp(t, cfg)
	ctx := context.Background()

	require.NoError(t, a.History(ctx))
	require.NoError(t, a.Save(ctx))

	writeDraft(t, cfg, "<p>hello   brave\nnew world</p>")
	waitVersions(t, a, 1)

	require.NoError(t, a.Status(ctx))
	require.NoError(t, a.History(ctx))

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "No versions yet")
	assert.Contains(t, joined, "Nothing to save")
	assert.Contains(t, joined, "Versions:  1")
	assert.Contains(t, joined, "Attempts: 1 (0 failed)")
	assert.Contains(t, joined, "4 words")
	assert.Contains(t, joined, "<p>hello brave new world</p>")
	assert.Equal(t, "(saved)", a.getStatus(), "saved display never settles with SavedDisplay < 0")
}

func TestNewApp_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.DatabasePath = filepath.Join(blocker, "x.db")

	_, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
}

func TestNewApp_CreatesMissingDirs(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	cfg.DatabasePath = filepath.Join(root, "state", "draftkeeper.db")
	cfg.DraftPath = filepath.Join(root, "drafts", "novel.md")

	a, err := NewApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.DirExists(t, filepath.Join(root, "drafts"))
	assert.FileExists(t, cfg.DatabasePath)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a \n b", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}
