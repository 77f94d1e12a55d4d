package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"draft_path":        "book.md",
		"autosave_interval": "45s",
		"max_versions":      3,
		"backend":           "s3",
		"s3": map[string]any{
			"bucket":   "drafts",
			"key":      "book.md",
			"region":   "eu-west-1",
			"endpoint": "http://127.0.0.1:9000",
		},
		"online_check_interval": 5000000000,
	})

	t.Run("loads from -config", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-config", path}))

		assert.Equal(t, "book.md", cfg.DraftPath)
		assert.Equal(t, 45*time.Second, cfg.AutoSaveInterval)
		assert.Equal(t, 3, cfg.MaxVersions)
		assert.Equal(t, BackendS3, cfg.Backend)
		assert.Equal(t, "drafts", cfg.S3.Bucket)
		assert.Equal(t, "http://127.0.0.1:9000", cfg.S3.Endpoint)
		assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
		// untouched fields keep defaults
		assert.Equal(t, "draftkeeper.db", cfg.DatabasePath)
	})

	t.Run("no flag means no changes", func(t *testing.T) {
		cfg := &Config{DraftPath: "keep.md", AutoSaveInterval: 42 * time.Second}
		require.NoError(t, parseJSON(cfg, nil))

		assert.Equal(t, "keep.md", cfg.DraftPath)
		assert.Equal(t, 42*time.Second, cfg.AutoSaveInterval)
	})

	t.Run("invalid JSON fails", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJSON(&Config{}, []string{"-c", bad}))
	})

	t.Run("missing file fails", func(t *testing.T) {
		require.Error(t, parseJSON(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"autosave_interval": "45s", "max_versions": 3})

	cfg, err := load([]string{"-c", path, "-i", "9"})
	require.NoError(t, err)

	assert.Equal(t, 9*time.Second, cfg.AutoSaveInterval)
	assert.Equal(t, 3, cfg.MaxVersions)
}
