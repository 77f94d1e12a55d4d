package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
)

// Backend names where successful saves are persisted.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// S3Config addresses the object that receives saved drafts.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the draftkeeper CLI.
//
// Units: all intervals are time.Duration.
type Config struct {
	DraftPath           string
	DocumentID          string
	AutoSaveInterval    time.Duration
	SavedDisplay        time.Duration
	MaxVersions         int
	DatabasePath        string
	Backend             string
	PostgresDSN         string
	S3                  S3Config
	ProbeAddr           string
	ProbeService        string
	OnlineCheckInterval time.Duration
	MetricsAddr         string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DraftPath = "draft.md"
	c.DocumentID = common.DefaultDocumentID
	c.AutoSaveInterval = 30 * time.Second
	c.SavedDisplay = 2 * time.Second
	c.MaxVersions = 20
	c.DatabasePath = "draftkeeper.db"
	c.Backend = BackendSQLite
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "info"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.AutoSaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", c.AutoSaveInterval)
	}
	if c.MaxVersions < 1 {
		return fmt.Errorf("max versions must be at least 1, got %d", c.MaxVersions)
	}
	if c.DraftPath == "" {
		return fmt.Errorf("draft path: %w", common.ErrorMissingSetting)
	}

	switch c.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn: %w", common.ErrorMissingSetting)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket: %w", common.ErrorMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", common.ErrorUnknownBackend, c.Backend)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
