package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/draftkeeper/internal/flagx"
	"github.com/dmitrijs2005/draftkeeper/internal/timex"
)

type jsonS3 struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value checks decide which fields overlay the current Config.
type JSONConfig struct {
	DraftPath           string         `json:"draft_path"`
	DocumentID          string         `json:"document_id"`
	AutoSaveInterval    timex.Duration `json:"autosave_interval"`
	SavedDisplay        timex.Duration `json:"saved_display"`
	MaxVersions         int            `json:"max_versions"`
	DatabasePath        string         `json:"database_path"`
	Backend             string         `json:"backend"`
	PostgresDSN         string         `json:"postgres_dsn"`
	S3                  *jsonS3        `json:"s3"`
	ProbeAddr           string         `json:"probe_addr"`
	ProbeService        string         `json:"probe_service"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	MetricsAddr         string         `json:"metrics_addr"`
	LogLevel            string         `json:"log_level"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// Fields absent from the file keep their current value.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DraftPath, jc.DraftPath)
	setString(&cfg.DocumentID, jc.DocumentID)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.ProbeAddr, jc.ProbeAddr)
	setString(&cfg.ProbeService, jc.ProbeService)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.AutoSaveInterval.Duration > 0 {
		cfg.AutoSaveInterval = jc.AutoSaveInterval.Duration
	}
	if jc.SavedDisplay.Duration > 0 {
		cfg.SavedDisplay = jc.SavedDisplay.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.MaxVersions > 0 {
		cfg.MaxVersions = jc.MaxVersions
	}

	if jc.S3 != nil {
		setString(&cfg.S3.Bucket, jc.S3.Bucket)
		setString(&cfg.S3.Key, jc.S3.Key)
		setString(&cfg.S3.Region, jc.S3.Region)
		setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
		setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
		setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
