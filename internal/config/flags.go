package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/flagx"
)

var knownFlags = []string{"-f", "-i", "-n", "-d", "-b", "-p", "-m", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// args is filtered with flagx.FilterArgs first so flags owned by other loaders
// (such as -c) do not make parsing fail.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("draftkeeper", flag.ContinueOnError)

	fs.StringVar(&cfg.DraftPath, "f", cfg.DraftPath, "draft file to watch and autosave")
	interval := fs.Int("i", int(cfg.AutoSaveInterval.Seconds()), "autosave interval (in seconds)")
	fs.IntVar(&cfg.MaxVersions, "n", cfg.MaxVersions, "maximum number of retained versions")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local SQLite database path")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "persistence backend: sqlite, postgres or s3")
	fs.StringVar(&cfg.ProbeAddr, "p", cfg.ProbeAddr, "gRPC health endpoint used as connectivity probe")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "listen address for /metrics")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.AutoSaveInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
