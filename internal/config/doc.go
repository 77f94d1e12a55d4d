// Package config loads runtime configuration for the draftkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-f string   draft file to watch and autosave
//	-i int      autosave debounce interval (seconds)
//	-n int      maximum number of retained versions
//	-d string   local SQLite database path
//	-b string   persistence backend: sqlite, postgres or s3
//	-p string   host:port of a gRPC health endpoint used as connectivity probe
//	-m string   listen address for the Prometheus /metrics endpoint
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "draft_path": "novel.md",
//	  "autosave_interval": "30s",
//	  "max_versions": 20,
//	  "backend": "s3",
//	  "s3": {"bucket": "drafts", "key": "novel.md", "region": "us-east-1"}
//	}
package config
