package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureDataDirs creates the data directory and the parent of the database file
func EnsureDataDirs(cfg *DatabaseConfig) error {
	for _, dir := range []string{cfg.DataDir, filepath.Dir(cfg.Path)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultEvalOutputDir returns {data}/eval_runs/{timestamp} for a run started at now
func DefaultEvalOutputDir(cfg *DatabaseConfig, now time.Time) string {
	return filepath.Join(cfg.DataDir, "eval_runs", now.UTC().Format("20060102T150405Z"))
}
