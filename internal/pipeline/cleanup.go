package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// How long an abandoned work directory may linger. Completed jobs
	// remove theirs on the way out; this catches crashes.
	abandonedDirTTL = 24 * time.Hour

	cleanupInterval = 2 * time.Hour
)

// StartCleanupWorker starts a background worker that prunes abandoned
// job work directories.
func (r *Runner) StartCleanupWorker() {
	ticker := time.NewTicker(cleanupInterval)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			r.cleanupAbandonedDirs()
		}
	}()
	slog.Info("Work directory cleanup worker started", "interval", cleanupInterval)
}

// cleanupAbandonedDirs removes job directories older than the TTL.
func (r *Runner) cleanupAbandonedDirs() {
	if _, err := os.Stat(r.workDir); os.IsNotExist(err) {
		return
	}

	cutoff := time.Now().Add(-abandonedDirTTL)

	entries, err := os.ReadDir(r.workDir)
	if err != nil {
		slog.Error("Failed to read jobs work directory", "dir", r.workDir, "error", err)
		return
	}

	cleaned := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		jobDir := filepath.Join(r.workDir, entry.Name())
		if err := os.RemoveAll(jobDir); err != nil {
			slog.Error("Failed to remove abandoned job directory", "dir", jobDir, "error", err)
			continue
		}
		cleaned++
	}

	if cleaned > 0 {
		slog.Info("Cleanup completed", "directoriesCleaned", cleaned)
	}
}
