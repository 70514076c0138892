// Package storage publishes finished tracks to their configured
// destination, either a local directory or a GCS bucket.
package storage

import (
	"context"
	"fmt"

	"tunegrab/config"
)

// Publisher stores a finished track file and reports its final location.
type Publisher interface {
	// Publish copies the file at localPath to the destination under the
	// given name and returns the location a user can find it at.
	Publish(ctx context.Context, localPath, name string) (string, error)

	Close() error
}

// New selects a Publisher from the storage configuration.
func New(ctx context.Context, cfg config.StorageConfig) (Publisher, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocal(cfg.OutputDir)
	case "gcs":
		return NewGCS(ctx, cfg.Bucket, cfg.ObjectPrefix, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
