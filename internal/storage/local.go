package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local publishes tracks into a directory on the local filesystem.
type Local struct {
	outputDir string
}

// NewLocal creates the output directory if needed and returns a Local
// publisher rooted there.
func NewLocal(outputDir string) (*Local, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return &Local{outputDir: outputDir}, nil
}

// Publish copies the file into the output directory. A copy, not a
// rename: the source usually lives in a temp directory that may be on a
// different filesystem and is removed by the caller afterwards.
func (s *Local) Publish(ctx context.Context, localPath, name string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer src.Close()

	destPath := filepath.Join(s.outputDir, name)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	_, err = io.Copy(dest, src)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to copy to %s: %w", destPath, err)
	}

	return destPath, nil
}

func (s *Local) Close() error {
	return nil
}
