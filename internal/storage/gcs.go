package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 5 * time.Minute

// GCS publishes tracks into a Google Cloud Storage bucket.
type GCS struct {
	client       *gcstorage.Client
	bucket       string
	objectPrefix string
}

// NewGCS creates a GCS publisher. An empty credentialsFile falls back to
// application default credentials.
func NewGCS(ctx context.Context, bucket, objectPrefix, credentialsFile string) (*GCS, error) {
	var client *gcstorage.Client
	var err error

	if credentialsFile != "" {
		client, err = gcstorage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = gcstorage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCS{
		client:       client,
		bucket:       bucket,
		objectPrefix: objectPrefix,
	}, nil
}

// Publish uploads the file as an object named after the optional prefix
// plus the given name and returns its gs:// location.
func (s *GCS) Publish(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	objectName := name
	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + name
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(uploadCtx)
	if _, err := io.Copy(wc, f); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}
