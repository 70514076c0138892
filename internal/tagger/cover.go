package tagger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// CoverFetcher downloads album art to a local file so FFmpeg can attach
// it to the output.
type CoverFetcher struct {
	httpClient *http.Client
}

// NewCoverFetcher creates a fetcher with a bounded request timeout.
func NewCoverFetcher() *CoverFetcher {
	return &CoverFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads artURL into dir and returns the saved path. Cover art
// is optional; callers log failures and tag without an image.
func (c *CoverFetcher) Fetch(ctx context.Context, artURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover art request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover art: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover art download returned status %d", resp.StatusCode)
	}

	coverPath := filepath.Join(dir, "cover"+coverExtension(resp.Header.Get("Content-Type"), artURL))

	out, err := os.Create(coverPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cover art file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(coverPath)
		return "", fmt.Errorf("failed to save cover art: %w", err)
	}
	if written == 0 {
		os.Remove(coverPath)
		return "", fmt.Errorf("cover art response was empty")
	}

	return coverPath, nil
}

// coverExtension picks a file extension from the response content type,
// falling back to the URL path and finally to .jpg.
func coverExtension(contentType, artURL string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	}

	if u, err := url.Parse(artURL); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".png", ".jpg", ".jpeg":
			return ext
		}
	}

	return ".jpg"
}
