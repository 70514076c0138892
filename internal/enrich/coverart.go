package enrich

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultCoverArtURL = "https://coverartarchive.org"

// CoverArtClient checks the Cover Art Archive for front covers. The
// archive is open and needs no credential.
type CoverArtClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoverArtClient creates a client for the public archive.
func NewCoverArtClient() *CoverArtClient {
	return &CoverArtClient{
		baseURL:    defaultCoverArtURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FrontCoverByRelease returns the URL of the 500px front cover for a
// release, or empty when the archive has none.
func (c *CoverArtClient) FrontCoverByRelease(ctx context.Context, releaseID string) (string, error) {
	return c.headCheck(ctx, fmt.Sprintf("%s/release/%s/front-500", c.baseURL, releaseID))
}

// FrontCoverByReleaseGroup is the release-group variant of the lookup.
func (c *CoverArtClient) FrontCoverByReleaseGroup(ctx context.Context, releaseGroupID string) (string, error) {
	return c.headCheck(ctx, fmt.Sprintf("%s/release-group/%s/front-500", c.baseURL, releaseGroupID))
}

// headCheck verifies the cover exists before handing its URL out. A 404
// means "try the next source", not an error.
func (c *CoverArtClient) headCheck(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover art request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check cover art: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return url, nil
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("cover art check returned status %d", resp.StatusCode)
	}
}
