package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultLastFMURL = "https://ws.audioscrobbler.com/2.0/"

// Image size ranking, largest first.
var lastFMSizeRank = map[string]int{
	"mega":       5,
	"extralarge": 4,
	"large":      3,
	"medium":     2,
	"small":      1,
}

// LastFMClient fetches album art from the Last.fm album.getinfo
// endpoint.
type LastFMClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewLastFMClient creates a client authenticated with the given API
// key.
func NewLastFMClient(apiKey string) *LastFMClient {
	return &LastFMClient{
		apiKey:     apiKey,
		baseURL:    defaultLastFMURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type lastFMAlbumResponse struct {
	Album struct {
		Image []lastFMImage `json:"image"`
	} `json:"album"`
}

type lastFMImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// AlbumArt returns the largest available image URL for the album, or
// empty when Last.fm has none.
func (c *LastFMClient) AlbumArt(ctx context.Context, artist, album string) (string, error) {
	params := url.Values{}
	params.Set("method", "album.getinfo")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artist)
	params.Set("album", album)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create album info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch album info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("album info returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read album info response: %w", err)
	}

	var parsed lastFMAlbumResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal album info: %w", err)
	}

	return largestImage(parsed.Album.Image), nil
}

func largestImage(images []lastFMImage) string {
	best := ""
	bestRank := 0
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		rank := lastFMSizeRank[img.Size]
		if rank >= bestRank {
			best = img.URL
			bestRank = rank
		}
	}
	return best
}
