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

const defaultDiscogsURL = "https://api.discogs.com"

// DiscogsClient searches the Discogs database for catalog attributes.
type DiscogsClient struct {
	token      string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewDiscogsClient creates a client authenticated with a personal
// access token.
func NewDiscogsClient(token string) *DiscogsClient {
	return &DiscogsClient{
		token:      token,
		baseURL:    defaultDiscogsURL,
		userAgent:  "tunegrab/1.0",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type discogsSearchResponse struct {
	Results []DiscogsResult `json:"results"`
}

// DiscogsResult is the subset of a search hit the pipeline backfills
// from.
type DiscogsResult struct {
	Genre   []string `json:"genre"`
	Style   []string `json:"style"`
	Label   []string `json:"label"`
	Country string   `json:"country"`
	Year    string   `json:"year"`
}

// Search runs a free-text search and returns the first hit, or nil
// when nothing matches.
func (d *DiscogsClient) Search(ctx context.Context, query string) (*DiscogsResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("token", d.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/database/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search discogs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discogs search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed discogsSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	return &parsed.Results[0], nil
}
