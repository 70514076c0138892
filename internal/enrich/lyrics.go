package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultLyricsOvhURL = "https://api.lyrics.ovh/v1"
	defaultGeniusURL    = "https://api.genius.com"
)

// LyricsClient looks lyrics up from the free lyrics.ovh service, with
// a Genius search as the fallback. The Genius terms forbid returning
// lyrics text through the API, so its leg yields only the lyrics-page
// URL.
type LyricsClient struct {
	geniusToken string
	lyricsURL   string
	geniusURL   string
	httpClient  *http.Client
}

// NewLyricsClient creates a client. An empty Genius token disables the
// fallback leg only; the free lookup needs no credential.
func NewLyricsClient(geniusToken string) *LyricsClient {
	return &LyricsClient{
		geniusToken: geniusToken,
		lyricsURL:   defaultLyricsOvhURL,
		geniusURL:   defaultGeniusURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup tries the free service by exact artist and title, then the
// Genius search. Returns empty when neither yields anything.
func (l *LyricsClient) Lookup(ctx context.Context, artist, title string) (string, error) {
	lyrics, err := l.freeLookup(ctx, artist, title)
	if err != nil {
		slog.Debug("Free lyrics lookup failed", "artist", artist, "title", title, "error", err)
	}
	if lyrics != "" {
		return lyrics, nil
	}

	if l.geniusToken == "" {
		return "", nil
	}

	return l.geniusLookup(ctx, artist, title)
}

type lyricsOvhResponse struct {
	Lyrics string `json:"lyrics"`
}

func (l *LyricsClient) freeLookup(ctx context.Context, artist, title string) (string, error) {
	lookupURL := fmt.Sprintf("%s/%s/%s", l.lyricsURL, url.PathEscape(artist), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lyrics request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics response: %w", err)
	}

	var parsed lyricsOvhResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal lyrics response: %w", err)
	}

	return parsed.Lyrics, nil
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL string `json:"url"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

func (l *LyricsClient) geniusLookup(ctx context.Context, artist, title string) (string, error) {
	params := url.Values{}
	params.Set("q", artist+" "+title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.geniusURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create genius request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.geniusToken)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to search genius: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read genius response: %w", err)
	}

	var parsed geniusSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal genius response: %w", err)
	}

	if len(parsed.Response.Hits) == 0 {
		return "", nil
	}

	return parsed.Response.Hits[0].Result.URL, nil
}
