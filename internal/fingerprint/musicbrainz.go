package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMusicBrainzURL = "https://musicbrainz.org/ws/2"

	// MusicBrainz etiquette requires an identifying User-Agent.
	musicBrainzUserAgent = "tunegrab/1.0 (https://github.com/tunegrab/tunegrab)"
)

// MusicBrainzClient fetches recording detail from the MusicBrainz
// web service.
type MusicBrainzClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewMusicBrainzClient creates a client for the public API.
func NewMusicBrainzClient() *MusicBrainzClient {
	return &MusicBrainzClient{
		baseURL:    defaultMusicBrainzURL,
		userAgent:  musicBrainzUserAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Recording is the subset of MusicBrainz recording detail the pipeline
// consumes.
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []Release      `json:"releases"`
	ReleaseGroup *ReleaseGroup  `json:"release-group"`
	Tags         []RecordingTag `json:"tags"`
}

// ArtistCredit is one credited artist on a recording.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// CreditedName returns the name as credited, falling back to the
// artist's canonical name.
func (a ArtistCredit) CreditedName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Artist.Name
}

// Release is one release carrying the recording.
type Release struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Country string `json:"country"`
}

// ReleaseGroup groups the releases of one logical album.
type ReleaseGroup struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	FirstReleaseDate string `json:"first-release-date"`
}

// RecordingTag is a community tag on a recording.
type RecordingTag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// GetRecording fetches a recording by id including artist credits,
// releases, release groups, and tags.
func (m *MusicBrainzClient) GetRecording(ctx context.Context, recordingID string) (*Recording, error) {
	url := fmt.Sprintf("%s/recording/%s?inc=artist-credits+releases+release-groups+tags&fmt=json", m.baseURL, recordingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recording lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording response: %w", err)
	}

	var recording Recording
	if err := json.Unmarshal(body, &recording); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording: %w", err)
	}

	return &recording, nil
}
