package enrich

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyClient searches the Spotify catalog for album art using the
// client-credentials grant. Tokens are fetched per call and never
// cached.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	baseURL      string
}

// NewSpotifyClient creates a client with the given application
// credentials.
func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyauth.TokenURL,
	}
}

// AlbumArt searches for the track and returns the highest-resolution
// image of the first result's album, or empty when nothing matches.
func (c *SpotifyClient) AlbumArt(ctx context.Context, title, artist string) (string, error) {
	config := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)

	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.baseURL))
	}
	client := spotify.New(httpClient, opts...)

	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	results, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return "", nil
	}

	return largestSpotifyImage(results.Tracks.Tracks[0].Album.Images), nil
}

func largestSpotifyImage(images []spotify.Image) string {
	best := ""
	bestArea := 0
	for _, img := range images {
		area := int(img.Width) * int(img.Height)
		if img.URL != "" && area >= bestArea {
			best = img.URL
			bestArea = area
		}
	}
	return best
}
