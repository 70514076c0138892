package fingerprint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunegrab/internal/domain"
)

type mockFingerprinter struct {
	available    bool
	generateFunc func(ctx context.Context, filePath string) (*Fingerprint, error)
}

func (m *mockFingerprinter) IsAvailable() bool {
	return m.available
}

func (m *mockFingerprinter) Generate(ctx context.Context, filePath string) (*Fingerprint, error) {
	return m.generateFunc(ctx, filePath)
}

func TestResolverDisabledWithoutKey(t *testing.T) {
	r := NewResolver("fpcalc", "")

	assert.False(t, r.Enabled())

	overlay, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateSkipped, state)
	assert.Empty(t, overlay.Title)
}

func TestResolveSkipsWhenToolUnavailable(t *testing.T) {
	r := &Resolver{
		fingerprinter: &mockFingerprinter{available: false},
		acoustid:      NewAcoustIDClient("key"),
		musicbrainz:   NewMusicBrainzClient(),
	}

	_, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateSkipped, state)
}

func TestResolveSkipsWhenFingerprintingFails(t *testing.T) {
	r := &Resolver{
		fingerprinter: &mockFingerprinter{
			available: true,
			generateFunc: func(ctx context.Context, filePath string) (*Fingerprint, error) {
				return nil, errors.New("boom")
			},
		},
		acoustid:    NewAcoustIDClient("key"),
		musicbrainz: NewMusicBrainzClient(),
	}

	_, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateSkipped, state)
}

func resolverWithServers(t *testing.T, acoustidHandler, musicbrainzHandler http.HandlerFunc) *Resolver {
	t.Helper()

	acoustidServer := httptest.NewServer(acoustidHandler)
	t.Cleanup(acoustidServer.Close)
	musicbrainzServer := httptest.NewServer(musicbrainzHandler)
	t.Cleanup(musicbrainzServer.Close)

	acoustid := NewAcoustIDClient("key")
	acoustid.lookupURL = acoustidServer.URL
	acoustid.retryWait = time.Millisecond

	musicbrainz := NewMusicBrainzClient()
	musicbrainz.baseURL = musicbrainzServer.URL

	return &Resolver{
		fingerprinter: &mockFingerprinter{
			available: true,
			generateFunc: func(ctx context.Context, filePath string) (*Fingerprint, error) {
				return &Fingerprint{Fingerprint: "AQADtEmi", Duration: 301.4}, nil
			},
		},
		acoustid:    acoustid,
		musicbrainz: musicbrainz,
	}
}

func TestResolveEnriched(t *testing.T) {
	r := resolverWithServers(t,
		func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"status": "ok", "results": [{"id": "a", "score": 0.98, "recordings": [{"id": "rec-uuid"}]}]}`))
		},
		func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "/recording/rec-uuid", req.URL.Path)
			_, _ = w.Write([]byte(sampleRecordingJSON))
		},
	)

	overlay, state := r.Resolve(context.Background(), "/tmp/file.flac")

	require.Equal(t, StateEnriched, state)
	assert.Equal(t, "Night Drive", overlay.Title)
	assert.Equal(t, "DJ Test, MC Example", overlay.Artist, "credited names joined with a comma")
	assert.Equal(t, "Night EP", overlay.Album)
	assert.Equal(t, "2021-03-12", overlay.Date)
	assert.Equal(t, "deep house", overlay.Genre)
	assert.Equal(t, "rec-uuid", overlay.ExternalID(domain.IDMusicBrainzRecording))
	assert.Equal(t, "rel-uuid", overlay.ExternalID(domain.IDMusicBrainzRelease))
	assert.Equal(t, "rg-uuid", overlay.ExternalID(domain.IDMusicBrainzReleaseGroup))
}

func TestResolveNoMatch(t *testing.T) {
	r := resolverWithServers(t,
		func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"status": "ok", "results": []}`))
		},
		func(w http.ResponseWriter, req *http.Request) {
			t.Error("musicbrainz should not be queried without a match")
		},
	)

	overlay, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateNoMatch, state)
	assert.Empty(t, overlay.Title)
}

func TestResolveFailedLookup(t *testing.T) {
	r := resolverWithServers(t,
		func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		func(w http.ResponseWriter, req *http.Request) {},
	)

	_, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateFailed, state)
}

func TestResolveFailedRecordingFetch(t *testing.T) {
	r := resolverWithServers(t,
		func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"status": "ok", "results": [{"id": "a", "score": 0.9, "recordings": [{"id": "rec-uuid"}]}]}`))
		},
		func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	)

	_, state := r.Resolve(context.Background(), "/tmp/file.flac")
	assert.Equal(t, StateFailed, state)
}

func TestOverlayFromRecordingFallbacks(t *testing.T) {
	rec := &Recording{
		ID:    "rec-uuid",
		Title: "Night Drive",
		ArtistCredit: []ArtistCredit{
			{Name: "DJ Test"},
		},
		ReleaseGroup: &ReleaseGroup{ID: "rg-uuid", Title: "Night", FirstReleaseDate: "2021-01-01"},
	}

	overlay := overlayFromRecording(rec)

	assert.Equal(t, "Night", overlay.Album, "release group title when no releases")
	assert.Equal(t, "2021-01-01", overlay.Date)
	assert.Empty(t, overlay.Genre)
	assert.Equal(t, "", overlay.ExternalID(domain.IDMusicBrainzRelease))
	assert.Equal(t, "rg-uuid", overlay.ExternalID(domain.IDMusicBrainzReleaseGroup))
}
