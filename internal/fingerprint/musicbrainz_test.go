package fingerprint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecordingJSON = `{
	"id": "rec-uuid",
	"title": "Night Drive",
	"artist-credit": [
		{"name": "DJ Test", "artist": {"name": "DJ Test Official"}},
		{"name": "", "artist": {"name": "MC Example"}}
	],
	"releases": [
		{"id": "rel-uuid", "title": "Night EP", "date": "2021-03-12", "country": "DE"}
	],
	"release-group": {"id": "rg-uuid", "title": "Night", "first-release-date": "2021-01-01"},
	"tags": [{"count": 5, "name": "deep house"}, {"count": 2, "name": "electronic"}]
}`

func TestGetRecording(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recording/rec-uuid", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "artist-credits")
		assert.Contains(t, r.URL.RawQuery, "fmt=json")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleRecordingJSON))
	}))
	defer server.Close()

	client := NewMusicBrainzClient()
	client.baseURL = server.URL

	rec, err := client.GetRecording(context.Background(), "rec-uuid")
	require.NoError(t, err)

	assert.Equal(t, "rec-uuid", rec.ID)
	assert.Equal(t, "Night Drive", rec.Title)
	require.Len(t, rec.ArtistCredit, 2)
	assert.Equal(t, "DJ Test", rec.ArtistCredit[0].CreditedName())
	assert.Equal(t, "MC Example", rec.ArtistCredit[1].CreditedName(), "falls back to the canonical artist name")
	require.Len(t, rec.Releases, 1)
	assert.Equal(t, "Night EP", rec.Releases[0].Title)
	require.NotNil(t, rec.ReleaseGroup)
	assert.Equal(t, "rg-uuid", rec.ReleaseGroup.ID)
	require.Len(t, rec.Tags, 2)
	assert.Equal(t, "deep house", rec.Tags[0].Name)
}

func TestGetRecordingNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewMusicBrainzClient()
	client.baseURL = server.URL

	_, err := client.GetRecording(context.Background(), "missing")
	assert.ErrorContains(t, err, "status 404")
}
