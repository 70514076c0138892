package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLyricsLookupFreeHit(t *testing.T) {
	geniusCalled := false

	freeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/DJ%20Test/Night%20Drive", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"lyrics": "Driving through the night\nCity lights below"}`))
	}))
	defer freeServer.Close()

	geniusServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geniusCalled = true
	}))
	defer geniusServer.Close()

	client := NewLyricsClient("genius-token")
	client.lyricsURL = freeServer.URL
	client.geniusURL = geniusServer.URL

	lyrics, err := client.Lookup(context.Background(), "DJ Test", "Night Drive")
	require.NoError(t, err)
	assert.Equal(t, "Driving through the night\nCity lights below", lyrics)
	assert.False(t, geniusCalled, "free hit should not reach genius")
}

func TestLyricsLookupFallsBackToGenius(t *testing.T) {
	freeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer freeServer.Close()

	geniusServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "DJ Test Night Drive", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer genius-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"response": {
				"hits": [
					{"result": {"url": "https://genius.com/dj-test-night-drive-lyrics"}},
					{"result": {"url": "https://genius.com/other"}}
				]
			}
		}`))
	}))
	defer geniusServer.Close()

	client := NewLyricsClient("genius-token")
	client.lyricsURL = freeServer.URL
	client.geniusURL = geniusServer.URL

	lyrics, err := client.Lookup(context.Background(), "DJ Test", "Night Drive")
	require.NoError(t, err)
	assert.Equal(t, "https://genius.com/dj-test-night-drive-lyrics", lyrics)
}

func TestLyricsLookupNoTokenStopsAtFreeService(t *testing.T) {
	freeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer freeServer.Close()

	client := NewLyricsClient("")
	client.lyricsURL = freeServer.URL
	client.geniusURL = "http://unreachable.invalid"

	lyrics, err := client.Lookup(context.Background(), "DJ Test", "Night Drive")
	require.NoError(t, err)
	assert.Empty(t, lyrics)
}

func TestLyricsLookupGeniusNoHits(t *testing.T) {
	freeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lyrics": ""}`))
	}))
	defer freeServer.Close()

	geniusServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": {"hits": []}}`))
	}))
	defer geniusServer.Close()

	client := NewLyricsClient("genius-token")
	client.lyricsURL = freeServer.URL
	client.geniusURL = geniusServer.URL

	lyrics, err := client.Lookup(context.Background(), "DJ Test", "Night Drive")
	require.NoError(t, err)
	assert.Empty(t, lyrics)
}
