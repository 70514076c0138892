package tagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCover(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(imageBytes)
	}))
	defer server.Close()

	dir := t.TempDir()
	coverPath, err := NewCoverFetcher().Fetch(context.Background(), server.URL+"/front-500", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "cover.jpg"), coverPath)
	saved, err := os.ReadFile(coverPath)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, saved)
}

func TestFetchCoverPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	}))
	defer server.Close()

	coverPath, err := NewCoverFetcher().Fetch(context.Background(), server.URL, t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(coverPath, ".png"))
}

func TestFetchCoverNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewCoverFetcher().Fetch(context.Background(), server.URL, t.TempDir())
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchCoverEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := NewCoverFetcher().Fetch(context.Background(), server.URL, dir)
	assert.ErrorContains(t, err, "empty")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "failed download should not leave a file behind")
}

func TestCoverExtension(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		artURL      string
		expected    string
	}{
		{
			name:        "jpeg content type",
			contentType: "image/jpeg",
			artURL:      "https://example.com/art",
			expected:    ".jpg",
		},
		{
			name:        "png content type",
			contentType: "image/png",
			artURL:      "https://example.com/art.jpg",
			expected:    ".png",
		},
		{
			name:        "extension from url path",
			contentType: "application/octet-stream",
			artURL:      "https://example.com/art.PNG",
			expected:    ".png",
		},
		{
			name:        "default",
			contentType: "",
			artURL:      "https://example.com/art",
			expected:    ".jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coverExtension(tt.contentType, tt.artURL))
		})
	}
}
