package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tunegrab/internal/domain"
	"tunegrab/internal/extract"
)

func TestNormalizeNil(t *testing.T) {
	rec := Normalize(nil)

	assert.Equal(t, domain.UnknownTitle, rec.Title)
	assert.Equal(t, domain.UnknownArtist, rec.Artist)
}

func TestNormalizeTitlePrecedence(t *testing.T) {
	rec := Normalize(&extract.RawInfo{Track: "Night Drive", Title: "DJ Test - Night Drive (Official)"})
	assert.Equal(t, "Night Drive", rec.Title, "track tag beats generic title")

	rec = Normalize(&extract.RawInfo{Title: "Night Drive"})
	assert.Equal(t, "Night Drive", rec.Title)
}

func TestNormalizeArtistPrecedence(t *testing.T) {
	testCases := []struct {
		name     string
		info     extract.RawInfo
		expected string
	}{
		{
			"artist tag wins",
			extract.RawInfo{Artist: "DJ Test", Artists: []extract.ArtistCredit{{Name: "Other"}}, Channel: "Chan"},
			"DJ Test",
		},
		{
			"first of credit list",
			extract.RawInfo{Artists: []extract.ArtistCredit{{Name: "First Credit"}, {Name: "Second"}}},
			"First Credit",
		},
		{
			"album artist next",
			extract.RawInfo{AlbumArtist: "Album Artist"},
			"Album Artist",
		},
		{
			"channel over uploader",
			extract.RawInfo{Channel: "Test Channel", Uploader: "uploader01"},
			"Test Channel",
		},
		{
			"uploader last",
			extract.RawInfo{Uploader: "uploader01"},
			"uploader01",
		},
		{
			"nothing yields sentinel",
			extract.RawInfo{},
			domain.UnknownArtist,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Normalize(&tc.info)
			assert.Equal(t, tc.expected, rec.Artist)
		})
	}
}

func TestNormalizeAlbumPrecedence(t *testing.T) {
	rec := Normalize(&extract.RawInfo{Album: "Night EP", PlaylistTitle: "Uploaded Mixes"})
	assert.Equal(t, "Night EP", rec.Album)

	rec = Normalize(&extract.RawInfo{PlaylistTitle: "Uploaded Mixes"})
	assert.Equal(t, "Uploaded Mixes", rec.Album)
}

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		name     string
		info     extract.RawInfo
		expected string
	}{
		{"release date formatted", extract.RawInfo{ReleaseDate: "20230615"}, "2023-06-15"},
		{"upload date fallback", extract.RawInfo{UploadDate: "20230615"}, "2023-06-15"},
		{"release date beats upload date", extract.RawInfo{ReleaseDate: "20210312", UploadDate: "20230615"}, "2021-03-12"},
		{"bare year stays bare", extract.RawInfo{ReleaseYear: 2019}, "2019"},
		{"malformed date ignored", extract.RawInfo{UploadDate: "2023-06"}, ""},
		{"nothing", extract.RawInfo{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Normalize(&tc.info)
			assert.Equal(t, tc.expected, rec.Date)
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	rec := Normalize(&extract.RawInfo{Duration: 301.6})
	assert.Equal(t, 302, rec.DurationSeconds)
}

func TestNormalizeThumbnailAsFallbackArt(t *testing.T) {
	rec := Normalize(&extract.RawInfo{Thumbnail: "https://img.example/a.jpg"})

	assert.Equal(t, "https://img.example/a.jpg", rec.AlbumArtURL)
	assert.Equal(t, "thumbnail", rec.AlbumArtSource)
}

func TestNormalizeBoundsDescription(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'a'
	}

	rec := Normalize(&extract.RawInfo{Description: string(long)})
	assert.Len(t, rec.Description, domain.MaxDescriptionLen)
}

// The canonical worked example for description parsing.
func TestNormalizeDescriptionExample(t *testing.T) {
	info := &extract.RawInfo{
		Title:       "untitled",
		Description: "Artist: DJ Test\nAlbum: Night EP\nLabel: Test Records\nCountry: DE\nReleased: 2021\nGenre / Style: Electronic, Deep House",
	}

	rec := Normalize(info)

	assert.Equal(t, "DJ Test", rec.Artist)
	assert.Equal(t, "Night EP", rec.Album)
	assert.Equal(t, "Test Records", rec.Label)
	assert.Equal(t, "DE", rec.Country)
	assert.Equal(t, "2021", rec.Date)
	assert.Equal(t, "Electronic", rec.Genre)
	assert.Equal(t, "Deep House", rec.Style)
}

func TestNormalizeDescriptionNeverOverridesTags(t *testing.T) {
	info := &extract.RawInfo{
		Artist:      "Tagged Artist",
		Album:       "Tagged Album",
		Genre:       "Tagged Genre",
		Description: "Artist: Description Artist\nAlbum: Description Album\nGenre: Description Genre",
	}

	rec := Normalize(info)

	assert.Equal(t, "Tagged Artist", rec.Artist)
	assert.Equal(t, "Tagged Album", rec.Album)
	assert.Equal(t, "Tagged Genre", rec.Genre)
}

func TestNormalizeDescriptionOverridesChannelArtist(t *testing.T) {
	// A channel-derived artist is a weak guess; an explicit label in
	// the description replaces it.
	info := &extract.RawInfo{
		Channel:     "Some Music Channel",
		Description: "Artist: DJ Test",
	}

	rec := Normalize(info)
	assert.Equal(t, "DJ Test", rec.Artist)
}
