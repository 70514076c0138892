// Package domain defines the canonical track metadata record threaded
// through the enrichment pipeline and the merge rules that combine the
// contributions of the individual lookup stages.
package domain

import (
	"strings"
	"unicode/utf8"
)

// Sentinel values used when a source cannot provide a title or artist.
// Downstream consumers always see these instead of an empty field.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// Field length bounds. Oversized values are truncated before they reach
// the tagging step, which embeds them into the output container.
const (
	MaxDescriptionLen = 500
	MaxLyricsLen      = 5000
)

// External identifier keys stored in Record.ExternalIDs. These are
// internal bookkeeping for later lookups, not user-visible tags.
const (
	IDMusicBrainzRecording    = "musicbrainz_recording"
	IDMusicBrainzRelease      = "musicbrainz_release"
	IDMusicBrainzReleaseGroup = "musicbrainz_release_group"
)

// Record is the metadata accumulator for a single track. Stages never
// mutate a Record in place; each one derives a new value through Override
// or FillGaps, so re-running a merge with the same inputs is idempotent.
type Record struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album,omitempty"`
	AlbumArtist   string `json:"album_artist,omitempty"`
	Date          string `json:"date,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Style         string `json:"style,omitempty"`
	Label         string `json:"label,omitempty"`
	Country       string `json:"country,omitempty"`
	CatalogNumber string `json:"catalog_number,omitempty"`
	Description   string `json:"description,omitempty"`
	Lyrics        string `json:"lyrics,omitempty"`

	DurationSeconds int `json:"duration_seconds,omitempty"`

	AlbumArtURL    string `json:"album_art_url,omitempty"`
	AlbumArtSource string `json:"album_art_source,omitempty"`

	ExternalIDs map[string]string `json:"-"`
}

// New returns a Record carrying only the sentinel title and artist.
func New() Record {
	return Record{
		Title:  UnknownTitle,
		Artist: UnknownArtist,
	}
}

// Clean collapses all interior whitespace runs to single spaces and trims
// the result. Every string assigned to a Record field goes through here.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanBounded cleans s and truncates it to at most max bytes. The cut
// backs off to a rune boundary, and a space left at the cut is trimmed,
// so a bounded field is still a cleaned string.
func CleanBounded(s string, max int) string {
	s = Clean(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], " ")
}

// sanitize enforces the field invariants: collapsed whitespace, length
// bounds on the free-text fields, and the title/artist sentinels.
func (r Record) sanitize() Record {
	r.Title = Clean(r.Title)
	r.Artist = Clean(r.Artist)
	r.Album = Clean(r.Album)
	r.AlbumArtist = Clean(r.AlbumArtist)
	r.Date = Clean(r.Date)
	r.Genre = Clean(r.Genre)
	r.Style = Clean(r.Style)
	r.Label = Clean(r.Label)
	r.Country = Clean(r.Country)
	r.CatalogNumber = Clean(r.CatalogNumber)
	r.Description = CleanBounded(r.Description, MaxDescriptionLen)
	r.Lyrics = CleanBounded(r.Lyrics, MaxLyricsLen)
	r.AlbumArtURL = strings.TrimSpace(r.AlbumArtURL)
	r.AlbumArtSource = Clean(r.AlbumArtSource)

	if r.Title == "" {
		r.Title = UnknownTitle
	}
	if r.Artist == "" {
		r.Artist = UnknownArtist
	}
	if r.DurationSeconds < 0 {
		r.DurationSeconds = 0
	}
	return r
}

// ExternalID returns the stored identifier for key, or "".
func (r Record) ExternalID(key string) string {
	return r.ExternalIDs[key]
}

// copyIDs returns a copy of ids so derived records never share a map
// with their inputs.
func copyIDs(ids map[string]string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]string, len(ids))
	for k, v := range ids {
		out[k] = v
	}
	return out
}
