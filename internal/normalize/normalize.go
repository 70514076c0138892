// Package normalize turns raw extractor output into a structured
// metadata record. Structured tags are taken by precedence first, then
// the free-text description is scanned with an ordered set of pattern
// rules to fill remaining gaps. The whole pass is pure and never fails:
// unmatched patterns simply leave fields unset.
package normalize

import (
	"fmt"
	"regexp"

	"tunegrab/internal/domain"
	"tunegrab/internal/extract"
)

var eightDigitDate = regexp.MustCompile(`^\d{8}$`)

// Normalize builds the initial candidate record from a probe result. A
// nil info yields a fully defaulted record so a failed probe never
// aborts the caller.
func Normalize(info *extract.RawInfo) domain.Record {
	rec := domain.New()
	if info == nil {
		return rec
	}

	// Title: explicit track tag beats the generic title.
	if v := domain.Clean(info.Track); v != "" {
		rec.Title = v
	} else if v := domain.Clean(info.Title); v != "" {
		rec.Title = v
	}

	// Artist: tagged artist, then credit list, then album artist, then
	// the channel or uploader as a last resort. Only the tag-derived
	// values are confident enough to block description parsing.
	artistConfident := false
	switch {
	case domain.Clean(info.Artist) != "":
		rec.Artist = domain.Clean(info.Artist)
		artistConfident = true
	case len(info.Artists) > 0 && domain.Clean(info.Artists[0].Name) != "":
		rec.Artist = domain.Clean(info.Artists[0].Name)
		artistConfident = true
	case domain.Clean(info.AlbumArtist) != "":
		rec.Artist = domain.Clean(info.AlbumArtist)
		artistConfident = true
	case domain.Clean(info.Channel) != "":
		rec.Artist = domain.Clean(info.Channel)
	case domain.Clean(info.Uploader) != "":
		rec.Artist = domain.Clean(info.Uploader)
	}

	if v := domain.Clean(info.AlbumArtist); v != "" {
		rec.AlbumArtist = v
	}

	// Album: explicit tag beats the playlist title.
	if v := domain.Clean(info.Album); v != "" {
		rec.Album = v
	} else if v := domain.Clean(info.PlaylistTitle); v != "" {
		rec.Album = v
	}

	rec.Date = normalizeDate(info.ReleaseDate, info.UploadDate, info.ReleaseYear)

	if v := domain.Clean(info.Genre); v != "" {
		rec.Genre = v
	}

	rec.Description = domain.CleanBounded(info.Description, domain.MaxDescriptionLen)
	rec.DurationSeconds = int(info.Duration + 0.5)

	if v := domain.Clean(info.Thumbnail); v != "" {
		rec.AlbumArtURL = v
		rec.AlbumArtSource = "thumbnail"
	}

	scanDescription(info.Description, &rec, artistConfident)

	return rec
}

// normalizeDate prefers a full 8-digit date, reformatted to
// YYYY-MM-DD, over a bare release year.
func normalizeDate(releaseDate, uploadDate string, releaseYear int) string {
	for _, raw := range []string{domain.Clean(releaseDate), domain.Clean(uploadDate)} {
		if eightDigitDate.MatchString(raw) {
			return fmt.Sprintf("%s-%s-%s", raw[0:4], raw[4:6], raw[6:8])
		}
	}
	if releaseYear >= 1000 && releaseYear <= 9999 {
		return fmt.Sprintf("%d", releaseYear)
	}
	return ""
}
