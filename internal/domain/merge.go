package domain

// The pipeline folds each stage's contribution into the accumulated
// record with one of two pure operations. Override is used by stages that
// are authoritative for the fields they emit (fingerprint resolution, the
// art and lyrics fan-out); FillGaps is used by stages that may only
// backfill what nobody else produced (the discography catalog lookup). A
// stage that is silent on a field leaves it untouched either way.

// Override returns a new record where every field the overlay carries a
// value for replaces the base value; empty overlay fields pass the base
// through. Sentinel title/artist values in the overlay do not count as
// carried values.
func Override(base, overlay Record) Record {
	out := base
	out.ExternalIDs = copyIDs(base.ExternalIDs)

	if overlay.Title != "" && overlay.Title != UnknownTitle {
		out.Title = overlay.Title
	}
	if overlay.Artist != "" && overlay.Artist != UnknownArtist {
		out.Artist = overlay.Artist
	}
	if overlay.Album != "" {
		out.Album = overlay.Album
	}
	if overlay.AlbumArtist != "" {
		out.AlbumArtist = overlay.AlbumArtist
	}
	if overlay.Date != "" {
		out.Date = overlay.Date
	}
	if overlay.Genre != "" {
		out.Genre = overlay.Genre
	}
	if overlay.Style != "" {
		out.Style = overlay.Style
	}
	if overlay.Label != "" {
		out.Label = overlay.Label
	}
	if overlay.Country != "" {
		out.Country = overlay.Country
	}
	if overlay.CatalogNumber != "" {
		out.CatalogNumber = overlay.CatalogNumber
	}
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	if overlay.Lyrics != "" {
		out.Lyrics = overlay.Lyrics
	}
	if overlay.DurationSeconds > 0 {
		out.DurationSeconds = overlay.DurationSeconds
	}
	if overlay.AlbumArtURL != "" {
		out.AlbumArtURL = overlay.AlbumArtURL
		out.AlbumArtSource = overlay.AlbumArtSource
	}

	for k, v := range overlay.ExternalIDs {
		if v == "" {
			continue
		}
		if out.ExternalIDs == nil {
			out.ExternalIDs = make(map[string]string, len(overlay.ExternalIDs))
		}
		out.ExternalIDs[k] = v
	}

	return out.sanitize()
}

// FillGaps returns a new record where overlay values land only in fields
// the base left unset. Title and artist count as unset while they still
// hold their sentinel values.
func FillGaps(base, overlay Record) Record {
	out := base
	out.ExternalIDs = copyIDs(base.ExternalIDs)

	if (out.Title == "" || out.Title == UnknownTitle) && overlay.Title != "" {
		out.Title = overlay.Title
	}
	if (out.Artist == "" || out.Artist == UnknownArtist) && overlay.Artist != "" {
		out.Artist = overlay.Artist
	}
	if out.Album == "" {
		out.Album = overlay.Album
	}
	if out.AlbumArtist == "" {
		out.AlbumArtist = overlay.AlbumArtist
	}
	if out.Date == "" {
		out.Date = overlay.Date
	}
	if out.Genre == "" {
		out.Genre = overlay.Genre
	}
	if out.Style == "" {
		out.Style = overlay.Style
	}
	if out.Label == "" {
		out.Label = overlay.Label
	}
	if out.Country == "" {
		out.Country = overlay.Country
	}
	if out.CatalogNumber == "" {
		out.CatalogNumber = overlay.CatalogNumber
	}
	if out.Description == "" {
		out.Description = overlay.Description
	}
	if out.Lyrics == "" {
		out.Lyrics = overlay.Lyrics
	}
	if out.DurationSeconds == 0 {
		out.DurationSeconds = overlay.DurationSeconds
	}
	if out.AlbumArtURL == "" && overlay.AlbumArtURL != "" {
		out.AlbumArtURL = overlay.AlbumArtURL
		out.AlbumArtSource = overlay.AlbumArtSource
	}

	for k, v := range overlay.ExternalIDs {
		if v == "" {
			continue
		}
		if _, exists := out.ExternalIDs[k]; exists {
			continue
		}
		if out.ExternalIDs == nil {
			out.ExternalIDs = make(map[string]string, len(overlay.ExternalIDs))
		}
		out.ExternalIDs[k] = v
	}

	return out.sanitize()
}
