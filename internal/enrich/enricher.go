// Package enrich queries secondary metadata sources for cover art,
// catalog attributes, and lyrics. Every source is independently
// optional: availability is decided once at construction from the
// configured credentials, sources inside a group are consulted in
// fallback order with the first success winning, and any failure just
// leaves the group's fields unset.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"tunegrab/config"
	"tunegrab/internal/domain"
)

// Source tags recorded alongside a found cover art URL.
const (
	ArtSourceCoverArtArchive = "coverartarchive"
	ArtSourceLastFM          = "lastfm"
	ArtSourceSpotify         = "spotify"
)

// Enricher fans a record out to the configured sources. A nil client
// means the source was not configured and its leg is skipped.
type Enricher struct {
	coverart *CoverArtClient
	lastfm   *LastFMClient
	spotify  *SpotifyClient
	discogs  *DiscogsClient
	lyrics   *LyricsClient
}

// New builds an enricher from the source credentials. Keyless sources
// (Cover Art Archive, lyrics.ovh) are always on.
func New(sources config.SourcesConfig) *Enricher {
	e := &Enricher{
		coverart: NewCoverArtClient(),
		lyrics:   NewLyricsClient(sources.GeniusAccessToken),
	}
	if sources.LastFMKey != "" {
		e.lastfm = NewLastFMClient(sources.LastFMKey)
	}
	if sources.SpotifyClientID != "" && sources.SpotifyClientSecret != "" {
		e.spotify = NewSpotifyClient(sources.SpotifyClientID, sources.SpotifyClientSecret)
	}
	if sources.DiscogsToken != "" {
		e.discogs = NewDiscogsClient(sources.DiscogsToken)
	}
	return e
}

// Enrich folds the fan-out results into the record: found cover art
// replaces any placeholder art, while catalog attributes and lyrics
// only fill gaps. Source failures never propagate.
func (e *Enricher) Enrich(ctx context.Context, rec domain.Record) domain.Record {
	rec = domain.Override(rec, e.artOverlay(ctx, rec))
	rec = domain.FillGaps(rec, e.catalogOverlay(ctx, rec))
	rec = domain.FillGaps(rec, e.lyricsOverlay(ctx, rec))
	return rec
}

// artOverlay walks the cover art fallback chain: archive by release,
// archive by release group, Last.fm, then Spotify.
func (e *Enricher) artOverlay(ctx context.Context, rec domain.Record) domain.Record {
	if id := rec.ExternalID(domain.IDMusicBrainzRelease); id != "" {
		url, err := e.coverart.FrontCoverByRelease(ctx, id)
		if err != nil {
			slog.Warn("Cover art release lookup failed", "releaseID", id, "error", err)
		} else if url != "" {
			return artRecord(url, ArtSourceCoverArtArchive)
		}
	}

	if id := rec.ExternalID(domain.IDMusicBrainzReleaseGroup); id != "" {
		url, err := e.coverart.FrontCoverByReleaseGroup(ctx, id)
		if err != nil {
			slog.Warn("Cover art release-group lookup failed", "releaseGroupID", id, "error", err)
		} else if url != "" {
			return artRecord(url, ArtSourceCoverArtArchive)
		}
	}

	if e.lastfm != nil && rec.Artist != domain.UnknownArtist && rec.Album != "" {
		url, err := e.lastfm.AlbumArt(ctx, rec.Artist, rec.Album)
		if err != nil {
			slog.Warn("Last.fm art lookup failed", "artist", rec.Artist, "album", rec.Album, "error", err)
		} else if url != "" {
			return artRecord(url, ArtSourceLastFM)
		}
	}

	if e.spotify != nil && rec.Title != domain.UnknownTitle && rec.Artist != domain.UnknownArtist {
		url, err := e.spotify.AlbumArt(ctx, rec.Title, rec.Artist)
		if err != nil {
			slog.Warn("Spotify art lookup failed", "title", rec.Title, "artist", rec.Artist, "error", err)
		} else if url != "" {
			return artRecord(url, ArtSourceSpotify)
		}
	}

	return domain.Record{}
}

func artRecord(url, source string) domain.Record {
	return domain.Record{AlbumArtURL: url, AlbumArtSource: source}
}

// catalogOverlay backfills genre, style, label, country, and year from
// a Discogs search. It never overwrites resolver-sourced values; the
// gap-fill merge upstream guarantees that.
func (e *Enricher) catalogOverlay(ctx context.Context, rec domain.Record) domain.Record {
	if e.discogs == nil || rec.Artist == domain.UnknownArtist {
		return domain.Record{}
	}

	query := rec.Artist + " " + rec.Album
	if rec.Album == "" {
		if rec.Title == domain.UnknownTitle {
			return domain.Record{}
		}
		query = rec.Artist + " " + rec.Title
	}

	result, err := e.discogs.Search(ctx, query)
	if err != nil {
		slog.Warn("Discogs search failed", "query", query, "error", err)
		return domain.Record{}
	}
	if result == nil {
		return domain.Record{}
	}

	overlay := domain.Record{
		Country: result.Country,
		Date:    result.Year,
	}
	if len(result.Genre) > 0 {
		overlay.Genre = result.Genre[0]
	}
	if len(result.Style) > 0 {
		overlay.Style = strings.Join(result.Style, ", ")
	}
	if len(result.Label) > 0 {
		overlay.Label = result.Label[0]
	}
	return overlay
}

// lyricsOverlay needs a real artist and title; sentinels would only
// produce junk lookups.
func (e *Enricher) lyricsOverlay(ctx context.Context, rec domain.Record) domain.Record {
	if rec.Artist == domain.UnknownArtist || rec.Title == domain.UnknownTitle {
		return domain.Record{}
	}

	lyrics, err := e.lyrics.Lookup(ctx, rec.Artist, rec.Title)
	if err != nil {
		slog.Warn("Lyrics lookup failed", "artist", rec.Artist, "title", rec.Title, "error", err)
		return domain.Record{}
	}

	return domain.Record{Lyrics: lyrics}
}
