// Package fingerprint resolves a local audio file to a canonical
// recording identity through a two-stage lookup: an acoustic
// fingerprint match against the AcoustID database, then a MusicBrainz
// recording fetch for full detail. The whole stage is optional and
// degrades to a no-op when the fpcalc tool or the API key is missing.
package fingerprint

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"tunegrab/internal/domain"
)

var (
	// ErrFpcalcNotFound is returned when the fpcalc binary cannot be found
	ErrFpcalcNotFound = errors.New("fpcalc binary not found")
	// ErrFingerprintFailed is returned when fingerprint generation fails
	ErrFingerprintFailed = errors.New("fingerprint generation failed")
	// ErrNoMatch is returned when no matching recordings are found
	ErrNoMatch = errors.New("no matching recordings found")
)

// State is the terminal outcome of one resolution attempt.
type State string

const (
	StateSkipped  State = "skipped"
	StateQueried  State = "queried"
	StateMatched  State = "matched"
	StateEnriched State = "enriched"
	StateNoMatch  State = "no-match"
	StateFailed   State = "failed"
)

// Resolver chains fingerprint generation, the AcoustID lookup, and the
// MusicBrainz fetch.
type Resolver struct {
	fingerprinter Fingerprinter
	acoustid      *AcoustIDClient
	musicbrainz   *MusicBrainzClient
}

// NewResolver builds a resolver from the fpcalc path and the AcoustID
// application key. An empty key disables the stage entirely.
func NewResolver(fpcalcPath, acoustIDKey string) *Resolver {
	if acoustIDKey == "" {
		return &Resolver{}
	}
	return &Resolver{
		fingerprinter: NewChromaprint(fpcalcPath),
		acoustid:      NewAcoustIDClient(acoustIDKey),
		musicbrainz:   NewMusicBrainzClient(),
	}
}

// Enabled reports whether the resolver has a configured lookup client.
func (r *Resolver) Enabled() bool {
	return r.acoustid != nil
}

// Resolve fingerprints the file and returns an overlay record with the
// canonical recording metadata, plus the terminal state of the
// attempt. The overlay is empty for every outcome except StateEnriched
// so the caller can merge unconditionally.
func (r *Resolver) Resolve(ctx context.Context, audioPath string) (domain.Record, State) {
	if !r.Enabled() {
		slog.Debug("Fingerprint resolution disabled, skipping")
		return domain.Record{}, StateSkipped
	}

	if !r.fingerprinter.IsAvailable() {
		slog.Debug("Fingerprint tool unavailable, skipping resolution")
		return domain.Record{}, StateSkipped
	}

	fp, err := r.fingerprinter.Generate(ctx, audioPath)
	if err != nil {
		slog.Warn("Fingerprinting failed, skipping resolution", "path", audioPath, "error", err)
		return domain.Record{}, StateSkipped
	}

	slog.Debug("Querying fingerprint database", "state", StateQueried, "duration", fp.Duration)

	recordingID, err := r.acoustid.BestRecordingID(ctx, fp.Fingerprint, int(fp.Duration+0.5))
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			slog.Info("No fingerprint match found", "path", audioPath)
			return domain.Record{}, StateNoMatch
		}
		slog.Warn("Fingerprint lookup failed", "error", err)
		return domain.Record{}, StateFailed
	}

	slog.Debug("Fingerprint matched", "state", StateMatched, "recordingID", recordingID)

	recording, err := r.musicbrainz.GetRecording(ctx, recordingID)
	if err != nil {
		slog.Warn("Recording fetch failed", "recordingID", recordingID, "error", err)
		return domain.Record{}, StateFailed
	}

	slog.Info("Resolved canonical recording",
		"recordingID", recordingID,
		"title", recording.Title,
	)
	return overlayFromRecording(recording), StateEnriched
}

// overlayFromRecording maps recording detail onto the fields this
// stage is authoritative for.
func overlayFromRecording(rec *Recording) domain.Record {
	var overlay domain.Record

	overlay.Title = rec.Title

	names := make([]string, 0, len(rec.ArtistCredit))
	for _, credit := range rec.ArtistCredit {
		if name := credit.CreditedName(); name != "" {
			names = append(names, name)
		}
	}
	overlay.Artist = strings.Join(names, ", ")

	if len(rec.Releases) > 0 {
		overlay.Album = rec.Releases[0].Title
		overlay.Date = rec.Releases[0].Date
	}
	if rec.ReleaseGroup != nil {
		if overlay.Album == "" {
			overlay.Album = rec.ReleaseGroup.Title
		}
		if overlay.Date == "" {
			overlay.Date = rec.ReleaseGroup.FirstReleaseDate
		}
	}

	if len(rec.Tags) > 0 {
		overlay.Genre = rec.Tags[0].Name
	}

	ids := map[string]string{domain.IDMusicBrainzRecording: rec.ID}
	if len(rec.Releases) > 0 && rec.Releases[0].ID != "" {
		ids[domain.IDMusicBrainzRelease] = rec.Releases[0].ID
	}
	if rec.ReleaseGroup != nil && rec.ReleaseGroup.ID != "" {
		ids[domain.IDMusicBrainzReleaseGroup] = rec.ReleaseGroup.ID
	}
	overlay.ExternalIDs = ids

	return overlay
}
