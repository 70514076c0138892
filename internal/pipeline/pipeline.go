// Package pipeline drives a single track job through its sequential
// stages: probe, download, convert, identify, enrich, tag, publish.
// Each stage depends on the previous one's output, so there is no
// parallelism inside a job; concurrent jobs share only the progress
// store. Only the download and the final convert/tag/publish legs are
// fatal. Every lookup failure just degrades the metadata.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tunegrab/config"
	"tunegrab/internal/domain"
	"tunegrab/internal/enrich"
	"tunegrab/internal/extract"
	"tunegrab/internal/fingerprint"
	"tunegrab/internal/normalize"
	"tunegrab/internal/progress"
	"tunegrab/internal/storage"
	"tunegrab/internal/tagger"
)

// Progress percentages written at phase boundaries.
const (
	percentAnalyzing   = 5
	percentDownloading = 10
	percentConverting  = 45
	percentEnriching   = 60
	percentResolved    = 75
	percentTagging     = 90
	percentComplete    = 100
)

// ffmpegTimeout bounds each FFmpeg leg. Transcoding multi-hour
// recordings is slow, so this is generous.
const ffmpegTimeout = 10 * time.Minute

// Narrow views of the stage dependencies, satisfied by the real
// implementations and by test doubles.
type resolver interface {
	Resolve(ctx context.Context, audioPath string) (domain.Record, fingerprint.State)
}

type enricher interface {
	Enrich(ctx context.Context, rec domain.Record) domain.Record
}

type converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
	Tag(ctx context.Context, inputPath, outputPath string, rec domain.Record, coverPath string) error
}

type coverFetcher interface {
	Fetch(ctx context.Context, artURL, dir string) (string, error)
}

// Runner owns the stage implementations for the whole process and runs
// any number of jobs with them.
type Runner struct {
	outputFormat string
	source       extract.Source
	resolver     resolver
	enricher     enricher
	tagger       converter
	covers       coverFetcher
	publisher    storage.Publisher
	tracker      *progress.Store
	metrics      *Metrics
	workDir      string
}

// NewRunner wires the pipeline from the configuration. Source
// availability (fingerprinting, art, lyrics) is decided here, once, not
// re-checked per job.
func NewRunner(cfg *config.Config, tracker *progress.Store, publisher storage.Publisher, metrics *Metrics) *Runner {
	return &Runner{
		outputFormat: cfg.OutputFormat,
		source:       extract.NewYtDlp(cfg.Tools.YtDlp),
		resolver:     fingerprint.NewResolver(cfg.Tools.Fpcalc, cfg.Sources.AcoustIDKey),
		enricher:     enrich.New(cfg.Sources),
		tagger:       tagger.NewTagger(cfg.Tools.FFmpeg),
		covers:       tagger.NewCoverFetcher(),
		publisher:    publisher,
		tracker:      tracker,
		metrics:      metrics,
		workDir:      filepath.Join(os.TempDir(), "tunegrab-jobs"),
	}
}

// Run drives one job to a terminal progress state and returns the error
// that ended it, if any.
func (r *Runner) Run(ctx context.Context, jobID, url string) error {
	start := time.Now()
	r.metrics.JobsStarted.Inc()
	defer func() {
		r.metrics.JobDuration.Observe(time.Since(start).Seconds())
	}()

	slog.Info("Starting job", "jobID", jobID, "url", url)
	r.tracker.Write(jobID, progress.Update{Phase: progress.PhasePending, Message: "Job accepted"})

	workDir := filepath.Join(r.workDir, jobID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return r.fail(jobID, 0, fmt.Errorf("failed to create work directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	// The probe leg is soft: a failed probe still leaves a record with
	// sentinel title and artist, and the download decides the job.
	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseAnalyzing,
		Percent: percentAnalyzing,
		Message: "Probing source metadata",
	})
	info, err := r.source.Probe(ctx, url)
	if err != nil {
		slog.Warn("Probe failed, continuing with defaults", "jobID", jobID, "url", url, "error", err)
	}
	rec := normalize.Normalize(info)

	r.tracker.Write(jobID, progress.Update{
		Phase:     progress.PhaseDownloading,
		Percent:   percentDownloading,
		Message:   "Downloading audio",
		Operation: rec.Title,
	})
	audioPath, err := r.source.Download(ctx, url, workDir)
	if err != nil {
		return r.fail(jobID, percentDownloading, fmt.Errorf("failed to download audio: %w", err))
	}
	slog.Info("Download completed", "jobID", jobID, "file", audioPath)

	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseConverting,
		Percent: percentConverting,
		Message: "Converting audio",
	})
	convertedPath := filepath.Join(workDir, "converted."+r.outputFormat)
	if err := r.withFFmpegTimeout(ctx, func(ctx context.Context) error {
		return r.tagger.Convert(ctx, audioPath, convertedPath)
	}); err != nil {
		return r.fail(jobID, percentConverting, fmt.Errorf("failed to convert audio: %w", err))
	}

	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseEnriching,
		Percent: percentEnriching,
		Message: "Identifying track",
	})
	if overlay, state := r.resolver.Resolve(ctx, convertedPath); state == fingerprint.StateEnriched {
		rec = domain.Override(rec, overlay)
	}

	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseEnriching,
		Percent: percentResolved,
		Message: "Fetching cover art and lyrics",
	})
	rec = r.enricher.Enrich(ctx, rec)

	coverPath := ""
	if rec.AlbumArtURL != "" {
		coverPath, err = r.covers.Fetch(ctx, rec.AlbumArtURL, workDir)
		if err != nil {
			slog.Warn("Cover art fetch failed, tagging without it",
				"jobID", jobID, "url", rec.AlbumArtURL, "error", err)
			coverPath = ""
		}
	}

	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseTagging,
		Percent: percentTagging,
		Message: "Writing tags",
	})
	taggedPath := filepath.Join(workDir, "tagged."+r.outputFormat)
	if err := r.withFFmpegTimeout(ctx, func(ctx context.Context) error {
		return r.tagger.Tag(ctx, convertedPath, taggedPath, rec, coverPath)
	}); err != nil {
		return r.fail(jobID, percentTagging, fmt.Errorf("failed to tag audio: %w", err))
	}

	location, err := r.publisher.Publish(ctx, taggedPath, outputName(rec, r.outputFormat))
	if err != nil {
		return r.fail(jobID, percentTagging, fmt.Errorf("failed to publish track: %w", err))
	}

	r.metrics.JobsCompleted.Inc()
	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseCompleted,
		Percent: percentComplete,
		Message: "Saved to " + location,
	})
	slog.Info("Job completed", "jobID", jobID, "location", location, "title", rec.Title, "artist", rec.Artist)
	return nil
}

func (r *Runner) withFFmpegTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()
	return fn(ctx)
}

// fail records the terminal error state and the failure metric, keeping
// the percentage the job had reached.
func (r *Runner) fail(jobID string, percent float64, err error) error {
	cause := failureCause(err)
	r.metrics.JobsFailed.WithLabelValues(string(cause)).Inc()
	r.tracker.Write(jobID, progress.Update{
		Phase:   progress.PhaseError,
		Percent: percent,
		Message: cause.Message(),
		Error:   err.Error(),
	})
	slog.Error("Job failed", "jobID", jobID, "cause", cause, "error", err)
	return err
}

// failureCause buckets a fatal error. Download failures carry their own
// classification; anything else falls into timeout or the network
// catch-all.
func failureCause(err error) extract.FailureCause {
	var downloadErr *extract.DownloadError
	if errors.As(err, &downloadErr) {
		return downloadErr.Cause
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return extract.CauseTimeout
	}
	return extract.CauseNetwork
}

// outputName builds the published file name from the record.
func outputName(rec domain.Record, format string) string {
	return tagger.SafeFileName(fmt.Sprintf("%s - %s", rec.Artist, rec.Title)) + "." + format
}
