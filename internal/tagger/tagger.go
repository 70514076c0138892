// Package tagger runs the FFmpeg legs of the pipeline: transcoding the
// downloaded audio into the output format, then embedding the resolved
// metadata and cover art. Tagging is the only leg beside the download
// whose failure aborts a job.
package tagger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tunegrab/internal/domain"
)

// Supported output formats and their FFmpeg codecs and muxers.
var supportedFormats = map[string]struct {
	codec  string
	format string
	lossy  bool
}{
	"mp3":  {"libmp3lame", "mp3", true},
	"m4a":  {"aac", "mp4", true},
	"wav":  {"pcm_s16le", "wav", false},
	"flac": {"flac", "flac", false},
}

const (
	defaultAudioBitrate = "192k"
	defaultID3Version   = "3"
)

var (
	ErrFileNotFound      = fmt.Errorf("file not found")
	ErrFileEmpty         = fmt.Errorf("file is empty")
	ErrInvalidPath       = fmt.Errorf("invalid path")
	ErrUnsupportedFormat = fmt.Errorf("unsupported output format")
)

// ffmpegError wraps FFmpeg command errors with the invocation and its
// combined output for diagnosis.
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with a truncated command line.
func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// Tagger shells out to FFmpeg. Deadlines come from the caller's context;
// transcodes of long recordings can take minutes.
type Tagger struct {
	binary string
}

// NewTagger creates a Tagger using the given FFmpeg binary, falling back
// to PATH lookup of "ffmpeg" when empty.
func NewTagger(binary string) *Tagger {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Tagger{binary: binary}
}

// Convert transcodes inputPath into the format named by outputPath's
// extension. No metadata is written; Tag does that in a second pass on
// the converted file.
func (t *Tagger) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := validateFile(inputPath); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	format, err := outputFormat(outputPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Debug("Converting audio", "input", inputPath, "output", outputPath, "format", format)

	return t.run(ctx, buildConvertArgs(inputPath, outputPath, format))
}

// Tag remuxes inputPath into outputPath with the record's metadata and,
// when coverPath is non-empty, the cover image as an attached picture.
// The audio stream is copied, not re-encoded; the input must already be
// in the output format.
func (t *Tagger) Tag(ctx context.Context, inputPath, outputPath string, rec domain.Record, coverPath string) error {
	if err := validateFile(inputPath); err != nil {
		return fmt.Errorf("tagging failed: %w", err)
	}

	format, err := outputFormat(outputPath)
	if err != nil {
		return err
	}

	if coverPath != "" && format == "wav" {
		// The WAV container has no attached-picture support.
		slog.Warn("Cover art not supported for WAV output, tagging without it", "path", coverPath)
		coverPath = ""
	}
	if coverPath != "" {
		if err := validateFile(coverPath); err != nil {
			slog.Warn("Cover art file unusable, tagging without it", "path", coverPath, "error", err)
			coverPath = ""
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Debug("Tagging audio",
		"input", inputPath,
		"output", outputPath,
		"title", rec.Title,
		"artist", rec.Artist,
		"cover", coverPath != "",
	)

	return t.run(ctx, buildTagArgs(inputPath, outputPath, format, rec, coverPath))
}

func (t *Tagger) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, output, err)
	}
	return nil
}

// outputFormat extracts and validates the format from a path extension.
func outputFormat(outputPath string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(outputPath), "."))
	if _, ok := supportedFormats[format]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return format, nil
}

// buildConvertArgs assembles the transcode argument list.
func buildConvertArgs(inputPath, outputPath, format string) []string {
	codecInfo := supportedFormats[format]

	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:a",
		"-c:a", codecInfo.codec,
		"-f", codecInfo.format,
	}
	if codecInfo.lossy {
		args = append(args, "-b:a", defaultAudioBitrate)
	}
	args = appendFormatFlags(args, format)

	return append(args, outputPath)
}

// buildTagArgs assembles the metadata pass argument list: stream copy
// plus metadata pairs plus the optional attached cover.
func buildTagArgs(inputPath, outputPath, format string, rec domain.Record, coverPath string) []string {
	codecInfo := supportedFormats[format]

	args := []string{"-y", "-i", inputPath}
	if coverPath != "" {
		args = append(args, "-i", coverPath)
	}

	args = append(args, "-map", "0:a")
	if coverPath != "" {
		args = append(args,
			"-map", "1:v",
			"-c:v", "mjpeg",
			"-disposition:v:0", "attached_pic",
		)
	}

	args = append(args,
		"-c:a", "copy",
		"-f", codecInfo.format,
	)
	args = appendFormatFlags(args, format)

	args = append(args, metadataArgs(rec)...)

	if coverPath != "" {
		args = append(args,
			"-metadata:s:v", "title=Album cover",
			"-metadata:s:v", "comment=Cover (front)",
		)
	}

	return append(args, outputPath)
}

func appendFormatFlags(args []string, format string) []string {
	switch format {
	case "m4a":
		args = append(args, "-movflags", "+faststart")
	case "mp3":
		args = append(args, "-id3v2_version", defaultID3Version)
	}
	return args
}

// metadataArgs maps record fields onto FFmpeg metadata pairs. The title
// and artist always carry a value (the sentinels at worst); every other
// field is written only when set. The pair order is fixed so repeated
// runs produce identical command lines.
func metadataArgs(rec domain.Record) []string {
	pairs := []struct {
		key   string
		value string
	}{
		{"title", rec.Title},
		{"artist", rec.Artist},
		{"album", rec.Album},
		{"album_artist", rec.AlbumArtist},
		{"date", rec.Date},
		{"genre", rec.Genre},
		{"style", rec.Style},
		{"publisher", rec.Label},
		{"catalognumber", rec.CatalogNumber},
		{"country", rec.Country},
		{"comment", rec.Description},
		{"lyrics", rec.Lyrics},
	}

	args := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", p.key, p.value))
	}
	return args
}

// validateFile rejects missing, directory, and zero-byte inputs before
// FFmpeg gets to produce a less helpful error about them.
func validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// SafeFileName makes a string usable as a file name by replacing
// characters that are unsafe on common filesystems.
func SafeFileName(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\n", "\r", "\t"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	result = strings.Trim(result, " .")

	if result == "" {
		result = "untitled"
	}

	return result
}
