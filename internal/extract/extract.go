// Package extract acquires source metadata and audio through yt-dlp.
// Probe failures are reported but treated as soft by the caller, which
// continues on a defaulted record. The download leg is the load-bearing
// one and reports classified failures.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Default timeout for metadata probes
	defaultProbeTimeout = 1 * time.Minute

	// Default timeout for audio downloads
	defaultDownloadTimeout = 10 * time.Minute

	// Minimum file size to consider a download valid (100KB)
	minValidFileSize = 100 * 1024

	// Supported audio file extensions
	supportedAudioExtensions = ".m4a,.webm,.opus,.mp3,.ogg,.wav,.flac,.aac"
)

// Source probes a URL for metadata and downloads its audio.
type Source interface {
	Probe(ctx context.Context, url string) (*RawInfo, error)
	Download(ctx context.Context, url, outputDir string) (string, error)
}

// YtDlp shells out to the yt-dlp binary.
type YtDlp struct {
	binary          string
	probeTimeout    time.Duration
	downloadTimeout time.Duration
}

// NewYtDlp creates an extractor backed by the given yt-dlp binary. An
// empty binary path falls back to "yt-dlp" on $PATH.
func NewYtDlp(binary string) *YtDlp {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YtDlp{
		binary:          binary,
		probeTimeout:    defaultProbeTimeout,
		downloadTimeout: defaultDownloadTimeout,
	}
}

// Probe fetches the source's metadata JSON without downloading media.
// Playlist payloads are flattened to their first entry.
func (y *YtDlp) Probe(ctx context.Context, url string) (*RawInfo, error) {
	slog.Info("Probing source metadata", "url", url)

	ctx, cancel := context.WithTimeout(ctx, y.probeTimeout)
	defer cancel()

	args := []string{
		"-J",
		"--no-warnings",
		url,
	}

	cmd := exec.CommandContext(ctx, y.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		slog.Warn("Metadata probe failed", "url", url, "error", err, "stderr", truncateOutput(stderrBuf.String()))
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	var info RawInfo
	if err := json.Unmarshal(stdoutBuf.Bytes(), &info); err != nil {
		slog.Warn("Metadata probe returned malformed JSON", "url", url, "error", err)
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	flat := info.Flatten()
	slog.Info("Probe complete", "url", url, "id", flat.ID, "title", flat.Title, "duration", flat.Duration)
	return flat, nil
}

// Download fetches the best available audio stream into outputDir and
// returns the path of the downloaded file. Failures carry a classified
// cause via DownloadError.
func (y *YtDlp) Download(ctx context.Context, url, outputDir string) (string, error) {
	slog.Info("Downloading audio", "url", url, "outputDir", outputDir)

	if err := y.checkAvailable(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrYtDlpNotAvailable, err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(outputDir, "%(id)s.%(ext)s"),
		url,
	}

	cmd := exec.CommandContext(ctx, y.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			stderr := stderrBuf.String()
			cause := classifyFailure(err, stderr)
			slog.Error("yt-dlp download failed",
				"url", url,
				"cause", cause,
				"error", err,
				"stderr", truncateOutput(stderr),
			)
			return "", &DownloadError{Cause: cause, Stderr: stderr, Err: err}
		}
	case <-ctx.Done():
		slog.Warn("Context cancelled, killing yt-dlp process", "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill process after context cancellation", "error", err)
		}
		<-done
		return "", &DownloadError{Cause: CauseTimeout, Err: ctx.Err()}
	case <-time.After(y.downloadTimeout):
		slog.Error("Download timeout reached", "timeout", y.downloadTimeout, "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			slog.Error("Failed to kill process after timeout", "error", err)
		}
		<-done
		return "", &DownloadError{Cause: CauseTimeout, Err: fmt.Errorf("%w: %v", ErrDownloadTimeout, y.downloadTimeout)}
	}

	downloadedFile, err := findDownloadedFile(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to find downloaded file: %w", err)
	}

	if err := validateAudioFile(downloadedFile); err != nil {
		return "", fmt.Errorf("downloaded file validation failed: %w", err)
	}

	slog.Info("Download complete", "file", downloadedFile)
	return downloadedFile, nil
}

// checkAvailable verifies that yt-dlp is installed and responding.
func (y *YtDlp) checkAvailable() error {
	cmd := exec.Command(y.binary, "--version")
	if err := cmd.Run(); err != nil {
		return err
	}
	return nil
}

// findDownloadedFile finds the most recently modified audio file in the
// directory.
func findDownloadedFile(outputDir string) (string, error) {
	audioExtensions := strings.Split(supportedAudioExtensions, ",")
	var mostRecentFile string
	var mostRecentTime time.Time

	err := filepath.Walk(outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, audioExt := range audioExtensions {
			if ext == audioExt {
				if info.ModTime().After(mostRecentTime) {
					mostRecentTime = info.ModTime()
					mostRecentFile = path
				}
				break
			}
		}

		return nil
	})

	if err != nil {
		return "", fmt.Errorf("error scanning output directory: %w", err)
	}

	if mostRecentFile == "" {
		return "", fmt.Errorf("%w: in directory %s", ErrNoAudioFiles, outputDir)
	}

	return mostRecentFile, nil
}

// validateAudioFile rejects empty or suspiciously small downloads.
func validateAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: file is empty", ErrFileTooSmall)
	}

	if info.Size() < minValidFileSize {
		return fmt.Errorf("%w: file size %d bytes is less than minimum %d bytes",
			ErrFileTooSmall, info.Size(), minValidFileSize)
	}

	return nil
}

func truncateOutput(s string) string {
	const limit = 500
	if len(s) > limit {
		return "..." + s[len(s)-limit:]
	}
	return s
}
