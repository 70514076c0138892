package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error types for better error handling
var (
	ErrYtDlpNotAvailable = fmt.Errorf("yt-dlp not available")
	ErrNoAudioFiles      = fmt.Errorf("no audio files found")
	ErrFileTooSmall      = fmt.Errorf("file too small")
	ErrDownloadTimeout   = fmt.Errorf("download timeout")
)

// FailureCause buckets a failed acquisition into one of a small set of
// terminal causes so callers can decide whether a retry is worthwhile.
type FailureCause string

const (
	CauseTimeout     FailureCause = "timeout"
	CauseAccess      FailureCause = "access"
	CauseNoFormats   FailureCause = "no-formats"
	CauseRateLimited FailureCause = "rate-limited"
	CauseNetwork     FailureCause = "network"
)

// Message returns a human-readable description of the cause, suitable
// for surfacing in a job's terminal error state.
func (c FailureCause) Message() string {
	switch c {
	case CauseTimeout:
		return "the download timed out"
	case CauseAccess:
		return "the source is unavailable or access is restricted"
	case CauseNoFormats:
		return "no downloadable audio format was found"
	case CauseRateLimited:
		return "the source is rate-limiting requests, try again later"
	default:
		return "a network or processing error occurred"
	}
}

// DownloadError wraps a failed yt-dlp invocation with its classified
// cause and captured stderr.
type DownloadError struct {
	Cause  FailureCause
	Stderr string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed (%s): %v", e.Cause, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// classifyFailure inspects the error and the tool's stderr to decide
// which terminal cause a failed acquisition maps to.
func classifyFailure(err error, stderr string) FailureCause {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrDownloadTimeout) {
		return CauseTimeout
	}

	out := strings.ToLower(stderr)
	switch {
	case strings.Contains(out, "timed out") || strings.Contains(out, "timeout"):
		return CauseTimeout
	case strings.Contains(out, "429") || strings.Contains(out, "rate-limit") || strings.Contains(out, "rate limit"):
		return CauseRateLimited
	case strings.Contains(out, "requested format is not available") ||
		strings.Contains(out, "no video formats") ||
		strings.Contains(out, "no suitable format"):
		return CauseNoFormats
	case strings.Contains(out, "private video") ||
		strings.Contains(out, "video unavailable") ||
		strings.Contains(out, "sign in to confirm") ||
		strings.Contains(out, "403") ||
		strings.Contains(out, "404") ||
		strings.Contains(out, "copyright") ||
		strings.Contains(out, "removed"):
		return CauseAccess
	default:
		return CauseNetwork
	}
}
