package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

const defaultFpcalcTimeout = 30 * time.Second

// Fingerprint is the output of an fpcalc run.
type Fingerprint struct {
	Fingerprint string  `json:"fingerprint"`
	Duration    float64 `json:"duration"`
}

// Fingerprinter computes acoustic fingerprints of local audio files.
type Fingerprinter interface {
	IsAvailable() bool
	Generate(ctx context.Context, filePath string) (*Fingerprint, error)
}

// Chromaprint shells out to the fpcalc binary.
type Chromaprint struct {
	binary  string
	timeout time.Duration
}

// NewChromaprint creates a wrapper around the given fpcalc binary. An
// empty path falls back to "fpcalc" on $PATH.
func NewChromaprint(binary string) *Chromaprint {
	if binary == "" {
		binary = "fpcalc"
	}
	return &Chromaprint{binary: binary, timeout: defaultFpcalcTimeout}
}

// IsAvailable reports whether the fpcalc binary can be resolved.
func (c *Chromaprint) IsAvailable() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Generate runs fpcalc on the file and parses its JSON output.
func (c *Chromaprint) Generate(ctx context.Context, filePath string) (*Fingerprint, error) {
	if !c.IsAvailable() {
		return nil, ErrFpcalcNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, "-json", filePath)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrFingerprintFailed, err, stderrBuf.String())
	}

	fp, err := parseFpcalcOutput(stdoutBuf.Bytes())
	if err != nil {
		return nil, err
	}

	return fp, nil
}

func parseFpcalcOutput(out []byte) (*Fingerprint, error) {
	var fp Fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return nil, fmt.Errorf("%w: malformed output: %v", ErrFingerprintFailed, err)
	}
	if fp.Fingerprint == "" {
		return nil, fmt.Errorf("%w: empty fingerprint", ErrFingerprintFailed)
	}
	return &fp, nil
}
