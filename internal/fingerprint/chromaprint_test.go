package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFpcalcOutput(t *testing.T) {
	fp, err := parseFpcalcOutput([]byte(`{"duration": 301.46, "fingerprint": "AQADtEmi"}`))
	require.NoError(t, err)

	assert.Equal(t, "AQADtEmi", fp.Fingerprint)
	assert.InDelta(t, 301.46, fp.Duration, 0.01)
}

func TestParseFpcalcOutputMalformed(t *testing.T) {
	_, err := parseFpcalcOutput([]byte("not json"))
	assert.ErrorIs(t, err, ErrFingerprintFailed)
}

func TestParseFpcalcOutputEmptyFingerprint(t *testing.T) {
	_, err := parseFpcalcOutput([]byte(`{"duration": 10}`))
	assert.ErrorIs(t, err, ErrFingerprintFailed)
}

func TestNewChromaprintDefaultsBinary(t *testing.T) {
	c := NewChromaprint("")
	assert.Equal(t, "fpcalc", c.binary)

	c = NewChromaprint("/opt/chromaprint/fpcalc")
	assert.Equal(t, "/opt/chromaprint/fpcalc", c.binary)
}
