package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
output_format: flac
server:
  port: "9090"
storage:
  type: local
  output_dir: /tmp/tunegrab-out
sources:
  acoustid_api_key: abc123
  lastfm_api_key: def456
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "flac", cfg.OutputFormat)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "/tmp/tunegrab-out", cfg.Storage.OutputDir)
	assert.Equal(t, "abc123", cfg.Sources.AcoustIDKey)
	assert.Equal(t, "def456", cfg.Sources.LastFMKey)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "minimal.yaml")
	err := os.WriteFile(configPath, []byte("log_level: 0\n"), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "flac", cfg.OutputFormat)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "output", cfg.Storage.OutputDir)
	assert.Equal(t, "yt-dlp", cfg.Tools.YtDlp)
	assert.Equal(t, "ffmpeg", cfg.Tools.FFmpeg)
	assert.Equal(t, "fpcalc", cfg.Tools.Fpcalc)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "creds.yaml")
	configContent := `
sources:
  acoustid_api_key: from-file
  spotify_client_id: file-id
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	t.Setenv("ACOUSTID_API_KEY", "from-env")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Sources.AcoustIDKey)
	// File value survives when the environment is silent
	assert.Equal(t, "file-id", cfg.Sources.SpotifyClientID)
	assert.Equal(t, "env-secret", cfg.Sources.SpotifyClientSecret)
}

func TestLoadEmptyFile(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "empty.yaml")
	err := os.WriteFile(configPath, []byte(""), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "flac", cfg.OutputFormat)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
output_format: flac
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
