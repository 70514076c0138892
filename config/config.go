package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel     int    `yaml:"log_level"`
	OutputFormat string `yaml:"output_format"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Tools   ToolsConfig   `yaml:"tools"`
	Sources SourcesConfig `yaml:"sources"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// ToolsConfig holds paths to the external binaries the pipeline shells out
// to. Empty values fall back to PATH lookup.
type ToolsConfig struct {
	YtDlp  string `yaml:"ytdlp"`
	FFmpeg string `yaml:"ffmpeg"`
	Fpcalc string `yaml:"fpcalc"`
}

// SourcesConfig carries the credentials for the optional lookup services.
// A source with an empty credential is disabled for the whole process;
// availability is decided once when the pipeline is constructed, never
// re-checked per call.
type SourcesConfig struct {
	AcoustIDKey         string `yaml:"acoustid_api_key"`
	LastFMKey           string `yaml:"lastfm_api_key"`
	SpotifyClientID     string `yaml:"spotify_client_id"`
	SpotifyClientSecret string `yaml:"spotify_client_secret"`
	GeniusAccessToken   string `yaml:"genius_access_token"`
	DiscogsToken        string `yaml:"discogs_token"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	return config, nil
}

// applyEnv overlays credentials from the environment over the file values.
// The environment is read exactly once, here; the resulting Config is the
// only credential source the rest of the process sees.
func (c *Config) applyEnv() {
	overlay := []struct {
		env  string
		dest *string
	}{
		{"ACOUSTID_API_KEY", &c.Sources.AcoustIDKey},
		{"LASTFM_API_KEY", &c.Sources.LastFMKey},
		{"SPOTIFY_CLIENT_ID", &c.Sources.SpotifyClientID},
		{"SPOTIFY_CLIENT_SECRET", &c.Sources.SpotifyClientSecret},
		{"GENIUS_ACCESS_TOKEN", &c.Sources.GeniusAccessToken},
		{"DISCOGS_TOKEN", &c.Sources.DiscogsToken},
	}
	for _, o := range overlay {
		if v := os.Getenv(o.env); v != "" {
			*o.dest = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.OutputFormat == "" {
		c.OutputFormat = "flac"
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}

	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "output"
	}

	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = "yt-dlp"
	}

	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}

	if c.Tools.Fpcalc == "" {
		c.Tools.Fpcalc = "fpcalc"
	}
}
