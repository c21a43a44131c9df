package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/text2image/internal/types"
)

// Environment variables that override file settings
const (
	EnvBaseURL  = "TEXT2IMAGE_BASE_URL"
	EnvTimeout  = "TEXT2IMAGE_TIMEOUT"
	EnvLogLevel = "TEXT2IMAGE_LOG_LEVEL"
)

const (
	DefaultBaseURL      = "http://localhost:5000"
	DefaultHistoryLimit = 10
	DefaultLogLevel     = "info"
)

// Settings is the user configuration
type Settings struct {
	BaseURL       string           `yaml:"base_url" json:"base_url"`
	Timeout       string           `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	ResolvePolicy string           `yaml:"resolve_policy,omitempty" json:"resolve_policy,omitempty"`
	HistoryLimit  int              `yaml:"history_limit,omitempty" json:"history_limit,omitempty"`
	Journal       *bool            `yaml:"journal,omitempty" json:"journal,omitempty"`
	LogLevel      string           `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFile       string           `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	DownloadDir   string           `yaml:"download_dir,omitempty" json:"download_dir,omitempty"`
	TLS           *types.TLSConfig `yaml:"tls,omitempty" json:"tls,omitempty"`
}

// Defaults returns the settings used when nothing is configured
func Defaults() *Settings {
	return &Settings{
		BaseURL:       DefaultBaseURL,
		ResolvePolicy: "last-resolved",
		HistoryLimit:  DefaultHistoryLimit,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads settings from path on top of the defaults.
// .yaml/.yml files are parsed as YAML, .json/.jsonc as JSON with comments.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}

	return settings, nil
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing default .env is ignored.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TEXT2IMAGE_* environment variables
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		s.Timeout = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
}

// Validate checks every field and returns all problems at once
func (s *Settings) Validate() error {
	var errs []error

	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute http(s) URL", s.BaseURL))
	}

	if _, err := s.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}

	switch s.ResolvePolicy {
	case "", "last-resolved", "latest-request":
	default:
		errs = append(errs, fmt.Errorf("resolve_policy %q must be last-resolved or latest-request", s.ResolvePolicy))
	}

	if s.HistoryLimit < 0 || s.HistoryLimit > DefaultHistoryLimit {
		errs = append(errs, fmt.Errorf("history_limit %d must be between 1 and %d", s.HistoryLimit, DefaultHistoryLimit))
	}

	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log_level %q must be debug, info, warn, error or fatal", s.LogLevel))
	}

	if s.TLS != nil && (s.TLS.CertFile == "") != (s.TLS.KeyFile == "") {
		errs = append(errs, errors.New("tls.cert_file and tls.key_file must be set together"))
	}

	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout. Empty or "0" means no timeout.
func (s *Settings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" || s.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q is not a duration: %w", s.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout %q must not be negative", s.Timeout)
	}
	return d, nil
}

// JournalEnabled reports whether attempts are written to the journal
func (s *Settings) JournalEnabled() bool {
	return s.Journal == nil || *s.Journal
}

// DownloadPath joins name onto the configured download directory
func (s *Settings) DownloadPath(name string) (string, error) {
	if s.DownloadDir == "" {
		return name, nil
	}
	dir, err := ExpandPath(s.DownloadDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
