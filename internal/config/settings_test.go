package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/text2image/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), settings)
	assert.True(t, settings.JournalEnabled())
	assert.NoError(t, settings.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
base_url: https://images.example.com
timeout: 45s
resolve_policy: latest-request
history_limit: 5
journal: false
tls:
  insecure_skip_verify: true
`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com", settings.BaseURL)
	assert.Equal(t, "latest-request", settings.ResolvePolicy)
	assert.Equal(t, 5, settings.HistoryLimit)
	assert.False(t, settings.JournalEnabled())
	require.NotNil(t, settings.TLS)
	assert.True(t, settings.TLS.InsecureSkipVerify)
	assert.Equal(t, DefaultLogLevel, settings.LogLevel)

	timeout, err := settings.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, timeout)
}

func TestLoadJSONC(t *testing.T) {
	path := writeFile(t, "config.jsonc", `{
  // service root
  "base_url": "http://127.0.0.1:9000",
  "log_level": "debug", /* trailing comma next */
}`)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", settings.BaseURL)
	assert.Equal(t, "debug", settings.LogLevel)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "base_url: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://env.example:5000")
	t.Setenv(EnvTimeout, "3s")
	t.Setenv(EnvLogLevel, "warn")

	settings := Defaults()
	settings.ApplyEnv()
	assert.Equal(t, "http://env.example:5000", settings.BaseURL)
	assert.Equal(t, "3s", settings.Timeout)
	assert.Equal(t, "warn", settings.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, "test.env", "TEXT2IMAGE_BASE_URL=http://dotenv.example:5000\n")
	t.Setenv(EnvBaseURL, "")
	os.Unsetenv(EnvBaseURL)

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "http://dotenv.example:5000", os.Getenv(EnvBaseURL))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"defaults", func(s *Settings) {}, ""},
		{"no timeout", func(s *Settings) { s.Timeout = "0" }, ""},
		{"relative base url", func(s *Settings) { s.BaseURL = "localhost:5000" }, "base_url"},
		{"bad timeout", func(s *Settings) { s.Timeout = "soon" }, "timeout"},
		{"negative timeout", func(s *Settings) { s.Timeout = "-1s" }, "negative"},
		{"bad policy", func(s *Settings) { s.ResolvePolicy = "first" }, "resolve_policy"},
		{"limit too large", func(s *Settings) { s.HistoryLimit = 11 }, "history_limit"},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, "log_level"},
		{"cert without key", func(s *Settings) { s.TLS = &types.TLSConfig{CertFile: "c.pem"} }, "tls.cert_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDownloadPath(t *testing.T) {
	s := Defaults()
	path, err := s.DownloadPath("generated_image.png")
	require.NoError(t, err)
	assert.Equal(t, "generated_image.png", path)

	s.DownloadDir = "/tmp/images"
	path, err = s.DownloadPath("generated_image.png")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/images/generated_image.png", path)
}

func TestInitializeCreatesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, Initialize())
	assert.Equal(t, filepath.Join(home, ".text2image"), ConfigDir)
	assert.FileExists(t, SettingsFile)

	settings, err := Load(SettingsFile)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, settings.BaseURL)
	assert.NoError(t, settings.Validate())
}
