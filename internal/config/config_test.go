package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "text", "markdown"}, cfg.App.SupportedFormats)
	assert.Equal(t, "modern", cfg.Render.DefaultStyle)
	assert.True(t, cfg.Render.Compress)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.CreationTime())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDelay)
	assert.Equal(t, "localhost:8080", cfg.Address())
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.False(t, cfg.Vault.Enabled)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  logLevel: warn
render:
  defaultStyle: classic
  creationTime: "2030-06-01T12:00:00Z"
watch:
  debounceDelay: 2s
server:
  port: "9090"
  apiKeys: ["one", "two"]
  rateLimit:
    enabled: true
    requestsPerMin: 30
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "classic", cfg.Render.DefaultStyle)
	assert.Equal(t, 2030, cfg.CreationTime().Year())
	assert.Equal(t, 2*time.Second, cfg.Watch.DebounceDelay)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)
	assert.Equal(t, 30, cfg.Server.RateLimit.RequestsPerMin)
	assert.Equal(t, 10, cfg.Server.RateLimit.BurstCapacity)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "render:\n  defaultStyle: classic\n")
	t.Setenv("RESUMEPDF_RENDER_DEFAULTSTYLE", "minimal")
	t.Setenv("RESUMEPDF_SERVER_PORT", "7070")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", cfg.Render.DefaultStyle)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `
app:
  logLevel: loud
render:
  defaultStyle: baroque
`)

	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid log level: loud")
	assert.ErrorContains(t, err, `unknown render style "baroque"`)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfigFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = "http" }, errMsg: "invalid server port"},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, errMsg: "invalid server port"},
		{name: "default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, errMsg: `default format "xml"`},
		{name: "creation time", mutate: func(c *Config) { c.Render.CreationTime = "yesterday" }, errMsg: "RFC 3339"},
		{name: "missing font", mutate: func(c *Config) { c.Render.FontPath = "/does/not/exist.ttf" }, errMsg: "render.fontPath"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.DebounceDelay = -time.Second }, errMsg: "debounceDelay"},
		{
			name: "rate limit without key",
			mutate: func(c *Config) {
				c.Server.RateLimit.Enabled = true
				c.Server.RateLimit.ByIP = false
				c.Server.RateLimit.ByAPIKey = false
			},
			errMsg: "byIP or byAPIKey",
		},
		{name: "tls mode", mutate: func(c *Config) { c.Server.TLS.Mode = "mutual" }, errMsg: "invalid TLS mode"},
		{name: "tls without cert", mutate: func(c *Config) { c.Server.TLS.Mode = "server" }, errMsg: "requires certFile"},
		{
			name: "tls from content",
			mutate: func(c *Config) {
				c.Server.TLS.Mode = "server"
				c.Server.TLS.CertContent = "CERT"
				c.Server.TLS.KeyContent = "KEY"
			},
		},
		{name: "vault address", mutate: func(c *Config) { c.Vault.Enabled = true }, errMsg: "vault.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Port = "0"
	cfg.App.LogLevel = "verbose"
	cfg.Render.DefaultStyle = "baroque"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 errors occurred")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	t.Setenv("RESUMEPDF_SERVER_APIKEYS", "k1, k2")
	cfg := &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)

	cfg = &Config{Server: ServerConfig{APIKeys: []string{"set"}}}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"set"}, cfg.Server.APIKeys)
}

func TestLoadConfigWithFlags(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n  host: 0.0.0.0\n")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.String("host", "", "")
	flags.Duration("debounce", 0, "")
	require.NoError(t, flags.Parse([]string{"--port", "7070", "--debounce", "2s"}))

	cfg, err := LoadConfigWithFlags(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset flags leave the file value alone")
	assert.Equal(t, 2*time.Second, cfg.Watch.DebounceDelay)
	assert.Equal(t, "info", cfg.App.LogLevel)

	flags = pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "0"}))
	_, err = LoadConfigWithFlags(path, flags)
	assert.ErrorContains(t, err, "invalid server port")
}
