package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Precedence, highest first: Vault secrets, environment variables
// (RESUMEPDF_*), config file, defaults.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Render        RenderConfig        `mapstructure:"render"`
	Watch         WatchConfig         `mapstructure:"watch"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// RenderConfig holds PDF output settings
type RenderConfig struct {
	DefaultStyle string `mapstructure:"defaultStyle"`
	// FontPath points at a TrueType font covering the glyphs in use, e.g. a
	// CJK font for Chinese resumes. Empty selects the built-in Helvetica.
	FontPath string `mapstructure:"fontPath"`
	// CreationTime (RFC 3339) is stamped into every document so that the
	// same input always yields the same bytes.
	CreationTime string `mapstructure:"creationTime"`
	Compress     bool   `mapstructure:"compress"`
	Creator      string `mapstructure:"creator"`
}

// WatchConfig holds settings for render --watch
type WatchConfig struct {
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"readTimeout"`
	WriteTimeout  time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout   time.Duration `mapstructure:"idleTimeout"`
	RenderTimeout time.Duration `mapstructure:"renderTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// APIKeys are accepted in X-API-Key or as a Bearer token. Empty
	// disables authentication.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled" or "server"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`

	// PEM content, used when certificates come from Vault instead of files
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`

	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
	ByAPIKey       bool `mapstructure:"byAPIKey"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console exporter configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// configLog collects [CONFIG] lines while loading. They are printed only
// when the resolved log level is debug so regular CLI runs stay quiet.
type configLog struct {
	lines []string
}

func (l *configLog) Println(msg string) {
	l.lines = append(l.lines, "[CONFIG] "+msg)
}

func (l *configLog) Printf(format string, args ...any) {
	l.Println(fmt.Sprintf(format, args...))
}

func (l *configLog) flush(level string) {
	if !strings.EqualFold(level, "debug") {
		return
	}
	for _, line := range l.lines {
		log.Println(line)
	}
}

// LoadConfig loads configuration from the default search paths, the
// environment and defaults.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile loads configuration like LoadConfig, reading path instead
// of searching when path is not empty.
func LoadConfigFile(path string) (*Config, error) {
	return loadConfig(viper.New(), path, nil)
}

// FlagBindings maps config keys to the command-line flags that override
// them. Flags missing from a command's flag set are skipped.
var FlagBindings = map[string]string{
	"app.logLevel":        "log-level",
	"render.fontPath":     "font",
	"watch.debounceDelay": "debounce",
	"server.host":         "host",
	"server.port":         "port",
}

// LoadConfigWithFlags loads configuration like LoadConfigFile and lets any
// flag in FlagBindings that was set on the command line win over every
// other source.
func LoadConfigWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	return loadConfig(viper.New(), path, flags)
}

func loadConfig(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	trace := &configLog{}
	trace.Println("Starting configuration loading process")

	setDefaults(v)
	trace.Println("Applied default configuration values")

	v.SetEnvPrefix("RESUMEPDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	trace.Println("Configured environment variable handling with prefix 'RESUMEPDF'")

	if flags != nil {
		for key, name := range FlagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
			if flag.Changed {
				trace.Printf("Flag --%s overrides %s", name, key)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		trace.Printf("Using config file from flag: %s", path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumepdf/")
		v.AddConfigPath("$HOME/.resumepdf")
		v.AddConfigPath(".")
		trace.Println("Configured config file search paths: /etc/resumepdf/, $HOME/.resumepdf, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		trace.Println("No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		trace.Printf("Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(trace, configFileUsed)

	if err := config.Validate(); err != nil {
		trace.flush("debug")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	trace.Println("Configuration loading completed successfully")
	trace.flush(config.App.LogLevel)
	return &config, nil
}

// CreationTime parses Render.CreationTime. Validate has already rejected
// malformed values.
func (c *Config) CreationTime() time.Time {
	t, err := time.Parse(time.RFC3339, c.Render.CreationTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Address returns host:port for the HTTP server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return ""
}
