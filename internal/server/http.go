// Package server exposes the renderer over HTTP.
package server

import (
	"sync/atomic"
	"time"

	"resumepdf/internal/config"
	"resumepdf/internal/errors"
	"resumepdf/internal/render"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	RenderTimeout time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Renderer *render.Renderer
	Logger   *errors.Logger

	certs     *certReloader
	counters  requestCounters
	startTime time.Time
}

// requestCounters backs the /stats endpoint.
type requestCounters struct {
	renders       atomic.Int64
	renderErrors  atomic.Int64
	plans         atomic.Int64
	validations   atomic.Int64
	bytesRendered atomic.Int64
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RenderTimeout  time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	Renderer       *render.Renderer
}

// ConfigFromApp derives a ServerConfig from the application config.
func ConfigFromApp(appCfg *config.Config, version string, renderer *render.Renderer) ServerConfig {
	rateLimit := appCfg.Server.RateLimit
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		TLSConfig:      appCfg.Server.TLS,
		APIKeys:        appCfg.Server.APIKeys,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		RenderTimeout:  appCfg.Server.RenderTimeout,
		MaxRequestSize: appCfg.App.MaxFileSize,
		RateLimit:      &rateLimit,
		Renderer:       renderer,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Discard()
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		RenderTimeout:  cfg.RenderTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Renderer:       cfg.Renderer,
		Logger:         logger,
		startTime:      time.Now(),
	}
}
