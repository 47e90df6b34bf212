package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"resumepdf/internal/errors"
	"resumepdf/internal/render"

	"github.com/hashicorp/go-multierror"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMEPDF_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitList(apiKeysEnv)
		}
	}
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "disabled"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if h := hostname(); h != "" {
		return fmt.Sprintf("%s-%s", serviceName, h)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// splitList splits a comma separated value, trimming blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := errors.ParseLevel(c.App.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		result = multierror.Append(result, fmt.Errorf("default format %q is not one of %v", c.App.DefaultFormat, c.App.SupportedFormats))
	}
	if c.App.MaxFileSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("app.maxFileSize must be positive, got %d", c.App.MaxFileSize))
	}

	if _, known := render.ResolveTheme(c.Render.DefaultStyle); !known {
		result = multierror.Append(result, fmt.Errorf("unknown render style %q, available: %s",
			c.Render.DefaultStyle, strings.Join(render.StyleNames(), ", ")))
	}
	if _, err := time.Parse(time.RFC3339, c.Render.CreationTime); err != nil {
		result = multierror.Append(result, fmt.Errorf("render.creationTime must be RFC 3339: %w", err))
	}
	if c.Render.FontPath != "" {
		if info, err := os.Stat(c.Render.FontPath); err != nil {
			result = multierror.Append(result, fmt.Errorf("render.fontPath: %w", err))
		} else if info.IsDir() {
			result = multierror.Append(result, fmt.Errorf("render.fontPath is a directory: %s", c.Render.FontPath))
		}
	}

	if c.Watch.DebounceDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("watch.debounceDelay must not be negative"))
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid server port: %q", c.Server.Port))
	}
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RequestsPerMin <= 0 {
			result = multierror.Append(result, fmt.Errorf("server.rateLimit.requestsPerMin must be positive"))
		}
		if rl.BurstCapacity <= 0 {
			result = multierror.Append(result, fmt.Errorf("server.rateLimit.burstCapacity must be positive"))
		}
		if !rl.ByIP && !rl.ByAPIKey {
			result = multierror.Append(result, fmt.Errorf("server.rateLimit needs byIP or byAPIKey"))
		}
	}

	if err := c.Server.TLS.validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Vault.Enabled && c.Vault.Address == "" {
		result = multierror.Append(result, fmt.Errorf("vault.address is required when vault is enabled"))
	}

	return result.ErrorOrNil()
}

func (t TLSConfig) validate() error {
	switch t.Mode {
	case "disabled":
		return nil
	case "server":
	default:
		return fmt.Errorf("invalid TLS mode: %s (valid: disabled, server)", t.Mode)
	}

	var result *multierror.Error
	hasFiles := t.CertFile != "" && t.KeyFile != ""
	hasContent := t.CertContent != "" && t.KeyContent != ""
	if !hasFiles && !hasContent {
		result = multierror.Append(result, fmt.Errorf("TLS mode server requires certFile and keyFile, or certContent and keyContent"))
	}
	if t.MinVersion != "" && t.MinVersion != "1.2" && t.MinVersion != "1.3" {
		result = multierror.Append(result, fmt.Errorf("invalid TLS minVersion: %s (valid: 1.2, 1.3)", t.MinVersion))
	}
	return result.ErrorOrNil()
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(trace *configLog, configFileUsed string) {
	trace.Println("=== Configuration Sources Summary ===")

	if configFileUsed != "" {
		trace.Printf("Config file: %s", configFileUsed)
	} else {
		trace.Println("Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMEPDF_APP_LOGLEVEL",
		"RESUMEPDF_RENDER_DEFAULTSTYLE",
		"RESUMEPDF_RENDER_FONTPATH",
		"RESUMEPDF_SERVER_PORT",
		"RESUMEPDF_SERVER_HOST",
		"RESUMEPDF_SERVER_APIKEYS",
		"RESUMEPDF_VAULT_ENABLED",
		"RESUMEPDF_VAULT_TOKEN",
	}

	trace.Println("Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
				trace.Printf("  %s=***MASKED***", envVar)
			} else {
				trace.Printf("  %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		trace.Println("  None set")
	}

	trace.Println("=== Key Configuration Values ===")
	trace.Printf("Default Style: %s", c.Render.DefaultStyle)
	if c.Render.FontPath != "" {
		trace.Printf("Font: %s", c.Render.FontPath)
	} else {
		trace.Println("Font: built-in Helvetica")
	}
	trace.Printf("Creation Time: %s", c.Render.CreationTime)
	trace.Printf("Server Host: %s", c.Server.Host)
	trace.Printf("Server Port: %s", c.Server.Port)
	if len(c.Server.APIKeys) > 0 {
		trace.Printf("API Keys: ***%d CONFIGURED***", len(c.Server.APIKeys))
	} else {
		trace.Println("API Keys: ***NOT SET***")
	}
	trace.Printf("Log Level: %s", c.App.LogLevel)
	trace.Printf("TLS Mode: %s", c.Server.TLS.Mode)
	trace.Printf("Vault Enabled: %t", c.Vault.Enabled)
	trace.Printf("Observability Enabled: %t", c.Observability.Enabled)
	trace.Println("=====================================")
}
