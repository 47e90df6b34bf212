package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumepdf/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 read paths, e.g. "secret/data/resumepdf/server".
type VaultSecrets struct {
	// APIKeys holds a "keys" field with comma separated values.
	APIKeys string `mapstructure:"apiKeys"`
	// TLSCerts holds PEM content in "cert" and "key" fields.
	TLSCerts string `mapstructure:"tlsCerts"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a Vault client and checks that the server is
// reachable. It returns nil, nil when Vault is disabled.
func NewVaultClient(ctx context.Context, config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	logger.Debug("Initializing Vault client",
		"address", config.Address,
		"namespace", config.Namespace,
		"token_file", config.TokenFile,
		"has_token", config.Token != "")

	client, err := createVaultAPIClient(config)
	if err != nil {
		return nil, err
	}

	token, err := resolveVaultToken(config, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	if err := testVaultConnection(ctx, client, config.Address, logger); err != nil {
		return nil, err
	}

	return &VaultClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

func createVaultAPIClient(config VaultConfig) (*api.Client, error) {
	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}
	return client, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig, logger *errors.Logger) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		logger.Debug("Reading Vault token from file", "file", config.TokenFile)
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

func testVaultConnection(ctx context.Context, client *api.Client, address string, logger *errors.Logger) error {
	health, err := client.Sys().HealthWithContext(ctx)
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", address)
		return errors.NewNetworkError("VAULT_UNREACHABLE", "failed to connect to vault", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault at %s is sealed", address)
	}

	logger.Info("Connected to Vault",
		"address", address,
		"version", health.Version,
		"cluster_name", health.ClusterName)
	return nil
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(ctx context.Context, path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "path", path)
	secret, err := vc.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, errors.NewNetworkError("VAULT_READ_FAILED", fmt.Sprintf("failed to read secret from %s", path), err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, err := extractSecretData(secret, path)
	if err != nil {
		return nil, err
	}
	version, err := extractSecretVersion(secret, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{
		Data:    data,
		Version: version,
	}, nil
}

// extractSecretData extracts the data field from a KVv2 secret
func extractSecretData(secret *api.Secret, path string) (map[string]any, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	return data, nil
}

// extractSecretVersion extracts and parses the version from a KVv2 secret
func extractSecretVersion(secret *api.Secret, path string) (int64, error) {
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}

	versionRaw, ok := metadata["version"]
	if !ok {
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}

	return parseVersionValue(versionRaw, path)
}

// parseVersionValue parses version value from various types. The Vault
// client decodes numbers as json.Number.
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(ctx context.Context, path, key string) (string, error) {
	secret, err := vc.GetSecretV2(ctx, path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	vc.logger.Debug("String secret retrieved from Vault",
		"path", path,
		"key", key,
		"masked_value", maskSecret(strValue))
	return strValue, nil
}

// GetStringSliceSecret retrieves a comma-separated string as a slice from Vault
func (vc *VaultClient) GetStringSliceSecret(ctx context.Context, path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(ctx, path, key)
	if err != nil {
		return nil, err
	}
	return splitList(value), nil
}

func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case len(value) > 0:
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config.
// Values from Vault replace whatever the file or environment provided.
func ApplyVaultSecrets(ctx context.Context, config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	logger.Info("Loading secrets from Vault",
		"api_keys_path", config.Vault.Secrets.APIKeys,
		"tls_certs_path", config.Vault.Secrets.TLSCerts)

	client, err := NewVaultClient(ctx, config.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize vault client", err)
	}

	if err := loadAPIKeysFromVault(ctx, client, config, logger); err != nil {
		return err
	}
	if err := loadTLSCertsFromVault(ctx, client, config, logger); err != nil {
		return err
	}

	logger.Info("Applied secrets from Vault")
	return nil
}

func loadAPIKeysFromVault(ctx context.Context, client *VaultClient, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.APIKeys
	if path == "" {
		return nil
	}

	apiKeys, err := client.GetStringSliceSecret(ctx, path, "keys")
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load API keys from vault", err).
			WithContext("path", path)
	}

	if len(apiKeys) == 0 {
		logger.Warn("No API keys found in Vault", "path", path)
		return nil
	}
	config.Server.APIKeys = apiKeys
	logger.Info("API keys loaded from Vault", "count", len(apiKeys))
	return nil
}

func loadTLSCertsFromVault(ctx context.Context, client *VaultClient, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.TLSCerts
	if path == "" {
		return nil
	}

	tlsData, err := client.GetSecretV2(ctx, path)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load TLS certificates from vault", err).
			WithContext("path", path)
	}

	if err := validateTLSDeprecatedFields(tlsData); err != nil {
		return err
	}

	certCount := loadTLSCertificateContent(config, tlsData, logger)
	logger.Info("TLS certificates loaded from Vault", "certificates_loaded", certCount, "version", tlsData.Version)
	return nil
}

// loadTLSCertificateContent copies PEM content from Vault data into the
// server TLS config and returns how many fields it set.
func loadTLSCertificateContent(config *Config, tlsData *VaultSecret, logger *errors.Logger) int {
	certCount := 0
	certCount += loadSingleCertificate(tlsData, "cert", &config.Server.TLS.CertContent, "TLS certificate content", logger)
	certCount += loadSingleCertificate(tlsData, "key", &config.Server.TLS.KeyContent, "TLS private key content", logger)
	return certCount
}

func loadSingleCertificate(tlsData *VaultSecret, key string, target *string, description string, logger *errors.Logger) int {
	if content, ok := tlsData.Data[key].(string); ok && content != "" {
		*target = content
		logger.Debug(description+" loaded from Vault", "content_length", len(content))
		return 1
	}
	return 0
}

// validateTLSDeprecatedFields rejects file path fields; Vault must hold PEM content.
func validateTLSDeprecatedFields(tlsData *VaultSecret) error {
	for _, field := range []string{"cert_file", "key_file"} {
		if _, hasField := tlsData.Data[field]; hasField {
			return fmt.Errorf("vault TLS configuration error: '%s' field is no longer supported. Store certificate content in '%s' field instead",
				field, strings.TrimSuffix(field, "_file"))
		}
	}
	return nil
}
