package totp

import "github.com/dmitrymomot/credkit/pkg/config"

// Config holds the environment-bound settings for secret-at-rest encryption.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY,required"` // Base64-encoded AES-256 key for secrets at rest
}

// LoadConfig loads the package configuration from environment variables.
// The snapshot is cached for the lifetime of the process.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.EncryptionKey == "" {
		return Config{}, ErrEncryptionKeyNotSet
	}
	return cfg, nil
}
