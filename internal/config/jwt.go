package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTIssuer is the iss claim of tokens minted by this service
const DefaultJWTIssuer = "faculty-recruitment"

// JWTConfig holds configuration for bearer token signing and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and
// JWT_ISSUER (default: faculty-recruitment).
func NewJWTConfig() (*JWTConfig, error) {
	config := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		ExpirationHours: 24,
		Issuer:          os.Getenv("JWT_ISSUER"),
	}
	if config.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		config.ExpirationHours = hours
	}
	if config.Issuer == "" {
		config.Issuer = DefaultJWTIssuer
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
