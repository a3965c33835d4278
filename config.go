package auth

import (
	"time"

	"github.com/goliatone/go-errors"
)

// SimpleConfig is a plain value implementation of Config for hosts that
// load options from their own configuration layer.
type SimpleConfig struct {
	SigningKey        string        `json:"signing_key"`
	Issuer            string        `json:"issuer"`
	AccessTokenTTL    time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `json:"refresh_token_ttl"`
	MaxFailedAttempts int           `json:"max_failed_attempts"`
	LockoutDuration   time.Duration `json:"lockout_duration"`
}

func (c SimpleConfig) GetSigningKey() string             { return c.SigningKey }
func (c SimpleConfig) GetIssuer() string                 { return c.Issuer }
func (c SimpleConfig) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c SimpleConfig) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }
func (c SimpleConfig) GetMaxFailedAttempts() int         { return c.MaxFailedAttempts }
func (c SimpleConfig) GetLockoutDuration() time.Duration { return c.LockoutDuration }

var _ Config = SimpleConfig{}

// ValidateConfig checks that every required option is present. Hosts
// must treat a failure as a fatal startup error, not a runtime one.
func ValidateConfig(cfg Config) error {
	if cfg == nil {
		return errors.New("auth config is required", errors.CategoryValidation)
	}

	missing := []string{}

	if cfg.GetSigningKey() == "" {
		missing = append(missing, "signing_key")
	}

	if cfg.GetIssuer() == "" {
		missing = append(missing, "issuer")
	}

	if cfg.GetAccessTokenTTL() <= 0 {
		missing = append(missing, "access_token_ttl")
	}

	if cfg.GetRefreshTokenTTL() <= 0 {
		missing = append(missing, "refresh_token_ttl")
	}

	if cfg.GetMaxFailedAttempts() <= 0 {
		missing = append(missing, "max_failed_attempts")
	}

	if cfg.GetLockoutDuration() <= 0 {
		missing = append(missing, "lockout_duration")
	}

	if len(missing) > 0 {
		return errors.New("auth config is missing required options", errors.CategoryValidation).
			WithMetadata(map[string]any{
				"missing": missing,
			})
	}

	return nil
}
