package auth

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options. All options are required; hosts should run
// ValidateConfig at startup and treat failure as fatal.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetMaxFailedAttempts() int
	GetLockoutDuration() time.Duration
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// ClientContext carries request metadata persisted on refresh token
// records for audit purposes only.
type ClientContext struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuthResult is the response of every operation that issues tokens.
type AuthResult struct {
	UserID                string        `json:"user_id"`
	Email                 string        `json:"email"`
	UserType              UserType      `json:"user_type"`
	Roles                 []string      `json:"roles"`
	Permissions           []string      `json:"permissions"`
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	AccessTokenExpiresIn  time.Duration `json:"access_token_expires_in"`
	RefreshTokenExpiresIn time.Duration `json:"refresh_token_expires_in"`
	TokenType             string        `json:"token_type"`
	ProfileCompleted      bool          `json:"profile_completed"`
	ProfileServiceID      string        `json:"profile_service_id,omitempty"`
	RedirectTo            string        `json:"redirect_to"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
