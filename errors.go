package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API consumers alongside the error category.
const (
	TextCodePasswordMismatch   = "PASSWORD_MISMATCH"
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccountLocked      = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeTokenInvalid       = "INVALID_TOKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeSeedRoleMissing    = "SEED_ROLE_MISSING"
)

// ErrPasswordMismatch is returned when password and confirmation differ.
var ErrPasswordMismatch = errors.New("passwords do not match", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodePasswordMismatch)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("an account already exists for this email", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrInvalidCredentials is returned for a bad password or an unknown
// email. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrAccountDisabled is returned when the account is not active.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAccountDisabled)

// ErrTokenInvalid covers signature failures and unknown, revoked, or
// replayed refresh tokens.
var ErrTokenInvalid = errors.New("invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

// ErrTokenExpired is returned when a structurally valid token is past
// its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrSeedRoleMissing indicates the role row expected for a user type is
// absent. This is a deployment/seed-data failure, never a user error.
var ErrSeedRoleMissing = errors.New("default role for user type is not seeded", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeSeedRoleMissing)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt comparison failure.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// NewAccountLockedError carries the unlock timestamp so callers can
// report when login becomes possible again.
func NewAccountLockedError(until time.Time) *errors.Error {
	return errors.New("account is locked until "+until.UTC().Format(time.RFC3339), errors.CategoryAuth).
		WithCode(errors.CodeForbidden).
		WithTextCode(TextCodeAccountLocked).
		WithMetadata(map[string]any{
			"locked_until": until,
		})
}

// IsAccountLockedError will check for lockout errors
func IsAccountLockedError(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeAccountLocked
	}
	return false
}

// LockedUntil extracts the unlock timestamp from an account locked
// error, when present.
func LockedUntil(err error) (time.Time, bool) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.TextCode != TextCodeAccountLocked {
		return time.Time{}, false
	}
	until, ok := richErr.Metadata["locked_until"].(time.Time)
	return until, ok
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
