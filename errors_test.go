package auth_test

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTextCodes(t *testing.T) {
	tests := []struct {
		err      *goerrors.Error
		textCode string
	}{
		{auth.ErrPasswordMismatch, auth.TextCodePasswordMismatch},
		{auth.ErrEmailTaken, auth.TextCodeEmailTaken},
		{auth.ErrInvalidCredentials, auth.TextCodeInvalidCredentials},
		{auth.ErrAccountDisabled, auth.TextCodeAccountDisabled},
		{auth.ErrTokenInvalid, auth.TextCodeTokenInvalid},
		{auth.ErrTokenExpired, auth.TextCodeTokenExpired},
		{auth.ErrIdentityNotFound, auth.TextCodeIdentityNotFound},
		{auth.ErrSeedRoleMissing, auth.TextCodeSeedRoleMissing},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.textCode, tt.err.TextCode)
		})
	}
}

func TestNewAccountLockedError(t *testing.T) {
	until := time.Now().Add(15 * time.Minute)
	err := auth.NewAccountLockedError(until)

	assert.True(t, auth.IsAccountLockedError(err))

	got, ok := auth.LockedUntil(err)
	require.True(t, ok)
	assert.True(t, got.Equal(until))
}

func TestIsAccountLockedError(t *testing.T) {
	assert.False(t, auth.IsAccountLockedError(nil))
	assert.False(t, auth.IsAccountLockedError(auth.ErrInvalidCredentials))

	_, ok := auth.LockedUntil(auth.ErrInvalidCredentials)
	assert.False(t, ok)
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenInvalid))
	assert.False(t, auth.IsTokenExpiredError(nil))
}

func TestIsMalformedError(t *testing.T) {
	assert.False(t, auth.IsMalformedError(nil))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
	assert.True(t, auth.IsMalformedError(goerrors.New("token is malformed: bad segments", goerrors.CategoryAuth)))
}
