package auth_test

import (
	"testing"
	"time"

	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenIsValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token *auth.RefreshToken
		valid bool
	}{
		{
			name:  "Live token",
			token: &auth.RefreshToken{ExpiresAt: now.Add(time.Hour)},
			valid: true,
		},
		{
			name:  "Revoked token",
			token: &auth.RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true},
			valid: false,
		},
		{
			name:  "Expired token",
			token: &auth.RefreshToken{ExpiresAt: now.Add(-time.Second)},
			valid: false,
		},
		{
			name:  "Expired and revoked",
			token: &auth.RefreshToken{ExpiresAt: now.Add(-time.Second), Revoked: true},
			valid: false,
		},
		{
			name:  "Nil token",
			token: nil,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.token.IsValid(now))
		})
	}
}
