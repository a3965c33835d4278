package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and verifies the access/refresh token pair. The
// signing key is derived once from configuration and shared read-only
// across concurrent calls.
//
// A valid signature is necessary but not sufficient for refresh tokens:
// the persisted ledger is the source of truth, since a signed token by
// itself cannot be revoked.
type TokenService interface {
	IssueAccessToken(user *User) (string, error)
	IssueRefreshToken(email string) (string, error)
	Validate(raw string) bool
	Decode(raw string) (*JWTClaims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		issuer:     cfg.GetIssuer(),
		logger:     logger,
	}
}

// IssueAccessToken signs the identity and its authorization context.
// Subject is the email, uid/user_type/authorities travel as claims.
func (ts *TokenServiceImpl) IssueAccessToken(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		UID:          user.ID.String(),
		Type:         string(user.UserType),
		AuthorityStr: Authorities(user),
		TokenKind:    TokenKindAccess,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// IssueRefreshToken signs a minimal claim set: subject plus the
// refresh kind marker.
func (ts *TokenServiceImpl) IssueRefreshToken(email string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
		},
		TokenKind: TokenKindRefresh,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate reports signature and expiry validity. Parse failures are
// deliberately collapsed into false, never raised past this boundary.
func (ts *TokenServiceImpl) Validate(raw string) bool {
	_, err := ts.Decode(raw)
	return err == nil
}

// Decode parses and verifies a token string, returning structured claims
func (ts *TokenServiceImpl) Decode(raw string) (*JWTClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService decode could not map claims")
	return nil, ErrTokenInvalid
}

// AccessTokenTTL returns the configured access token lifetime.
func (ts *TokenServiceImpl) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (ts *TokenServiceImpl) RefreshTokenTTL() time.Duration {
	return ts.refreshTTL
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
