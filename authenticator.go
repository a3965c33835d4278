package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TransactionRunner is the per-operation atomicity boundary. Every
// public Auther operation executes as one transaction; no cross-call
// locks are held.
type TransactionRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// Auther orchestrates registration, login, token rotation, and logout
// over the credential store, the role resolver, the token signer, and
// the refresh token ledger.
type Auther struct {
	txm      TransactionRunner
	users    UserStore
	roles    RoleStore
	ledger   RefreshTokenStore
	tokens   TokenService
	hasher   PasswordAuthenticator
	cfg      Config
	logger   Logger
	activity ActivitySink
}

// NewAuthenticator returns a new Auther backed by the repository
// manager. The configuration must pass ValidateConfig.
func NewAuthenticator(repo RepositoryManager, cfg Config) (*Auther, error) {
	return NewAuthenticatorWithStores(repo, repo.Users(), repo.Roles(), repo.RefreshTokens(), cfg)
}

// NewAuthenticatorWithStores wires the engine to custom store
// implementations. Used by hosts with their own persistence and by
// tests.
func NewAuthenticatorWithStores(txm TransactionRunner, users UserStore, roles RoleStore, ledger RefreshTokenStore, cfg Config) (*Auther, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	logger := defLogger{}

	return &Auther{
		txm:      txm,
		users:    users,
		roles:    roles,
		ledger:   ledger,
		tokens:   NewTokenService(cfg, logger),
		hasher:   bcryptAuthenticator{},
		cfg:      cfg,
		logger:   logger,
		activity: noopActivitySink{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.tokens = NewTokenService(s.cfg, logger)
	}
	return s
}

// WithActivitySink registers an audit sink. Sink failures are logged
// and never fail the operation that emitted the event.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

// WithPasswordAuthenticator overrides the bcrypt default.
func (s *Auther) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithTokenService overrides the default HS256 token service.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther.
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register creates a new identity, attaches the single role mapped from
// its type, and issues a token pair. Without a type hint the account is
// provisionally STUDENT until SelectUserType runs.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*AuthResult, error) {
	if msg.Password != msg.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}

	userType := UserTypeStudent // provisional until an explicit type selection
	if msg.UserType != "" {
		parsed, ok := ParseUserType(msg.UserType)
		if !ok {
			return nil, errors.New("unknown user type", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithMetadata(map[string]any{"user_type": msg.UserType})
		}
		userType = parsed
	}

	hash, err := s.hasher.HashPassword(msg.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	var result *AuthResult

	err = s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := s.users.ExistsByEmailTx(ctx, tx, msg.Email)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
		}
		if exists {
			return ErrEmailTaken
		}

		user := &User{
			Email:        msg.Email,
			Phone:        msg.Phone,
			PasswordHash: hash,
			UserType:     userType,
			Active:       true,
		}

		if msg.UseHashid {
			if id, err := hashid.NewUUID(msg.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = s.users.RegisterTx(ctx, tx, user); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create user")
		}

		role, err := s.attachDefaultRoleTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user.Roles = []*Role{role}

		result, err = s.issueTokensTx(ctx, tx, user, msg.Client)
		return err
	})

	if err != nil {
		return nil, s.asRichError(err, "user registration failed")
	}

	s.logger.Info("user registered", "user_id", result.UserID, "user_type", result.UserType)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		UserID:    result.UserID,
		Email:     result.Email,
		Client:    msg.Client,
		Metadata:  map[string]any{"user_type": string(result.UserType)},
	})

	return result, nil
}

// Login runs the credential check and lockout state machine, strictly
// in order: lookup, lockout short-circuit, password verification.
func (s *Auther) Login(ctx context.Context, email, password string, client ClientContext) (*AuthResult, error) {
	var result *AuthResult
	var authErr error
	var lockedNow bool

	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.users.GetByEmailTx(ctx, tx, email)
		if err != nil {
			if errors.IsNotFound(err) {
				// never reveal whether the email exists
				authErr = ErrInvalidCredentials
				return nil
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
		}

		now := time.Now()

		// a locked account short-circuits: no credential check, no
		// counter increment
		if IsAccountLocked(user, now) {
			authErr = NewAccountLockedError(*user.LockedUntil)
			return nil
		}

		if !user.Active {
			authErr = ErrAccountDisabled
			return nil
		}

		if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
			lockedNow = RecordFailedLogin(user, s.cfg.GetMaxFailedAttempts(), s.cfg.GetLockoutDuration(), now)
			if err := s.users.TrackFailedLoginTx(ctx, tx, user); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to track login attempt")
			}
			if lockedNow {
				s.logger.Warn("account locked after repeated failures",
					"user_id", user.ID.String(),
					"locked_until", user.LockedUntil)
			}
			// commit the counter update, then surface the generic error
			authErr = ErrInvalidCredentials
			return nil
		}

		if err := s.users.TrackSuccessfulLoginTx(ctx, tx, user, now); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to track successful login")
		}
		ClearLockout(user)
		user.LastLoginAt = &now

		result, err = s.issueTokensTx(ctx, tx, user, client)
		return err
	})

	if err != nil {
		return nil, s.asRichError(err, "login failed")
	}

	if authErr != nil {
		s.logger.Info("login rejected", "email", email)
		s.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Email:     email,
			Client:    client,
		})
		if lockedNow {
			s.record(ctx, ActivityEvent{
				EventType: ActivityEventAccountLocked,
				Email:     email,
				Client:    client,
			})
		}
		return nil, authErr
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    result.UserID,
		Email:     email,
		Client:    client,
	})

	return result, nil
}

// RefreshToken exchanges a still-valid refresh token for a new pair.
// The presented token is revoked in the same transaction that records
// the replacement; a replay or a lost rotation race both read as an
// invalid token.
func (s *Auther) RefreshToken(ctx context.Context, raw string) (*AuthResult, error) {
	claims, err := s.tokens.Decode(raw)
	if err != nil {
		return nil, err
	}

	if claims.Kind() != TokenKindRefresh {
		return nil, ErrTokenInvalid
	}

	var result *AuthResult

	err = s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.ledger.GetByTokenTx(ctx, tx, raw)
		if err != nil {
			if errors.IsNotFound(err) {
				return ErrTokenInvalid
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to look up refresh token")
		}

		now := time.Now()
		if !record.IsValid(now) {
			return ErrTokenInvalid
		}

		rows, err := s.ledger.RevokeTx(ctx, tx, record.ID, now)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to revoke refresh token")
		}
		if rows == 0 {
			// a concurrent refresh won the rotation
			return ErrTokenInvalid
		}

		// claims may be stale: rebuild the response from persisted state
		user, err := s.users.GetByIDTx(ctx, tx, record.UserID)
		if err != nil {
			if errors.IsNotFound(err) {
				return ErrTokenInvalid
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load refresh token owner")
		}

		result, err = s.issueTokensTx(ctx, tx, user, ClientContext{})
		return err
	})

	if err != nil {
		return nil, s.asRichError(err, "token refresh failed")
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventTokenRefreshed,
		UserID:    result.UserID,
		Email:     result.Email,
	})

	return result, nil
}

// Logout bulk-revokes every live refresh token owned by the identity.
// Calling it twice is a no-op the second time.
func (s *Auther) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := s.ledger.RevokeAllForUserTx(ctx, tx, userID)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to revoke refresh tokens")
		}
		s.logger.Info("logout revoked refresh tokens", "user_id", userID.String(), "count", count)
		return nil
	})

	if err != nil {
		return s.asRichError(err, "logout failed")
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventLogout,
		UserID:    userID.String(),
	})

	return nil
}

// SelectUserType reassigns the type tag and replaces the role set with
// the single role mapped from the new type. Tokens are not reissued;
// the caller must log in again or refresh to pick up new role claims.
func (s *Auther) SelectUserType(ctx context.Context, userID uuid.UUID, userType UserType) error {
	if !userType.IsValidUserType() {
		return errors.New("unknown user type", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"user_type": string(userType)})
	}

	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.users.GetByIDTx(ctx, tx, userID)
		if err != nil {
			if errors.IsNotFound(err) {
				return ErrIdentityNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load user")
		}

		if err := s.users.SetUserTypeTx(ctx, tx, user.ID, userType); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update user type")
		}

		user.UserType = userType
		if _, err := s.attachDefaultRoleTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return s.asRichError(err, "user type selection failed")
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventUserTypeChanged,
		UserID:    userID.String(),
		Metadata:  map[string]any{"user_type": string(userType)},
	})

	return nil
}

// MarkProfileCompleted records that the external profile service holds
// a completed profile for this identity.
func (s *Auther) MarkProfileCompleted(ctx context.Context, userID uuid.UUID, profileServiceID string) error {
	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.users.MarkProfileCompletedTx(ctx, tx, userID, profileServiceID); err != nil {
			if errors.IsNotFound(err) {
				return ErrIdentityNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to mark profile completed")
		}
		return nil
	})

	if err != nil {
		return s.asRichError(err, "profile completion failed")
	}

	return nil
}

// PurgeExpiredTokens deletes ledger rows past their persisted expiry.
// Maintenance only; hosts call it from a scheduler, never per request.
func (s *Auther) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	var count int64

	err := s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		count, err = s.ledger.PurgeExpiredTx(ctx, tx, before)
		return err
	})

	if err != nil {
		return 0, s.asRichError(err, "refresh token purge failed")
	}

	return count, nil
}

// attachDefaultRoleTx resolves the role keyed by the user's type and
// makes it the user's only role. A missing role row is a seed-data
// deployment failure.
func (s *Auther) attachDefaultRoleTx(ctx context.Context, tx bun.IDB, user *User) (*Role, error) {
	roleName, ok := DefaultRoleName(user.UserType)
	if !ok {
		return nil, errors.New("unknown user type", errors.CategoryValidation).
			WithMetadata(map[string]any{"user_type": string(user.UserType)})
	}

	role, err := s.roles.GetByNameTx(ctx, tx, roleName)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(ErrSeedRoleMissing, errors.CategoryInternal, "default role lookup failed").
				WithTextCode(TextCodeSeedRoleMissing).
				WithMetadata(map[string]any{"role_name": roleName})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve default role")
	}

	if err := s.users.ReplaceRoleTx(ctx, tx, user.ID, role.ID); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to assign role")
	}

	user.Roles = []*Role{role}

	return role, nil
}

func (s *Auther) issueTokensTx(ctx context.Context, tx bun.IDB, user *User, client ClientContext) (*AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}

	record := &RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTokenTTL()),
	}

	if _, err := s.ledger.IssueTx(ctx, tx, record); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return s.buildAuthResult(user, access, refresh), nil
}

func (s *Auther) buildAuthResult(user *User, access, refresh string) *AuthResult {
	return &AuthResult{
		UserID:                user.ID.String(),
		Email:                 user.Email,
		UserType:              user.UserType,
		Roles:                 RoleNames(user),
		Permissions:           PermissionNames(user),
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresIn:  s.tokens.AccessTokenTTL(),
		RefreshTokenExpiresIn: s.tokens.RefreshTokenTTL(),
		TokenType:             "Bearer",
		ProfileCompleted:      user.ProfileCompleted,
		ProfileServiceID:      user.ProfileServiceID,
		RedirectTo:            RedirectService(user.UserType),
	}
}

func (s *Auther) record(ctx context.Context, evt ActivityEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	if err := s.activity.Record(ctx, evt); err != nil {
		s.logger.Warn("activity sink failed", "event_type", string(evt.EventType), "error", err)
	}
}

func (s *Auther) asRichError(err error, msg string) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return errors.Wrap(err, errors.CategoryInternal, msg)
}
