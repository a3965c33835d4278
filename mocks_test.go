package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	auth "github.com/recn/platform-auth"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// inlineTxRunner executes the closure immediately with a zero bun.Tx.
// The mocked stores never touch the transaction handle.
type inlineTxRunner struct{}

func (inlineTxRunner) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// plainHasher avoids bcrypt work in engine tests.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hash:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if hash != "hash:"+password {
		return auth.ErrMismatchedHashAndPassword
	}
	return nil
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, tx, id)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	if created, ok := args.Get(0).(*auth.User); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) TrackFailedLoginTx(ctx context.Context, tx bun.IDB, user *auth.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *auth.User, at time.Time) error {
	args := m.Called(ctx, tx, user, at)
	return args.Error(0)
}

func (m *MockUserStore) SetUserTypeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, userType auth.UserType) error {
	args := m.Called(ctx, tx, id, userType)
	return args.Error(0)
}

func (m *MockUserStore) ReplaceRoleTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tx, userID, roleID)
	return args.Error(0)
}

func (m *MockUserStore) MarkProfileCompletedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, profileServiceID string) error {
	args := m.Called(ctx, tx, id, profileServiceID)
	return args.Error(0)
}

// MockRoleStore implements auth.RoleStore
type MockRoleStore struct {
	mock.Mock
}

func (m *MockRoleStore) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*auth.Role, error) {
	args := m.Called(ctx, tx, name)
	if role, ok := args.Get(0).(*auth.Role); ok {
		return role, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRefreshTokenStore implements auth.RefreshTokenStore
type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) IssueTx(ctx context.Context, tx bun.IDB, record *auth.RefreshToken) (*auth.RefreshToken, error) {
	args := m.Called(ctx, tx, record)
	if created, ok := args.Get(0).(*auth.RefreshToken); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenStore) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, tx, token)
	if record, ok := args.Get(0).(*auth.RefreshToken); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenStore) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, id, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenStore) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenStore) PurgeExpiredTx(ctx context.Context, tx bun.IDB, before time.Time) (int64, error) {
	args := m.Called(ctx, tx, before)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() auth.SimpleConfig {
	return auth.SimpleConfig{
		SigningKey:        "test-signing-key",
		Issuer:            "test-issuer",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   24 * time.Hour,
		MaxFailedAttempts: 3,
		LockoutDuration:   15 * time.Minute,
	}
}

func newTestAuther(t *testing.T, users *MockUserStore, roles *MockRoleStore, ledger *MockRefreshTokenStore) *auth.Auther {
	t.Helper()

	auther, err := auth.NewAuthenticatorWithStores(inlineTxRunner{}, users, roles, ledger, testConfig())
	if err != nil {
		t.Fatalf("failed to build authenticator: %v", err)
	}
	return auther.WithPasswordAuthenticator(plainHasher{})
}
