package auth

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStore is the narrow persistence contract the authenticator needs.
type UserStore interface {
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	TrackFailedLoginTx(ctx context.Context, tx bun.IDB, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User, at time.Time) error
	SetUserTypeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, userType UserType) error
	ReplaceRoleTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error
	MarkProfileCompletedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, profileServiceID string) error
}

// Users exposes the full user repository, the UserStore contract plus
// admin operations and the generic repository surface.
type Users interface {
	repository.Repository[*User]
	UserStore

	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, user *User) (*User, error)

	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error)
	Verify(ctx context.Context, id uuid.UUID) (*User, error)
	VerifyTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	Remove(ctx context.Context, id uuid.UUID) error
	RemoveTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx loads the user with its role graph eagerly resolved so
// authorities can be derived without further queries.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Relation("Roles").
		Relation("Roles.Permissions").
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.ExistsByEmailTx(ctx, a.db, email)
}

func (a *users) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

// TrackFailedLoginTx persists the failure counter and lockout window
// computed by RecordFailedLogin.
func (a *users) TrackFailedLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("failed_login_attempts = ?", user.FailedLoginAttempts).
		Set("account_locked_until = ?", user.LockedUntil).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)

	return err
}

// TrackSuccessfulLoginTx stamps last_login and resets the lockout
// counters in a single statement.
func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User, at time.Time) error {
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("last_login = ?", at).
		Set("failed_login_attempts = 0").
		Set("account_locked_until = NULL").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)

	return err
}

func (a *users) SetUserTypeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, userType UserType) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("user_type = ?", string(userType)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// ReplaceRoleTx swaps the user's role set for exactly one role. The
// core never produces multi-role assignments on its own.
func (a *users) ReplaceRoleTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*UserRole)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx); err != nil {
		return err
	}

	_, err := tx.NewInsert().
		Model(&UserRole{UserID: userID, RoleID: roleID}).
		Exec(ctx)

	return err
}

func (a *users) MarkProfileCompletedTx(ctx context.Context, tx bun.IDB, id uuid.UUID, profileServiceID string) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("profile_completed = TRUE").
		Set("profile_service_id = ?", profileServiceID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	return a.SetActiveTx(ctx, a.db, id, active)
}

// SetActiveTx writes the flag directly; a generic update would drop a
// false value as a zero field.
func (a *users) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error) {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return a.GetByIDTx(ctx, tx, id)
}

func (a *users) Verify(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.VerifyTx(ctx, a.db, id)
}

func (a *users) VerifyTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("is_verified = TRUE").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return a.GetByIDTx(ctx, tx, id)
}

func (a *users) Remove(ctx context.Context, id uuid.UUID) error {
	return a.RemoveTx(ctx, a.db, id)
}

// RemoveTx hard-deletes the identity; refresh tokens and role links go
// with it via ON DELETE CASCADE.
func (a *users) RemoveTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.UserType == "" {
		record.UserType = UserTypeStudent
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
