package auth

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokenStore is the ledger contract the authenticator needs.
type RefreshTokenStore interface {
	IssueTx(ctx context.Context, tx bun.IDB, record *RefreshToken) (*RefreshToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (int64, error)
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error)
	PurgeExpiredTx(ctx context.Context, tx bun.IDB, before time.Time) (int64, error)
}

// RefreshTokens exposes the full refresh token ledger.
type RefreshTokens interface {
	repository.Repository[*RefreshToken]
	RefreshTokenStore

	Issue(ctx context.Context, record *RefreshToken) (*RefreshToken, error)
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type refreshTokens struct {
	repository.Repository[*RefreshToken]
	db *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	repo := repository.NewRepository[*RefreshToken](db, repository.ModelHandlers[*RefreshToken]{
		NewRecord: func() *RefreshToken { return &RefreshToken{} },
		GetID: func(t *RefreshToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *RefreshToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &refreshTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *refreshTokens) Issue(ctx context.Context, record *RefreshToken) (*RefreshToken, error) {
	return a.IssueTx(ctx, a.db, record)
}

func (a *refreshTokens) IssueTx(ctx context.Context, tx bun.IDB, record *RefreshToken) (*RefreshToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *refreshTokens) GetByToken(ctx context.Context, token string) (*RefreshToken, error) {
	return a.GetByTokenTx(ctx, a.db, token)
}

func (a *refreshTokens) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// RevokeTx flips is_revoked only when the row is still exchangeable.
// Zero rows affected means another caller rotated the same token first;
// callers must treat that as an invalid token.
func (a *refreshTokens) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID, now time.Time) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("is_revoked = TRUE").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.is_revoked = FALSE").
		Where("?TableAlias.expires_at > ?", now).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *refreshTokens) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return a.RevokeAllForUserTx(ctx, a.db, userID)
}

// RevokeAllForUserTx bulk-revokes every live token for the identity.
// Revoking an already revoked set is a no-op, which makes logout
// idempotent.
func (a *refreshTokens) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*RefreshToken)(nil)).
		Set("is_revoked = TRUE").
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.is_revoked = FALSE").
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (a *refreshTokens) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return a.PurgeExpiredTx(ctx, a.db, before)
}

// PurgeExpiredTx is the maintenance sweep. It never runs on the
// request-serving path; hosts trigger it out-of-band.
func (a *refreshTokens) PurgeExpiredTx(ctx context.Context, tx bun.IDB, before time.Time) (int64, error) {
	res, err := tx.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("?TableAlias.expires_at < ?", before).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
