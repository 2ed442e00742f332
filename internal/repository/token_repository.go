package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh token digests.
type TokenRepo struct{ q DBTX }

func NewTokenRepo(q DBTX) *TokenRepo { return &TokenRepo{q: q} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return translate(err)
}

// ValidateRefresh returns the user of a non-revoked, non-expired token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, translate(err)
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.q.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return translate(err)
}

// RevokeAllForUser revokes every live token of a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.q.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return translate(err)
}

// DeleteForUser drops all token rows of a user ahead of deleting the account.
func (r *TokenRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return translate(err)
}
