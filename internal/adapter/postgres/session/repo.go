// Package session implements the refresh-token session repository using
// PostgreSQL. Only token hashes are stored.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// Repo provides session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var sessionColumns = []string{
	"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at",
}

// Create inserts a new session.
func (r *Repo) Create(ctx context.Context, s *domain.Session) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.CreatedAt, s.RevokedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "session", s.ID)
	}
	return nil
}

// GetByTokenHash returns the session matching the refresh-token hash.
func (r *Repo) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session: %w", err)
	}

	var s domain.Session
	err = querier.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt, &s.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Revoke marks a session revoked. Idempotent.
func (r *Repo) Revoke(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	if _, err := querier.Exec(ctx, sql, id); err != nil {
		return postgres.MapError(err, "session", id)
	}
	return nil
}

// RevokeAllForUser revokes every active session of a user. Used when the
// user's role or password changes.
func (r *Repo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	tag, err := querier.Exec(ctx, sql, userID)
	if err != nil {
		return 0, postgres.MapError(err, "session", userID)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired physically removes sessions past their expiry by more than
// the grace period. Returns the number of deleted rows.
func (r *Repo) DeleteExpired(ctx context.Context, grace time.Duration) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `DELETE FROM sessions WHERE expires_at < $1`
	tag, err := querier.Exec(ctx, sql, time.Now().UTC().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
