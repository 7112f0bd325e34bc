// Package audit implements the audit log repository using PostgreSQL.
// Audit rows are append-only; there is no update or delete.
package audit

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ihsanfoundation/ihsan-backend/internal/adapter/postgres"
	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Record appends an audit entry.
func (r *Repo) Record(ctx context.Context, entry *domain.AuditLog) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("audit_logs").
		Columns("id", "actor_id", "action", "entity_id", "detail", "occurred_at").
		Values(entry.ID, entry.ActorID, string(entry.Action), entry.EntityID,
			entry.Detail, entry.OccurredAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit log: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_log", entry.ID)
	}
	return nil
}

// ListByEntity returns audit entries for one entity, newest first.
func (r *Repo) ListByEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]domain.AuditLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select("id", "actor_id", "action", "entity_id", "detail", "occurred_at").
		From("audit_logs").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("occurred_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit logs: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditLog
	for rows.Next() {
		var (
			e      domain.AuditLog
			action string
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &action, &e.EntityID, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Action = domain.AuditAction(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
