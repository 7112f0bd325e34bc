// Package casefile implements the CharityCase repository using PostgreSQL.
package casefile

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

// Repo provides charity case persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new charity case repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var caseColumns = []string{
	"id", "title", "description", "beneficiary_name", "beneficiary_contact",
	"category_id", "target_amount", "collected_amount", "status",
	"created_by", "created_at", "updated_at", "deleted_at",
}

// GetByID returns a case by primary key. Soft-deleted cases are returned;
// callers decide whether deletion matters.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CharityCase, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(caseColumns...).
		From("charity_cases").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get case: %w", err)
	}

	c, err := scanCase(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "charity_case", id)
	}
	return c, nil
}

// List returns non-deleted cases, optionally filtered by status, ordered by
// most recently updated.
func (r *Repo) List(ctx context.Context, status *domain.CaseStatus, limit, offset int) ([]*domain.CharityCase, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	conds := []squirrel.Sqlizer{squirrel.Eq{"deleted_at": nil}}
	if status != nil {
		conds = append(conds, squirrel.Eq{"status": string(*status)})
	}

	countQ := postgres.Builder().Select("count(*)").From("charity_cases")
	listQ := postgres.Builder().
		Select(caseColumns...).
		From("charity_cases").
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	for _, cond := range conds {
		countQ = countQ.Where(cond)
		listQ = listQ.Where(cond)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count cases: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list cases: %w", err)
	}
	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var items []*domain.CharityCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan case: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// Create inserts a new case.
func (r *Repo) Create(ctx context.Context, c *domain.CharityCase) (*domain.CharityCase, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("charity_cases").
		Columns("id", "title", "description", "beneficiary_name", "beneficiary_contact",
			"category_id", "target_amount", "collected_amount", "status",
			"created_by", "created_at", "updated_at").
		Values(c.ID, c.Title, c.Description, c.BeneficiaryName, c.BeneficiaryContact,
			c.CategoryID, c.TargetAmount, c.CollectedAmount, string(c.Status),
			c.CreatedBy, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert case: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return nil, postgres.MapError(err, "charity_case", c.ID)
	}
	return r.GetByID(ctx, c.ID)
}

// Update patches mutable case fields and bumps updated_at.
func (r *Repo) Update(ctx context.Context, c *domain.CharityCase) (*domain.CharityCase, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("charity_cases").
		Set("title", c.Title).
		Set("description", c.Description).
		Set("beneficiary_name", c.BeneficiaryName).
		Set("beneficiary_contact", c.BeneficiaryContact).
		Set("category_id", c.CategoryID).
		Set("target_amount", c.TargetAmount).
		Set("status", string(c.Status)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": c.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update case: %w", err)
	}

	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "charity_case", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("charity_case %s: %w", c.ID, domain.ErrNotFound)
	}
	return r.GetByID(ctx, c.ID)
}

// AddToCollectedAmount increases a case's accumulated amount. Called when a
// contribution is approved, inside the approval transaction.
func (r *Repo) AddToCollectedAmount(ctx context.Context, caseID uuid.UUID, delta int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
UPDATE charity_cases SET
	collected_amount = collected_amount + $1,
	updated_at = now()
WHERE id = $2 AND deleted_at IS NULL`

	tag, err := querier.Exec(ctx, sql, delta, caseID)
	if err != nil {
		return postgres.MapError(err, "charity_case", caseID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("charity_case %s: %w", caseID, domain.ErrNotFound)
	}
	return nil
}

// SoftDelete marks a case deleted. Returns domain.ErrNotFound if the case
// does not exist or is already deleted.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
UPDATE charity_cases SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`

	tag, err := querier.Exec(ctx, sql, id)
	if err != nil {
		return postgres.MapError(err, "charity_case", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("charity_case %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// HardDelete physically removes a draft case. Only drafts may be hard
// deleted; published cases go through SoftDelete.
func (r *Repo) HardDelete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `DELETE FROM charity_cases WHERE id = $1 AND status = 'draft'`

	tag, err := querier.Exec(ctx, sql, id)
	if err != nil {
		return postgres.MapError(err, "charity_case", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("charity_case %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteAbandonedDrafts removes draft cases untouched since the threshold.
// Returns the number of deleted drafts.
func (r *Repo) DeleteAbandonedDrafts(ctx context.Context, threshold time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `DELETE FROM charity_cases WHERE status = 'draft' AND updated_at < $1`

	tag, err := querier.Exec(ctx, sql, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete abandoned drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindDraftByCreator returns the creator's current draft case, if any.
func (r *Repo) FindDraftByCreator(ctx context.Context, creatorID uuid.UUID) (*domain.CharityCase, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(caseColumns...).
		From("charity_cases").
		Where(squirrel.Eq{"created_by": creatorID, "status": string(domain.CaseStatusDraft), "deleted_at": nil}).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find draft: %w", err)
	}

	c, err := scanCase(querier.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft for %s: %w", creatorID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, postgres.MapError(err, "charity_case", creatorID)
	}
	return c, nil
}

func scanCase(row pgx.Row) (*domain.CharityCase, error) {
	var (
		c      domain.CharityCase
		status string
	)
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.BeneficiaryName, &c.BeneficiaryContact,
		&c.CategoryID, &c.TargetAmount, &c.CollectedAmount, &status,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CaseStatus(status)
	return &c, nil
}
