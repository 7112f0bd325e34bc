// Package contribution implements the Contribution repository using
// PostgreSQL. Each contribution row carries zero or more approval-status
// rows; the most recent status row is authoritative and is attached to
// every returned contribution.
package contribution

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

// Repo provides contribution persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contribution repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// contributionColumns are the columns selected for every contribution read,
// including the denormalized case/donor display fields and the latest
// approval status (LEFT JOIN — a contribution may have no status row yet).
var contributionColumns = []string{
	"c.id", "c.case_id", "c.donor_id", "c.amount", "c.message",
	"c.parent_contribution_id",
	"c.evidence_uri", "c.payment_method", "c.anonymous", "c.notes",
	"c.created_at",
	"cc.title AS case_title", "u.name AS donor_name", "u.email AS donor_email",
	"s.id", "s.status", "s.rejection_reason", "s.admin_comment",
	"s.donor_reply", "s.donor_replied_at", "s.replacement_evidence_uri",
	"s.resubmission_count", "s.created_at", "s.updated_at",
}

// latestStatusJoin selects the newest approval-status row per contribution.
const latestStatusJoin = `LEFT JOIN LATERAL (
	SELECT * FROM approval_statuses st
	WHERE st.contribution_id = c.id
	ORDER BY st.created_at DESC
	LIMIT 1
) s ON true`

func (r *Repo) selectBuilder() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(contributionColumns...).
		From("contributions c").
		Join("charity_cases cc ON cc.id = c.case_id").
		Join("users u ON u.id = c.donor_id").
		JoinClause(latestStatusJoin)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a contribution with its latest approval status.
// Returns domain.ErrNotFound if the contribution does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := r.selectBuilder().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get contribution: %w", err)
	}

	row := querier.QueryRow(ctx, sql, args...)
	c, err := scanContribution(row)
	if err != nil {
		return nil, postgres.MapError(err, "contribution", id)
	}

	return c, nil
}

// List returns a page of contributions matching the filter, newest first,
// along with the total number of matches. The filter must already be
// normalized by the caller.
func (r *Repo) List(ctx context.Context, filter domain.ContributionFilter) ([]*domain.Contribution, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	conds := filterConds(filter)

	countQ := postgres.Builder().
		Select("count(*)").
		From("contributions c").
		Join("charity_cases cc ON cc.id = c.case_id").
		Join("users u ON u.id = c.donor_id").
		JoinClause(latestStatusJoin)
	for _, cond := range conds {
		countQ = countQ.Where(cond)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count contributions: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contributions: %w", err)
	}

	listQ := r.selectBuilder().
		OrderBy("c.created_at DESC", "c.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))
	for _, cond := range conds {
		listQ = listQ.Where(cond)
	}

	listSQL, listArgs, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list contributions: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var items []*domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contribution: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contributions: %w", err)
	}

	return items, total, nil
}

// filterConds translates a ContributionFilter into squirrel conditions.
func filterConds(f domain.ContributionFilter) []squirrel.Sqlizer {
	var conds []squirrel.Sqlizer

	if f.Status != nil {
		if *f.Status == domain.StatusPending {
			// Contributions without a status row are implicitly pending.
			conds = append(conds, squirrel.Or{
				squirrel.Eq{"s.status": string(domain.StatusPending)},
				squirrel.Eq{"s.id": nil},
			})
		} else {
			conds = append(conds, squirrel.Eq{"s.status": string(*f.Status)})
		}
	}

	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"cc.title": pattern},
			squirrel.ILike{"c.message": pattern},
		})
	}

	if f.DateFrom != nil {
		conds = append(conds, squirrel.GtOrEq{"c.created_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		conds = append(conds, squirrel.LtOrEq{"c.created_at": *f.DateTo})
	}

	return conds
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a contribution together with its initial pending approval
// status. Both inserts run on the caller's querier, so wrapping the call in
// TxManager.RunInTx makes them atomic.
func (r *Repo) Create(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	insert := postgres.Builder().
		Insert("contributions").
		Columns("id", "case_id", "donor_id", "amount", "message",
			"parent_contribution_id", "evidence_uri",
			"payment_method", "anonymous", "notes", "created_at").
		Values(c.ID, c.CaseID, c.DonorID, c.Amount, c.Message,
			c.ParentID, c.EvidenceURI,
			c.PaymentMethod, c.Anonymous, c.Notes, c.CreatedAt)

	sql, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert contribution: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return nil, postgres.MapError(err, "contribution", c.ID)
	}

	if c.Status != nil {
		if err := r.insertStatus(ctx, querier, c.Status); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, c.ID)
}

// UpdateStatus transitions the latest approval status of a contribution from
// fromStatus to the fields carried by upd. The precondition is enforced in
// SQL: when the current status differs (for example a concurrent admin won
// the race), zero rows match and domain.ErrInvalidTransition is returned.
//
// A contribution that has no status row yet is implicitly pending; in that
// case a fresh row is inserted when fromStatus is pending.
func (r *Repo) UpdateStatus(ctx context.Context, contributionID uuid.UUID, fromStatus domain.StatusValue, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const updateSQL = `
UPDATE approval_statuses SET
	status = $1,
	rejection_reason = $2,
	admin_comment = $3,
	updated_at = $4
WHERE id = (
	SELECT id FROM approval_statuses
	WHERE contribution_id = $5
	ORDER BY created_at DESC
	LIMIT 1
) AND status = $6
RETURNING id, contribution_id, status, rejection_reason, admin_comment,
	donor_reply, donor_replied_at, replacement_evidence_uri,
	resubmission_count, created_at, updated_at`

	var reason *string
	if upd.RejectionReason != nil {
		s := string(*upd.RejectionReason)
		reason = &s
	}

	row := querier.QueryRow(ctx, updateSQL,
		string(upd.Status), reason, upd.AdminComment, upd.UpdatedAt,
		contributionID, string(fromStatus))

	status, err := scanStatus(row)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "approval_status", contributionID)
	}

	// No row matched: either no status row exists yet (implicit pending),
	// or the precondition failed.
	if fromStatus == domain.StatusPending {
		created, insErr := r.insertStatusIfAbsent(ctx, querier, contributionID, upd)
		if insErr != nil {
			return nil, insErr
		}
		if created != nil {
			return created, nil
		}
	}

	current, curErr := r.currentStatusValue(ctx, querier, contributionID)
	if curErr != nil {
		return nil, curErr
	}
	return nil, &domain.InvalidTransitionError{From: current, To: upd.Status}
}

// IncrementResubmissionCount bumps the resubmission counter on the latest
// status row of the original contribution. Called exactly once per accepted
// revision submission, inside the revision transaction.
func (r *Repo) IncrementResubmissionCount(ctx context.Context, contributionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
UPDATE approval_statuses SET
	resubmission_count = resubmission_count + 1,
	updated_at = now()
WHERE id = (
	SELECT id FROM approval_statuses
	WHERE contribution_id = $1
	ORDER BY created_at DESC
	LIMIT 1
)`

	tag, err := querier.Exec(ctx, sql, contributionID)
	if err != nil {
		return postgres.MapError(err, "approval_status", contributionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approval_status %s: %w", contributionID, domain.ErrNotFound)
	}
	return nil
}

// SetDonorReply records the donor's free-text reply (and optional replacement
// evidence) on the latest status row of a rejected contribution.
func (r *Repo) SetDonorReply(ctx context.Context, contributionID uuid.UUID, reply string, evidenceURI *string, at time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
UPDATE approval_statuses SET
	donor_reply = $1,
	donor_replied_at = $2,
	replacement_evidence_uri = COALESCE($3, replacement_evidence_uri),
	updated_at = $2
WHERE id = (
	SELECT id FROM approval_statuses
	WHERE contribution_id = $4
	ORDER BY created_at DESC
	LIMIT 1
) AND status = 'rejected'`

	tag, err := querier.Exec(ctx, sql, reply, at, evidenceURI, contributionID)
	if err != nil {
		return postgres.MapError(err, "approval_status", contributionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approval_status %s: %w", contributionID, domain.ErrInvalidTransition)
	}
	return nil
}

// ListEvidenceURIs returns every evidence URI referenced by any contribution
// or status row. Used by cleanup-evidence to detect orphaned objects.
func (r *Repo) ListEvidenceURIs(ctx context.Context) ([]string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
SELECT evidence_uri FROM contributions WHERE evidence_uri IS NOT NULL
UNION
SELECT replacement_evidence_uri FROM approval_statuses WHERE replacement_evidence_uri IS NOT NULL`

	rows, err := querier.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list evidence uris: %w", err)
	}
	defer rows.Close()

	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, fmt.Errorf("scan evidence uri: %w", err)
		}
		uris = append(uris, uri)
	}
	return uris, rows.Err()
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

func (r *Repo) insertStatus(ctx context.Context, querier postgres.Querier, st *domain.ApprovalStatus) error {
	var reason *string
	if st.RejectionReason != nil {
		s := string(*st.RejectionReason)
		reason = &s
	}

	insert := postgres.Builder().
		Insert("approval_statuses").
		Columns("id", "contribution_id", "status", "rejection_reason",
			"admin_comment", "resubmission_count", "created_at", "updated_at").
		Values(st.ID, st.ContributionID, string(st.Status), reason,
			st.AdminComment, st.ResubmissionCount, st.CreatedAt, st.UpdatedAt)

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert approval_status: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "approval_status", st.ID)
	}
	return nil
}

// insertStatusIfAbsent creates a status row only when the contribution exists
// and has no status row at all. Returns (nil, nil) when a row already exists.
func (r *Repo) insertStatusIfAbsent(ctx context.Context, querier postgres.Querier, contributionID uuid.UUID, upd *domain.ApprovalStatus) (*domain.ApprovalStatus, error) {
	var reason *string
	if upd.RejectionReason != nil {
		s := string(*upd.RejectionReason)
		reason = &s
	}

	const sql = `
INSERT INTO approval_statuses
	(id, contribution_id, status, rejection_reason, admin_comment,
	 resubmission_count, created_at, updated_at)
SELECT $1, c.id, $2, $3, $4, 0, $5, $5
FROM contributions c
WHERE c.id = $6
  AND NOT EXISTS (SELECT 1 FROM approval_statuses st WHERE st.contribution_id = c.id)
RETURNING id, contribution_id, status, rejection_reason, admin_comment,
	donor_reply, donor_replied_at, replacement_evidence_uri,
	resubmission_count, created_at, updated_at`

	row := querier.QueryRow(ctx, sql,
		uuid.New(), string(upd.Status), reason, upd.AdminComment,
		upd.UpdatedAt, contributionID)

	status, err := scanStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError(err, "approval_status", contributionID)
	}
	return status, nil
}

func (r *Repo) currentStatusValue(ctx context.Context, querier postgres.Querier, contributionID uuid.UUID) (domain.StatusValue, error) {
	const sql = `
SELECT st.status FROM approval_statuses st
WHERE st.contribution_id = $1
ORDER BY st.created_at DESC
LIMIT 1`

	var status string
	err := querier.QueryRow(ctx, sql, contributionID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		// Verify the contribution exists at all.
		var exists bool
		checkErr := querier.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM contributions WHERE id = $1)`, contributionID).Scan(&exists)
		if checkErr != nil {
			return "", postgres.MapError(checkErr, "contribution", contributionID)
		}
		if !exists {
			return "", fmt.Errorf("contribution %s: %w", contributionID, domain.ErrNotFound)
		}
		return domain.StatusPending, nil
	}
	if err != nil {
		return "", postgres.MapError(err, "approval_status", contributionID)
	}
	return domain.StatusValue(status), nil
}
