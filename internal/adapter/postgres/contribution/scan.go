package contribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// scanContribution scans one row of the contributionColumns projection.
func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c domain.Contribution

		statusID        *uuid.UUID
		status          *string
		rejectionReason *string
		adminComment    *string
		donorReply      *string
		donorRepliedAt  *time.Time
		replacementURI  *string
		resubmissions   *int
		statusCreatedAt *time.Time
		statusUpdatedAt *time.Time
	)

	err := row.Scan(
		&c.ID, &c.CaseID, &c.DonorID, &c.Amount, &c.Message,
		&c.ParentID,
		&c.EvidenceURI, &c.PaymentMethod, &c.Anonymous, &c.Notes,
		&c.CreatedAt,
		&c.CaseTitle, &c.DonorName, &c.DonorEmail,
		&statusID, &status, &rejectionReason, &adminComment,
		&donorReply, &donorRepliedAt, &replacementURI,
		&resubmissions, &statusCreatedAt, &statusUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if statusID != nil {
		st := &domain.ApprovalStatus{
			ID:                     *statusID,
			ContributionID:         c.ID,
			Status:                 domain.StatusValue(*status),
			AdminComment:           adminComment,
			DonorReply:             donorReply,
			DonorRepliedAt:         donorRepliedAt,
			ReplacementEvidenceURI: replacementURI,
			ResubmissionCount:      *resubmissions,
			CreatedAt:              *statusCreatedAt,
			UpdatedAt:              *statusUpdatedAt,
		}
		if rejectionReason != nil {
			r := domain.RejectionReason(*rejectionReason)
			st.RejectionReason = &r
		}
		c.Status = st
	}

	return &c, nil
}

// scanStatus scans one row of the approval_statuses RETURNING projection.
func scanStatus(row pgx.Row) (*domain.ApprovalStatus, error) {
	var (
		st     domain.ApprovalStatus
		status string
		reason *string
	)

	err := row.Scan(
		&st.ID, &st.ContributionID, &status, &reason, &st.AdminComment,
		&st.DonorReply, &st.DonorRepliedAt, &st.ReplacementEvidenceURI,
		&st.ResubmissionCount, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Status = domain.StatusValue(status)
	if reason != nil {
		r := domain.RejectionReason(*reason)
		st.RejectionReason = &r
	}

	return &st, nil
}
