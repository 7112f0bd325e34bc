package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contribution is a single donor payment submission tied to one case.
// Contributions are never deleted or edited after creation; a rejected
// contribution is superseded by a newly created revision contribution.
type Contribution struct {
	ID       uuid.UUID
	CaseID   uuid.UUID
	DonorID  uuid.UUID
	Amount   int64 // minor currency units, always > 0
	Message  *string
	// ParentID links a revision to the rejected contribution it corrects.
	// Only contributions created by the revision pipeline carry it; legacy
	// rows rely on the breadcrumb text instead.
	ParentID      *uuid.UUID
	EvidenceURI   *string
	PaymentMethod string
	Anonymous     bool
	// Notes carries the legacy "REVISION: ..." linkage breadcrumb for
	// contributions created before an admin comment was recorded.
	Notes     *string
	CreatedAt time.Time

	// Denormalized for display.
	CaseTitle  string
	DonorName  string
	DonorEmail string

	// Status is the most recent approval status record, if any.
	Status *ApprovalStatus
}

// StatusValue returns the current review status, defaulting to pending for
// contributions that have no status record yet.
func (c *Contribution) StatusValue() StatusValue {
	if c.Status == nil {
		return StatusPending
	}
	return c.Status.Status
}

// IsRejected reports whether the contribution's latest status is rejected.
func (c *Contribution) IsRejected() bool {
	return c.StatusValue() == StatusRejected
}

// ApprovalStatus is the review record attached to a contribution. A
// contribution may historically carry more than one; the most recent is
// authoritative.
type ApprovalStatus struct {
	ID             uuid.UUID
	ContributionID uuid.UUID
	Status         StatusValue
	RejectionReason *RejectionReason
	AdminComment   *string
	DonorReply     *string
	DonorRepliedAt *time.Time
	// ReplacementEvidenceURI points at evidence supplied with a donor reply,
	// as opposed to evidence attached to a revision contribution.
	ReplacementEvidenceURI *string
	// ResubmissionCount on an original contribution's status record equals
	// the number of revision contributions ever linked to it.
	ResubmissionCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContributionFilter contains filtering/pagination parameters for
// contribution listings. Zero values mean "no filter".
type ContributionFilter struct {
	Status   *StatusValue
	Search   *string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

const (
	contributionDefaultLimit = 20
	contributionMaxLimit     = 100
)

// Normalize applies defaults and clamps values.
func (f *ContributionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = contributionDefaultLimit
	}
	if f.Limit > contributionMaxLimit {
		f.Limit = contributionMaxLimit
	}
}

// Offset returns the SQL offset for the normalized page/limit.
func (f *ContributionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ContributionPage is one page of a contribution listing.
type ContributionPage struct {
	Items      []*Contribution
	Total      int
	Page       int
	TotalPages int
}
