package review

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// RejectInput holds the parameters for rejecting a contribution.
type RejectInput struct {
	ContributionID uuid.UUID
	Reason         domain.RejectionReason
	// AdminComment is mandatory: a rejection without actionable guidance is
	// a usability defect, not merely discouraged. For ReasonOther the
	// comment carries the actual reason, since the enum gives none.
	AdminComment string
}

// Validate checks all fields and collects all errors. Runs before any store
// mutation.
func (i RejectInput) Validate() error {
	var errs []domain.FieldError

	if i.ContributionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "contribution_id", Message: "required"})
	}
	if !i.Reason.IsValid() {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "unknown rejection reason"})
	}
	if strings.TrimSpace(i.AdminComment) == "" {
		errs = append(errs, domain.FieldError{Field: "admin_comment", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
