package revision

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// SubmitInput holds the parameters for resubmitting a rejected contribution.
type SubmitInput struct {
	OriginalID    uuid.UUID
	Amount        int64
	PaymentMethod string
	// Explanation is the donor's account of what was fixed. Mandatory: a
	// silent resubmission gives the reviewer nothing to act on.
	Explanation string
	// Message is an optional note to display alongside the contribution.
	Message   string
	Anonymous bool

	// Evidence is the replacement evidence file, if the donor supplies one.
	Evidence            []byte
	EvidenceContentType string
}

// Validate checks the static fields and collects all errors. The payment
// method key is validated separately against the live lookup.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	if i.OriginalID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "original_id", Message: "required"})
	}
	if i.Amount <= 0 {
		errs = append(errs, domain.FieldError{Field: "amount", Message: "must be positive"})
	}
	if strings.TrimSpace(i.PaymentMethod) == "" {
		errs = append(errs, domain.FieldError{Field: "payment_method", Message: "required"})
	}
	if strings.TrimSpace(i.Explanation) == "" {
		errs = append(errs, domain.FieldError{Field: "explanation", Message: "required"})
	}
	if len(i.Evidence) > 0 && i.EvidenceContentType == "" {
		errs = append(errs, domain.FieldError{Field: "evidence_content_type", Message: "required when evidence is supplied"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
