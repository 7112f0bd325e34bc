package contribution

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// CreateInput holds the parameters for a first-time donor submission.
type CreateInput struct {
	CaseID        uuid.UUID
	Amount        int64
	PaymentMethod string
	Message       string
	Anonymous     bool

	Evidence            []byte
	EvidenceContentType string
}

// Validate checks the static fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.CaseID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "case_id", Message: "required"})
	}
	if i.Amount <= 0 {
		errs = append(errs, domain.FieldError{Field: "amount", Message: "must be positive"})
	}
	if strings.TrimSpace(i.PaymentMethod) == "" {
		errs = append(errs, domain.FieldError{Field: "payment_method", Message: "required"})
	}
	if len(i.Evidence) > 0 && i.EvidenceContentType == "" {
		errs = append(errs, domain.FieldError{Field: "evidence_content_type", Message: "required when evidence is supplied"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ReplyInput holds a donor's reply to a rejection.
type ReplyInput struct {
	ContributionID uuid.UUID
	Reply          string

	Evidence            []byte
	EvidenceContentType string
}

// Validate checks the reply fields.
func (i ReplyInput) Validate() error {
	var errs []domain.FieldError

	if i.ContributionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "contribution_id", Message: "required"})
	}
	if strings.TrimSpace(i.Reply) == "" {
		errs = append(errs, domain.FieldError{Field: "reply", Message: "required"})
	}
	if len(i.Evidence) > 0 && i.EvidenceContentType == "" {
		errs = append(errs, domain.FieldError{Field: "evidence_content_type", Message: "required when evidence is supplied"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
