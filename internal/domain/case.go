package domain

import (
	"time"

	"github.com/google/uuid"
)

// CharityCase is a beneficiary case that receives contributions.
type CharityCase struct {
	ID              uuid.UUID
	Title           string
	Description     *string
	BeneficiaryName string
	BeneficiaryContact *string
	CategoryID      *uuid.UUID
	TargetAmount    int64
	// CollectedAmount accumulates approved contribution amounts only.
	CollectedAmount int64
	Status          CaseStatus
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// IsDeleted returns true if the case has been soft-deleted.
func (c *CharityCase) IsDeleted() bool {
	return c.DeletedAt != nil
}

// IsDraft reports whether the case is still a lazily created draft.
func (c *CharityCase) IsDraft() bool {
	return c.Status == CaseStatusDraft
}
