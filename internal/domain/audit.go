package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a review decision or role change for accountability.
type AuditLog struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Action     AuditAction
	EntityID   uuid.UUID
	Detail     *string
	OccurredAt time.Time
}
