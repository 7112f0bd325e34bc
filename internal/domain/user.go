package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account: donor, reviewer, or admin.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a refresh-token session. Only the SHA-256 hash of the token is
// stored.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsActive reports whether the session can still be refreshed.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// PaymentMethod is an external lookup value for declared payment methods.
type PaymentMethod struct {
	ID       uuid.UUID
	Key      string
	Label    string
	Enabled  bool
	Position int
}
