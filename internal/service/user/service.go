// Package user implements account administration: listing accounts and
// changing roles. Role changes revoke the target's sessions and are announced
// on the rbac broadcast channel so open views refresh their permissions.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/rbac"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error)
}

type sessionRepo interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type auditRepo interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides user administration operations.
type Service struct {
	users       userRepo
	sessions    sessionRepo
	audit       auditRepo
	tx          txManager
	broadcaster *rbac.Broadcaster
	log         *slog.Logger
}

// NewService creates a new user administration service.
func NewService(
	log *slog.Logger,
	users userRepo,
	sessions sessionRepo,
	audit auditRepo,
	tx txManager,
	broadcaster *rbac.Broadcaster,
) *Service {
	return &Service{
		users:       users,
		sessions:    sessions,
		audit:       audit,
		tx:          tx,
		broadcaster: broadcaster,
		log:         log.With("service", "user"),
	}
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, page, limit int) ([]*domain.User, int, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, limit, (page-1)*limit)
}

// ChangeRole updates a user's role, revokes their sessions so stale tokens
// stop working at the next refresh, and broadcasts the change.
func (s *Service) ChangeRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) (*domain.User, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", "unknown role")
	}
	if userID == actorID {
		return nil, fmt.Errorf("admins cannot change their own role: %w", domain.ErrConflict)
	}

	now := time.Now().UTC()
	var updated *domain.User

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err = s.users.UpdateRole(ctx, userID, role)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}

		if _, err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}

		detail := fmt.Sprintf("role=%s", role)
		return s.audit.Record(ctx, &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    actorID,
			Action:     domain.AuditActionRoleChange,
			EntityID:   userID,
			Detail:     &detail,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(rbac.Change{
		UserID:    userID,
		NewRole:   role.String(),
		ChangedAt: now,
	})

	s.log.InfoContext(ctx, "user role changed",
		slog.String("user_id", userID.String()),
		slog.String("role", role.String()),
	)

	return updated, nil
}

func requireAdmin(ctx context.Context) (uuid.UUID, error) {
	actorID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if !ctxutil.IsAdminCtx(ctx) {
		return uuid.Nil, domain.ErrForbidden
	}
	return actorID, nil
}
