package user

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
	"github.com/ihsanfoundation/ihsan-backend/internal/rbac"
	"github.com/ihsanfoundation/ihsan-backend/pkg/ctxutil"
)

type mockUserRepo struct {
	UpdateRoleFunc func(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(context.Context, int, int) ([]*domain.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error) {
	return m.UpdateRoleFunc(ctx, id, role)
}

type mockSessionRepo struct {
	revokedUsers []uuid.UUID
}

func (m *mockSessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	m.revokedUsers = append(m.revokedUsers, userID)
	return 2, nil
}

type mockAuditRepo struct {
	entries []*domain.AuditLog
}

func (m *mockAuditRepo) Record(_ context.Context, entry *domain.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type mockTxManager struct{}

func (mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func adminCtx(adminID uuid.UUID) context.Context {
	ctx := ctxutil.WithUserID(context.Background(), adminID)
	return ctxutil.WithUserRole(ctx, "admin")
}

func TestChangeRole_RevokesSessionsAndBroadcasts(t *testing.T) {
	t.Parallel()

	target := uuid.New()
	users := &mockUserRepo{
		UpdateRoleFunc: func(_ context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error) {
			return &domain.User{ID: id, Role: role}, nil
		},
	}
	sessions := &mockSessionRepo{}
	audit := &mockAuditRepo{}
	broadcaster := rbac.NewBroadcaster()
	changes, cancel := broadcaster.Subscribe()
	defer cancel()

	svc := NewService(slog.Default(), users, sessions, audit, mockTxManager{}, broadcaster)
	updated, err := svc.ChangeRole(adminCtx(uuid.New()), target, domain.UserRoleReviewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != domain.UserRoleReviewer {
		t.Errorf("role: got %s", updated.Role)
	}
	if len(sessions.revokedUsers) != 1 || sessions.revokedUsers[0] != target {
		t.Errorf("revoked: %v", sessions.revokedUsers)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionRoleChange {
		t.Errorf("audit entries: %+v", audit.entries)
	}

	select {
	case change := <-changes:
		if change.UserID != target || change.NewRole != "reviewer" {
			t.Errorf("broadcast: %+v", change)
		}
	default:
		t.Error("no rbac change broadcast")
	}
}

func TestChangeRole_OwnRoleConflicts(t *testing.T) {
	t.Parallel()

	adminID := uuid.New()
	svc := NewService(slog.Default(), &mockUserRepo{}, &mockSessionRepo{},
		&mockAuditRepo{}, mockTxManager{}, rbac.NewBroadcaster())

	_, err := svc.ChangeRole(adminCtx(adminID), adminID, domain.UserRoleDonor)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestChangeRole_UnknownRole(t *testing.T) {
	t.Parallel()

	svc := NewService(slog.Default(), &mockUserRepo{}, &mockSessionRepo{},
		&mockAuditRepo{}, mockTxManager{}, rbac.NewBroadcaster())

	_, err := svc.ChangeRole(adminCtx(uuid.New()), uuid.New(), domain.UserRole("superuser"))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestChangeRole_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewService(slog.Default(), &mockUserRepo{}, &mockSessionRepo{},
		&mockAuditRepo{}, mockTxManager{}, rbac.NewBroadcaster())

	ctx := ctxutil.WithUserRole(ctxutil.WithUserID(context.Background(), uuid.New()), "reviewer")
	_, err := svc.ChangeRole(ctx, uuid.New(), domain.UserRoleDonor)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
