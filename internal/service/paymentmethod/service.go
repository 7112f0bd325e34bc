// Package paymentmethod serves the declared-payment-method lookup. The set
// changes rarely, so reads are answered from a short-lived cache and
// concurrent cache misses are collapsed into a single store query.
package paymentmethod

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

const cacheTTL = 30 * time.Second

type repo interface {
	ListEnabled(ctx context.Context) ([]domain.PaymentMethod, error)
}

// Service answers payment-method lookups with request coalescing.
type Service struct {
	repo  repo
	log   *slog.Logger
	group singleflight.Group

	mu       sync.RWMutex
	cached   []domain.PaymentMethod
	cachedAt time.Time
}

// NewService creates a new payment-method lookup service.
func NewService(log *slog.Logger, repo repo) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "paymentmethod"),
	}
}

// ListEnabled returns the enabled payment methods in display order.
func (s *Service) ListEnabled(ctx context.Context) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cachedAt) < cacheTTL {
		methods := s.cached
		s.mu.RUnlock()
		return methods, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("list-enabled", func() (any, error) {
		methods, err := s.repo.ListEnabled(ctx)
		if err != nil {
			return nil, fmt.Errorf("list payment methods: %w", err)
		}
		s.mu.Lock()
		s.cached = methods
		s.cachedAt = time.Now()
		s.mu.Unlock()
		return methods, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PaymentMethod), nil
}

// IsKnown reports whether key names an enabled payment method.
func (s *Service) IsKnown(ctx context.Context, key string) (bool, error) {
	methods, err := s.ListEnabled(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range methods {
		if m.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cache; called after admin edits to the method set.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
