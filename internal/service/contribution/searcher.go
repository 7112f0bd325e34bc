package contribution

import (
	"context"
	"sync"
	"time"

	"github.com/ihsanfoundation/ihsan-backend/internal/domain"
)

// SearchResult is one delivered search outcome.
type SearchResult struct {
	Filter domain.ContributionFilter
	Page   *domain.ContributionPage
	Err    error
}

type lister interface {
	List(ctx context.Context, filter domain.ContributionFilter) (*domain.ContributionPage, error)
}

// Searcher debounces contribution searches: rapid queries collapse into one
// store call after a quiet period, and a newer query supersedes any in-flight
// one. Results arriving for a superseded query are discarded by token
// comparison, never delivered out of order.
type Searcher struct {
	lister  lister
	delay   time.Duration
	results chan SearchResult

	mu     sync.Mutex
	timer  *time.Timer
	token  uint64
	closed bool
}

// NewSearcher creates a Searcher delivering results on a one-slot channel.
// An unconsumed stale result is replaced, not queued behind.
func NewSearcher(lister lister, delay time.Duration) *Searcher {
	return &Searcher{
		lister:  lister,
		delay:   delay,
		results: make(chan SearchResult, 1),
	}
}

// Query schedules a search. Calling again before the debounce delay elapses
// cancels the previous schedule.
func (s *Searcher) Query(ctx context.Context, filter domain.ContributionFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.token++
	tok := s.token
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, tok, filter)
	})
}

// Results delivers at most the newest search outcome.
func (s *Searcher) Results() <-chan SearchResult {
	return s.results
}

// Close stops any scheduled search. In-flight results are dropped.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Searcher) run(ctx context.Context, tok uint64, filter domain.ContributionFilter) {
	if s.stale(tok) {
		return
	}

	page, err := s.lister.List(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || tok != s.token {
		return // superseded while the query was in flight
	}

	res := SearchResult{Filter: filter, Page: page, Err: err}
	select {
	case <-s.results:
	default:
	}
	s.results <- res
}

func (s *Searcher) stale(tok uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || tok != s.token
}
