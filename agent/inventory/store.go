package inventory

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	metricsx "github.com/tanpawarit/restaurant-voice-agent/agent/metrics"
)

// Store is the single writer in front of one durable inventory. Every call
// in the process shares one Store; Commit re-checks and deducts under the
// same lock, so two checkouts cannot both pass the check and oversell.
type Store struct {
	mu      sync.RWMutex
	inv     *Inventory
	repo    Repository
	metrics *metricsx.Recorder
}

type StoreOption func(*Store)

func WithRecorder(r *metricsx.Recorder) StoreOption {
	return func(s *Store) {
		s.metrics = r
	}
}

func NewStore(inv *Inventory, repo Repository, opts ...StoreOption) *Store {
	if inv == nil {
		inv = New()
	}
	s := &Store{inv: inv, repo: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open loads the durable inventory. A missing or corrupt source yields an
// empty store; callers see it through Available and every check fails closed.
func Open(ctx context.Context, repo Repository, opts ...StoreOption) *Store {
	return NewStore(Load(ctx, repo), repo, opts...)
}

// Load never fails: errors are logged and reported as an empty inventory.
func Load(ctx context.Context, repo Repository) *Inventory {
	if repo == nil {
		log.Error().Msg("inventory repository is not configured")
		return New()
	}
	inv, err := repo.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load inventory, continuing with empty stock")
		return New()
	}
	if inv == nil {
		return New()
	}
	log.Info().Int("items", inv.Len()).Msg("inventory loaded")
	return inv
}

func (s *Store) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.inv.IsEmpty()
}

// Snapshot returns a detached copy of the current stock.
func (s *Store) Snapshot() *Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.Clone()
}

func (s *Store) Resolve(raw string) (string, MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.inv.Resolve(raw)
	if !ok {
		return "", MenuItem{}, false
	}
	item, _ := s.inv.Item(key)
	return key, item, true
}

func (s *Store) Check(order Order) (Order, error) {
	s.mu.RLock()
	resolved, err := s.inv.CheckAvailability(order)
	s.mu.RUnlock()
	if err != nil {
		s.metrics.IncInventoryRejection(rejectionReason(err))
	}
	return resolved, err
}

func (s *Store) Total(order Order) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.Total(order)
}

// CommitResult is what a checkout did to stock.
type CommitResult struct {
	DeductReport
	PersistErr error
}

// Commit checks and deducts the order atomically, then persists the new
// stock. A persistence failure is logged and returned in the result but the
// in-memory deduction stands.
func (s *Store) Commit(ctx context.Context, order Order) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved, err := s.inv.CheckAvailability(order)
	if err != nil {
		s.metrics.IncInventoryRejection(rejectionReason(err))
		return CommitResult{}, err
	}

	res := CommitResult{DeductReport: s.inv.Deduct(resolved)}
	if len(res.Clamped) > 0 {
		log.Warn().Strs("items", res.Clamped).Msg("deduction clamped at zero stock")
	}
	res.PersistErr = s.persistLocked(ctx)
	return res, nil
}

// Persist writes the current stock to the repository.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	// The write must finish even if the call that triggered it hangs up.
	err := s.repo.Save(context.WithoutCancel(ctx), s.inv.Clone())
	s.metrics.ObservePersist(err == nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to persist inventory")
		return err
	}
	log.Info().Int("items", s.inv.Len()).Msg("inventory persisted")
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, contractx.ErrInventoryUnavailable):
		return "unavailable"
	case errors.Is(err, contractx.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, contractx.ErrInsufficientStock):
		return "insufficient"
	default:
		return "invalid"
	}
}
