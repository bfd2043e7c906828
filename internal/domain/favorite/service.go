package favorite

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"weatherdiary/internal/pkg/metrics"
	"weatherdiary/internal/pkg/userlock"
)

// Service applies favorite mutations. Create, Delete and Reorder hold the
// per-user lock across read, compute and write so that two requests for the
// same user never act on the same snapshot of slots.
type Service struct {
	repo        *Repository
	locker      userlock.Locker
	lockTimeout time.Duration
	cache       ListCache
	notifier    Notifier
	log         *zap.Logger
}

type Option func(*Service)

func WithCache(c ListCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo *Repository, locker userlock.Locker, lockTimeout time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		locker:      locker,
		lockTimeout: lockTimeout,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the user's live favorites ordered by slot.
func (s *Service) List(ctx context.Context, userID int64) ([]FavoriteLocation, error) {
	if s.cache == nil {
		return s.repo.ListLive(ctx, userID)
	}

	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn("favorites cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	// taken before the database read so a mutation committed meanwhile
	// makes the write below a no-op
	gen, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		s.log.Warn("favorites cache generation read failed", zap.Int64("user_id", userID), zap.Error(genErr))
	}

	list, err := s.repo.ListLive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if _, err := s.cache.Set(ctx, userID, gen, list); err != nil {
			s.log.Warn("favorites cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*FavoriteLocation, error) {
	return s.repo.GetLive(ctx, userID, id)
}

// Create adds a favorite in the smallest free slot.
func (s *Service) Create(ctx context.Context, userID int64, req CreateFavoriteRequest) (*FavoriteLocation, error) {
	var created *FavoriteLocation

	err := s.guarded(ctx, "create", userID, func(tx *Repository) error {
		live, err := tx.LockLive(ctx, userID)
		if err != nil {
			return err
		}
		if len(live) >= MaxFavorites {
			return ErrLimitExceeded
		}
		for i := range live {
			if live[i].sameLocation(req.City, req.District) {
				return ErrAlreadyExists
			}
		}

		slot, err := AllocateNext(slotsOf(live))
		if err != nil {
			return err
		}

		f := &FavoriteLocation{
			UserID:   userID,
			Alias:    req.Alias,
			City:     req.City,
			District: req.District,
			Slot:     slot,
		}
		if err := tx.Insert(ctx, f); err != nil {
			return err
		}
		created = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, userID, ChangeEvent{Type: EventFavoritesChanged, Action: ActionCreated, FavoriteID: created.ID})
	s.log.Info("favorite created",
		zap.Int64("user_id", userID), zap.Int64("favorite_id", created.ID), zap.Int("slot", created.Slot))
	return created, nil
}

// UpdateAlias renames a favorite. Slots are untouched, so no lock is taken.
func (s *Service) UpdateAlias(ctx context.Context, userID, id int64, alias *string) error {
	err := s.repo.UpdateAlias(ctx, userID, id, alias)
	s.record("update_alias", err)
	if err != nil {
		return err
	}

	s.afterCommit(ctx, userID, ChangeEvent{Type: EventFavoritesChanged, Action: ActionUpdated, FavoriteID: id})
	return nil
}

// Delete soft-deletes a favorite and closes the gap it leaves, in one
// transaction.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	err := s.guarded(ctx, "delete", userID, func(tx *Repository) error {
		live, err := tx.LockLive(ctx, userID)
		if err != nil {
			return err
		}

		remaining := make([]FavoriteLocation, 0, len(live))
		found := false
		for i := range live {
			if live[i].ID == id {
				found = true
				continue
			}
			remaining = append(remaining, live[i])
		}
		if !found {
			return ErrNotFound
		}

		if err := tx.SoftDelete(ctx, userID, id); err != nil {
			return err
		}
		return tx.UpdateSlots(ctx, userID, ChangedSlots(remaining, Repack(remaining)))
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, userID, ChangeEvent{Type: EventFavoritesChanged, Action: ActionDeleted, FavoriteID: id})
	s.log.Info("favorite deleted", zap.Int64("user_id", userID), zap.Int64("favorite_id", id))
	return nil
}

// Reorder replaces the order of all live favorites at once. A request that
// does not cover exactly the live set, or whose orders are not 0..n-1, is
// rejected before anything is written.
func (s *Service) Reorder(ctx context.Context, userID int64, items []ReorderItem) error {
	err := s.guarded(ctx, "reorder", userID, func(tx *Repository) error {
		live, err := tx.LockLive(ctx, userID)
		if err != nil {
			return err
		}

		assignment, err := ValidateReorder(items, idsOf(live))
		if err != nil {
			return err
		}
		return tx.UpdateSlots(ctx, userID, ChangedSlots(live, assignment))
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, userID, ChangeEvent{Type: EventFavoritesChanged, Action: ActionReordered})
	s.log.Info("favorites reordered", zap.Int64("user_id", userID), zap.Int("count", len(items)))
	return nil
}

// guarded runs fn in a transaction while holding the user's lock. The lock is
// released on every path, after commit or rollback.
func (s *Service) guarded(ctx context.Context, op string, userID int64, fn func(tx *Repository) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	unlock, err := s.locker.Lock(lockCtx, userID)
	metrics.LockWait.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.record(op, err)
		s.log.Warn("favorites lock not acquired", zap.String("op", op), zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	defer unlock()

	err = s.repo.Transaction(ctx, fn)
	s.record(op, err)
	return err
}

func (s *Service) afterCommit(ctx context.Context, userID int64, event ChangeEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.Warn("favorites cache invalidate failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.Publish(userID, event)
	}
}

func (s *Service) record(op string, err error) {
	metrics.FavoriteOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, userlock.ErrTimeout):
		return "lock_timeout"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidFavoriteID), errors.Is(err, ErrInvalidOrderValues), errors.Is(err, ErrInvalidFormat):
		return "invalid"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	default:
		return "error"
	}
}
