package favorite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const liveFilter = "user_id = ? AND deleted_at IS NULL"

// Repository is the gorm-backed record store for favorite locations. Every
// read filters on deleted_at explicitly; there is no implicit scope.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the table and its partial unique indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&FavoriteLocation{})
}

// Transaction runs fn against a repository bound to a single transaction.
// Returning an error from fn rolls everything back.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// ListLive returns the user's live favorites ordered by slot.
func (r *Repository) ListLive(ctx context.Context, userID int64) ([]FavoriteLocation, error) {
	var out []FavoriteLocation
	err := r.db.WithContext(ctx).
		Where(liveFilter, userID).
		Order("slot ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

// LockLive is ListLive with row locks held until the surrounding transaction
// ends. SQLite ignores the locking clause.
func (r *Repository) LockLive(ctx context.Context, userID int64) ([]FavoriteLocation, error) {
	var out []FavoriteLocation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(liveFilter, userID).
		Order("slot ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("lock favorites: %w", err)
	}
	return out, nil
}

// GetLive returns one live favorite owned by the user. Missing, foreign and
// deleted rows are all ErrNotFound.
func (r *Repository) GetLive(ctx context.Context, userID, id int64) (*FavoriteLocation, error) {
	var f FavoriteLocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND "+liveFilter, id, userID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &f, nil
}

// Insert stores a new live favorite. The capacity and location checks run
// here as well so the store never holds more than MaxFavorites live rows or
// a duplicate location, whoever the caller is.
func (r *Repository) Insert(ctx context.Context, f *FavoriteLocation) error {
	db := r.db.WithContext(ctx)

	var live int64
	if err := db.Model(&FavoriteLocation{}).Where(liveFilter, f.UserID).Count(&live).Error; err != nil {
		return fmt.Errorf("count favorites: %w", err)
	}
	if live >= MaxFavorites {
		return ErrLimitExceeded
	}

	var dup int64
	if err := db.Model(&FavoriteLocation{}).
		Where(liveFilter+" AND city = ? AND district = ?", f.UserID, f.City, f.District).
		Count(&dup).Error; err != nil {
		return fmt.Errorf("check duplicate favorite: %w", err)
	}
	if dup > 0 {
		return ErrAlreadyExists
	}

	f.DeletedAt = nil
	if err := db.Create(f).Error; err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// SoftDelete marks the favorite as removed. Repacking the remaining slots is
// the caller's job.
func (r *Repository) SoftDelete(ctx context.Context, userID, id int64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&FavoriteLocation{}).
		Where("id = ? AND "+liveFilter, id, userID).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("delete favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSlot moves one live favorite to a new slot.
func (r *Repository) UpdateSlot(ctx context.Context, userID, id int64, slot int) error {
	res := r.db.WithContext(ctx).
		Model(&FavoriteLocation{}).
		Where("id = ? AND "+liveFilter, id, userID).
		Updates(map[string]any{"slot": slot, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return classifyWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSlots applies a batch of slot moves. The moved rows are first parked
// above the slot range so that swaps never trip the live (user, slot) index,
// which PostgreSQL and SQLite both check row by row.
func (r *Repository) UpdateSlots(ctx context.Context, userID int64, slots map[int64]int) error {
	if len(slots) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}

	res := r.db.WithContext(ctx).
		Model(&FavoriteLocation{}).
		Where(liveFilter+" AND id IN ?", userID, ids).
		Update("slot", gorm.Expr("slot + ?", MaxFavorites))
	if res.Error != nil {
		return classifyWriteError(res.Error)
	}
	if res.RowsAffected != int64(len(ids)) {
		return ErrNotFound
	}

	for id, slot := range slots {
		if err := r.UpdateSlot(ctx, userID, id, slot); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAlias changes the display label only. A nil alias clears it.
func (r *Repository) UpdateAlias(ctx context.Context, userID, id int64, alias *string) error {
	res := r.db.WithContext(ctx).
		Model(&FavoriteLocation{}).
		Where("id = ? AND "+liveFilter, id, userID).
		Updates(map[string]any{"alias": alias, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("update alias: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeDeleted hard-deletes rows soft-deleted before the cutoff.
func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before.UTC()).
		Delete(&FavoriteLocation{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge favorites: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// classifyWriteError maps unique violations that slipped past the
// application checks onto the domain errors.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == slotIndexName {
			return ErrSlotConflict
		}
		return ErrAlreadyExists
	}

	if !isUniqueConstraintError(err) {
		return fmt.Errorf("write favorite: %w", err)
	}
	// SQLite names the columns, not the index:
	// "UNIQUE constraint failed: favorite_locations.user_id, favorite_locations.slot"
	if strings.Contains(err.Error(), "favorite_locations.slot") {
		return ErrSlotConflict
	}
	return ErrAlreadyExists
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
