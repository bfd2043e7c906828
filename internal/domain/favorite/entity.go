package favorite

import (
	"time"
)

// MaxFavorites is the number of slots each user has.
const MaxFavorites = 3

const (
	locationIndexName = "uq_favorite_location_live"
	slotIndexName     = "uq_favorite_slot_live"
)

// FavoriteLocation is one of a user's saved locations. Slot orders the live
// entries of a user densely from zero; it is exposed to clients as "order".
// A non-nil DeletedAt marks the row as removed; it then takes no part in
// slot or location uniqueness.
type FavoriteLocation struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" gorm:"not null;index:idx_favorite_user_slot,priority:1;uniqueIndex:uq_favorite_location_live,priority:1,where:deleted_at IS NULL;uniqueIndex:uq_favorite_slot_live,priority:1,where:deleted_at IS NULL"`
	Alias     *string    `json:"alias" gorm:"type:varchar(100)"`
	City      string     `json:"city" gorm:"type:varchar(50);not null;uniqueIndex:uq_favorite_location_live,priority:2"`
	District  string     `json:"district" gorm:"type:varchar(50);not null;uniqueIndex:uq_favorite_location_live,priority:3"`
	Slot      int        `json:"order" gorm:"column:slot;not null;default:0;index:idx_favorite_user_slot,priority:2;uniqueIndex:uq_favorite_slot_live,priority:2"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (FavoriteLocation) TableName() string {
	return "favorite_locations"
}

// IsLive reports whether the entry has not been soft-deleted.
func IsLive(f *FavoriteLocation) bool {
	return f != nil && f.DeletedAt == nil
}

// sameLocation compares the (city, district) pair that must be unique among
// a user's live entries.
func (f *FavoriteLocation) sameLocation(city, district string) bool {
	return f.City == city && f.District == district
}
