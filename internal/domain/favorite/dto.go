package favorite

import "time"

const (
	MsgCreated   = "Added to favorites."
	MsgUpdated   = "Favorite updated."
	MsgReordered = "Favorite order changed."
)

// CreateFavoriteRequest is the POST /favorites body.
type CreateFavoriteRequest struct {
	City     string  `json:"city" validate:"required,max=50"`
	District string  `json:"district" validate:"required,max=50"`
	Alias    *string `json:"alias" validate:"omitempty,max=100"`
}

// UpdateAliasRequest is the PATCH /favorites/{id} body. Only the alias is
// editable here; slot changes go through /favorites/reorder.
type UpdateAliasRequest struct {
	Alias *string `json:"alias" validate:"omitempty,max=100"`
}

// ReorderItem is one element of the PATCH /favorites/reorder body. Fields are
// pointers so that a missing id or order can be told apart from zero.
type ReorderItem struct {
	ID    *int64 `json:"id"`
	Order *int   `json:"order"`
}

// FavoriteResponse is the list/retrieve representation.
type FavoriteResponse struct {
	ID        int64     `json:"id"`
	Alias     *string   `json:"alias"`
	City      string    `json:"city"`
	District  string    `json:"district"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatedResponse is returned by POST /favorites.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

func ToFavoriteResponse(f *FavoriteLocation) FavoriteResponse {
	return FavoriteResponse{
		ID:        f.ID,
		Alias:     f.Alias,
		City:      f.City,
		District:  f.District,
		Order:     f.Slot,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func ToFavoriteListResponse(favorites []FavoriteLocation) []FavoriteResponse {
	items := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		items[i] = ToFavoriteResponse(&favorites[i])
	}
	return items
}
