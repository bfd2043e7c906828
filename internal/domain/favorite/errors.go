package favorite

import "errors"

var (
	ErrLimitExceeded      = errors.New("favorite limit exceeded")
	ErrAlreadyExists      = errors.New("favorite location already exists")
	ErrNotFound           = errors.New("favorite not found")
	ErrInvalidFormat      = errors.New("reorder payload must be a list of {id, order}")
	ErrInvalidFavoriteID  = errors.New("reorder ids do not match the live favorites")
	ErrInvalidOrderValues = errors.New("reorder values must be a permutation of 0..n-1")
	ErrSlotConflict       = errors.New("favorite slot taken by a concurrent update")
)
