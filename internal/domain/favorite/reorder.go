package favorite

import (
	"bytes"
	"encoding/json"
)

// DecodeReorder parses the reorder body. Anything other than a JSON array of
// objects with integer id/order fields is ErrInvalidFormat.
func DecodeReorder(raw []byte) ([]ReorderItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var items []ReorderItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrInvalidFormat
	}
	return items, nil
}

// ValidateReorder checks a full reorder against the user's live ids and
// returns the id→slot assignment. Nothing may be written unless it succeeds.
//
// The ids must be exactly the live ids, each once. The orders must be exactly
// 0..n-1, each once.
func ValidateReorder(items []ReorderItem, liveIDs map[int64]bool) (map[int64]int, error) {
	if len(items) != len(liveIDs) {
		return nil, ErrInvalidFavoriteID
	}

	seenIDs := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.ID == nil || !liveIDs[*it.ID] || seenIDs[*it.ID] {
			return nil, ErrInvalidFavoriteID
		}
		seenIDs[*it.ID] = true
	}

	n := len(items)
	seenOrders := make([]bool, n)
	assignment := make(map[int64]int, n)
	for _, it := range items {
		if it.Order == nil {
			return nil, ErrInvalidOrderValues
		}
		o := *it.Order
		if o < 0 || o >= n || seenOrders[o] {
			return nil, ErrInvalidOrderValues
		}
		seenOrders[o] = true
		assignment[*it.ID] = o
	}

	return assignment, nil
}
