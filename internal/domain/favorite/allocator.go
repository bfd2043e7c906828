package favorite

// AllocateNext returns the smallest slot in [0, MaxFavorites) not present in
// existing. Smallest-first keeps the order predictable for users who keep
// adding and removing the same places.
func AllocateNext(existing []int) (int, error) {
	taken := make(map[int]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}
	for slot := 0; slot < MaxFavorites; slot++ {
		if !taken[slot] {
			return slot, nil
		}
	}
	return 0, ErrLimitExceeded
}

// Repack assigns 0..n-1 to the entries in the order given. The relative order
// is preserved; a deletion only closes the gap.
func Repack(ordered []FavoriteLocation) map[int64]int {
	out := make(map[int64]int, len(ordered))
	for i := range ordered {
		out[ordered[i].ID] = i
	}
	return out
}

// ChangedSlots drops the assignments that leave an entry where it already is.
func ChangedSlots(current []FavoriteLocation, target map[int64]int) map[int64]int {
	out := make(map[int64]int, len(target))
	for i := range current {
		slot, ok := target[current[i].ID]
		if ok && slot != current[i].Slot {
			out[current[i].ID] = slot
		}
	}
	return out
}

func slotsOf(entries []FavoriteLocation) []int {
	out := make([]int, len(entries))
	for i := range entries {
		out[i] = entries[i].Slot
	}
	return out
}

func idsOf(entries []FavoriteLocation) map[int64]bool {
	out := make(map[int64]bool, len(entries))
	for i := range entries {
		out[entries[i].ID] = true
	}
	return out
}
