package favorite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateNext(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
		wantErr  error
	}{
		{name: "empty", existing: nil, want: 0},
		{name: "first taken", existing: []int{0}, want: 1},
		{name: "gap in the middle", existing: []int{0, 2}, want: 1},
		{name: "gap at the front", existing: []int{1, 2}, want: 0},
		{name: "full", existing: []int{0, 1, 2}, wantErr: ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AllocateNext(tt.existing)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepackClosesGapsInOrder(t *testing.T) {
	ordered := []FavoriteLocation{{ID: 7, Slot: 0}, {ID: 3, Slot: 2}}

	got := Repack(ordered)

	assert.Equal(t, map[int64]int{7: 0, 3: 1}, got)
	assert.Equal(t, map[int64]int{3: 1}, ChangedSlots(ordered, got))
}

func TestChangedSlotsIgnoresUnknownIDs(t *testing.T) {
	current := []FavoriteLocation{{ID: 1, Slot: 0}, {ID: 2, Slot: 1}}

	got := ChangedSlots(current, map[int64]int{1: 1, 2: 0, 99: 2})

	assert.Equal(t, map[int64]int{1: 1, 2: 0}, got)
}
