package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

func TestSlot_SetPaint_Upserts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	palette := &domain.Palette{Name: "Main", Slots: 12}
	require.NoError(t, s.CreatePalette(palette))

	first := testPaint("Ultramarine", "Brand")
	second := testPaint("Cerulean", "Brand")
	require.NoError(t, s.CreatePaint(first))
	require.NoError(t, s.CreatePaint(second))

	slot, err := s.SetSlotPaint(palette.ID, 0, &first.ID)
	require.NoError(t, err)
	createdAt := slot.CreatedAt

	// Writing the same position again replaces the assignment instead of
	// growing a second record.
	slot, err = s.SetSlotPaint(palette.ID, 0, &second.ID)
	require.NoError(t, err)
	require.NotNil(t, slot.PaintID)
	require.Equal(t, second.ID, *slot.PaintID)
	require.Equal(t, createdAt.Unix(), slot.CreatedAt.Unix())

	slots, err := s.ListPaletteSlots(palette.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, second.ID, *slots[0].PaintID)
}

func TestSlot_SetPaint_NilClearsOccupancy(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	palette := &domain.Palette{Name: "Main", Slots: 12}
	require.NoError(t, s.CreatePalette(palette))

	paint := testPaint("Ochre", "Brand")
	require.NoError(t, s.CreatePaint(paint))

	_, err := s.SetSlotPaint(palette.ID, 3, &paint.ID)
	require.NoError(t, err)

	slot, err := s.SetSlotPaint(palette.ID, 3, nil)
	require.NoError(t, err)
	require.Nil(t, slot.PaintID)

	// The record itself stays, empty but tracked.
	slots, err := s.ListPaletteSlots(palette.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Nil(t, slots[0].PaintID)
}

func TestSlot_List_SortedByIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	palette := &domain.Palette{Name: "Wide", Slots: 16}
	require.NoError(t, s.CreatePalette(palette))

	// Decimal key encoding means byte order would put 10 before 2.
	for _, index := range []int{10, 2, 0, 11} {
		_, err := s.SetSlotPaint(palette.ID, index, nil)
		require.NoError(t, err)
	}

	slots, err := s.ListPaletteSlots(palette.ID)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	indexes := make([]int, len(slots))
	for i, slot := range slots {
		indexes[i] = slot.Index
	}
	require.Equal(t, []int{0, 2, 10, 11}, indexes)
}

func TestSlot_TrimBeyond(t *testing.T) {
	cases := []struct {
		name        string
		maxSlots    int
		wantRemoved int
		wantKept    int
	}{
		{"keeps_everything_below_bound", 5, 5, 5},
		{"boundary_index_is_removed", 9, 1, 9},
		{"zero_removes_all", 0, 10, 0},
		{"bound_above_population_is_noop", 20, 0, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, cleanup := setupTestStore(t)
			defer cleanup()

			palette := &domain.Palette{Name: "Trimmable", Slots: 10}
			require.NoError(t, s.CreatePalette(palette))

			for i := range 10 {
				_, err := s.SetSlotPaint(palette.ID, i, nil)
				require.NoError(t, err)
			}

			removed, err := s.TrimSlotsBeyond(palette.ID, tc.maxSlots)
			require.NoError(t, err)
			require.Equal(t, tc.wantRemoved, removed)

			slots, err := s.ListPaletteSlots(palette.ID)
			require.NoError(t, err)
			require.Len(t, slots, tc.wantKept)
			for _, slot := range slots {
				require.Less(t, slot.Index, tc.maxSlots)
			}
		})
	}
}

func TestSlot_Trim_LeavesOtherPalettesAlone(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	trimmed := &domain.Palette{Name: "Trimmed", Slots: 10}
	other := &domain.Palette{Name: "Other", Slots: 10}
	require.NoError(t, s.CreatePalette(trimmed))
	require.NoError(t, s.CreatePalette(other))

	for i := range 6 {
		_, err := s.SetSlotPaint(trimmed.ID, i, nil)
		require.NoError(t, err)
		_, err = s.SetSlotPaint(other.ID, i, nil)
		require.NoError(t, err)
	}

	removed, err := s.TrimSlotsBeyond(trimmed.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 4, removed)

	slots, err := s.ListPaletteSlots(other.ID)
	require.NoError(t, err)
	require.Len(t, slots, 6)
}

func TestSlot_DanglingPaintReferenceSurvives(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	palette := &domain.Palette{Name: "Main", Slots: 12}
	require.NoError(t, s.CreatePalette(palette))

	paint := testPaint("Fugitive Rose", "Brand")
	require.NoError(t, s.CreatePaint(paint))

	_, err := s.SetSlotPaint(palette.ID, 0, &paint.ID)
	require.NoError(t, err)

	// Deleting a paint does not cascade to slots; the stale reference
	// stays until the slot is reassigned.
	deleted, err := s.DeletePaint(paint.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	slots, err := s.ListPaletteSlots(palette.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.NotNil(t, slots[0].PaintID)
	require.Equal(t, paint.ID, *slots[0].PaintID)
}
