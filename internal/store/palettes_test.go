package store_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

func TestPalette_Create_Defaults(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := &domain.Palette{}
	require.NoError(t, s.CreatePalette(p))
	require.Equal(t, uint64(1), p.ID)
	require.Equal(t, "New Palette", p.Name)
	require.Equal(t, 1, p.Slots)
	require.False(t, p.CreatedAt.IsZero())
}

func TestPalette_Create_KeepsGivenValues(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := &domain.Palette{Name: "Plein Air Kit", Slots: 24}
	require.NoError(t, s.CreatePalette(p))

	got, err := s.GetPalette(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Plein Air Kit", got.Name)
	require.Equal(t, 24, got.Slots)
}

func TestPalette_Update_MergesPatch(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := &domain.Palette{Name: "Travel Tin", Slots: 12}
	require.NoError(t, s.CreatePalette(p))

	updated, found, err := s.UpdatePalette(p.ID, &domain.PalettePatch{Slots: ptr(8)})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Travel Tin", updated.Name)
	require.Equal(t, 8, updated.Slots)
}

func TestPalette_Update_ClampsSlots(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := &domain.Palette{Name: "Tiny", Slots: 6}
	require.NoError(t, s.CreatePalette(p))

	updated, found, err := s.UpdatePalette(p.ID, &domain.PalettePatch{Slots: ptr(0)})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, updated.Slots)
}

func TestPalette_Update_MissingIsBenign(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	updated, found, err := s.UpdatePalette(99, &domain.PalettePatch{Name: ptr("Ghost")})
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, updated)
}

func TestPalette_Delete_CascadesSlots(t *testing.T) {
	for _, slotCount := range []int{0, 1, 50} {
		t.Run(fmt.Sprintf("%d_slots", slotCount), func(t *testing.T) {
			s, cleanup := setupTestStore(t)
			defer cleanup()

			p := &domain.Palette{Name: "Doomed", Slots: 50}
			require.NoError(t, s.CreatePalette(p))

			paint := testPaint("Filler", "Brand")
			require.NoError(t, s.CreatePaint(paint))

			for i := range slotCount {
				_, err := s.SetSlotPaint(p.ID, i, &paint.ID)
				require.NoError(t, err)
			}

			slots, err := s.ListPaletteSlots(p.ID)
			require.NoError(t, err)
			require.Len(t, slots, slotCount)

			found, err := s.DeletePalette(p.ID)
			require.NoError(t, err)
			require.True(t, found)

			_, err = s.GetPalette(p.ID)
			require.ErrorIs(t, err, store.ErrNotFound)

			slots, err = s.ListPaletteSlots(p.ID)
			require.NoError(t, err)
			require.Empty(t, slots)
		})
	}
}

func TestPalette_Delete_SweepsOrphanSlots(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	// Slot records can outlive their palette (the record delete and the
	// slot sweep are separate transactions). A later delete picks them up.
	_, err := s.SetSlotPaint(77, 0, nil)
	require.NoError(t, err)
	_, err = s.SetSlotPaint(77, 1, nil)
	require.NoError(t, err)

	found, err := s.DeletePalette(77)
	require.NoError(t, err)
	require.False(t, found)

	slots, err := s.ListPaletteSlots(77)
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestPalette_Delete_LeavesOtherPalettesAlone(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	doomed := &domain.Palette{Name: "Doomed", Slots: 4}
	keeper := &domain.Palette{Name: "Keeper", Slots: 4}
	require.NoError(t, s.CreatePalette(doomed))
	require.NoError(t, s.CreatePalette(keeper))

	for i := range 3 {
		_, err := s.SetSlotPaint(doomed.ID, i, nil)
		require.NoError(t, err)
		_, err = s.SetSlotPaint(keeper.ID, i, nil)
		require.NoError(t, err)
	}

	found, err := s.DeletePalette(doomed.ID)
	require.NoError(t, err)
	require.True(t, found)

	slots, err := s.ListPaletteSlots(keeper.ID)
	require.NoError(t, err)
	require.Len(t, slots, 3)
}

func TestPalette_List_SortedByID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for i := range 11 {
		p := &domain.Palette{Name: fmt.Sprintf("Palette %d", i+1), Slots: 6}
		require.NoError(t, s.CreatePalette(p))
	}

	palettes, err := s.ListPalettes()
	require.NoError(t, err)
	require.Len(t, palettes, 11)
	for i, p := range palettes {
		require.Equal(t, uint64(i+1), p.ID)
	}
}
