package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func ptr[T any](v T) *T {
	return &v
}

func testPaint(name, brand string) *domain.Paint {
	return &domain.Paint{
		Name:   name,
		Brand:  brand,
		Medium: domain.MediumWatercolor,
		Status: domain.StatusOwned,
		Swatch: "#1A2B3C",
	}
}

func TestPaint_Create_AssignsSequentialIDs(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	first := testPaint("French Ultramarine", "Winsor & Newton")
	require.NoError(t, s.CreatePaint(first))
	require.Equal(t, uint64(1), first.ID)
	require.False(t, first.CreatedAt.IsZero())
	require.False(t, first.UpdatedAt.IsZero())

	second := testPaint("Burnt Sienna", "Winsor & Newton")
	require.NoError(t, s.CreatePaint(second))
	require.Equal(t, uint64(2), second.ID)
}

func TestPaint_Create_ExplicitIDCollision(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Quinacridone Gold", "Daniel Smith")
	p.ID = 5
	require.NoError(t, s.CreatePaint(p))

	dup := testPaint("Quinacridone Rose", "Daniel Smith")
	dup.ID = 5
	err := s.CreatePaint(dup)
	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// The sequence advances past explicit ids so later auto-assigned
	// paints never collide.
	next := testPaint("Hansa Yellow", "Daniel Smith")
	require.NoError(t, s.CreatePaint(next))
	require.Equal(t, uint64(6), next.ID)
}

func TestPaint_Get_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := &domain.Paint{
		Brand:  "Pébéo",
		Line:   "Studio",
		Name:   "Cadmium Red",
		Code:   "PR108",
		Medium: domain.MediumAcrylic,
		Status: domain.StatusWishlist,
		Tags:   []string{"warm", "opaque"},
		Notes:  "granulates on rough paper",
		Swatch: "#D32F2F",
		Photo: &domain.PaintPhoto{
			Data:     []byte{0xFF, 0xD8, 0xFF, 0xE0},
			Filename: "cadmium.jpg",
			MimeType: "image/jpeg",
			BlurHash: "LEHV6nWB2yk8",
			Width:    640,
			Height:   480,
		},
	}
	require.NoError(t, s.CreatePaint(p))

	got, err := s.GetPaint(p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Brand, got.Brand)
	require.Equal(t, p.Line, got.Line)
	require.Equal(t, p.Name, got.Name)
	require.Equal(t, p.Code, got.Code)
	require.Equal(t, p.Medium, got.Medium)
	require.Equal(t, p.Status, got.Status)
	require.Equal(t, p.Tags, got.Tags)
	require.Equal(t, p.Notes, got.Notes)
	require.Equal(t, p.Swatch, got.Swatch)
	require.NotNil(t, got.Photo)
	require.Equal(t, p.Photo.Data, got.Photo.Data)
	require.Equal(t, p.Photo.BlurHash, got.Photo.BlurHash)
	require.Equal(t, p.Photo.Width, got.Photo.Width)
}

func TestPaint_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := s.GetPaint(999)
	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Nil(t, got)
}

func TestPaint_Update_MergesPatch(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Sap Green", "Schmincke")
	p.Notes = "mixes well with ultramarine"
	require.NoError(t, s.CreatePaint(p))
	originalUpdated := p.UpdatedAt

	updated, found, err := s.UpdatePaint(p.ID, &domain.PaintPatch{
		Name:   ptr("Sap Green Deep"),
		Status: ptr(domain.StatusEmpty),
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, p.ID, updated.ID)
	require.Equal(t, "Sap Green Deep", updated.Name)
	require.Equal(t, domain.StatusEmpty, updated.Status)

	// Untouched fields survive the merge.
	require.Equal(t, "mixes well with ultramarine", updated.Notes)
	require.Equal(t, "Schmincke", updated.Brand)
	require.False(t, updated.UpdatedAt.Before(originalUpdated))
	require.Equal(t, p.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestPaint_Update_MissingIsBenign(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	updated, found, err := s.UpdatePaint(424242, &domain.PaintPatch{Name: ptr("Ghost")})
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, updated)
}

func TestPaint_Update_RemovePhoto(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Titanium White", "Liquitex")
	p.Photo = &domain.PaintPhoto{Data: []byte{0x01}, MimeType: "image/png"}
	require.NoError(t, s.CreatePaint(p))

	updated, found, err := s.UpdatePaint(p.ID, &domain.PaintPatch{RemovePhoto: true})
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, updated.Photo)
}

func TestPaint_Update_RewritesIndexes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Payne's Grey", "Winsor & Newton")
	require.NoError(t, s.CreatePaint(p))

	_, found, err := s.UpdatePaint(p.ID, &domain.PaintPatch{Status: ptr(domain.StatusEmpty)})
	require.NoError(t, err)
	require.True(t, found)

	owned, err := s.ListPaintsByStatus(domain.StatusOwned)
	require.NoError(t, err)
	require.Empty(t, owned)

	empty, err := s.ListPaintsByStatus(domain.StatusEmpty)
	require.NoError(t, err)
	require.Len(t, empty, 1)
	require.Equal(t, p.ID, empty[0].ID)
}

func TestPaint_Delete_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Indigo", "Holbein")
	require.NoError(t, s.CreatePaint(p))

	deleted, err := s.DeletePaint(p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = s.GetPaint(p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is quiet.
	deleted, err = s.DeletePaint(p.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestPaint_Delete_RemovesIndexEntries(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	p := testPaint("Viridian", "Holbein")
	require.NoError(t, s.CreatePaint(p))

	deleted, err := s.DeletePaint(p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	byBrand, err := s.ListPaintsByBrand("Holbein")
	require.NoError(t, err)
	require.Empty(t, byBrand)

	recent, err := s.ListRecentPaints(10)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestPaint_List_SortedByID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	names := []string{"Aureolin", "Cerulean", "Ochre", "Umber", "Violet", "Sepia", "Rose", "Teal", "Olive", "Slate", "Coral", "Mint"}
	for _, name := range names {
		require.NoError(t, s.CreatePaint(testPaint(name, "Test Brand")))
	}

	paints, err := s.ListPaints()
	require.NoError(t, err)
	require.Len(t, paints, len(names))
	for i, p := range paints {
		require.Equal(t, uint64(i+1), p.ID)
		require.Equal(t, names[i], p.Name)
	}
}

func TestPaint_ListByBrand_FoldsAccentsAndCase(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, s.CreatePaint(testPaint("Cobalt Blue", "Pébéo")))
	require.NoError(t, s.CreatePaint(testPaint("Lamp Black", "Daler-Rowney")))

	matches, err := s.ListPaintsByBrand("pebeo")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Cobalt Blue", matches[0].Name)

	// The exact spelling matches too.
	matches, err = s.ListPaintsByBrand("Pébéo")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestPaint_ListRecent_OrdersByUpdate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	first := testPaint("First", "Brand")
	second := testPaint("Second", "Brand")
	third := testPaint("Third", "Brand")
	for _, p := range []*domain.Paint{first, second, third} {
		require.NoError(t, s.CreatePaint(p))
		time.Sleep(2 * time.Millisecond)
	}

	// Touching the oldest makes it the most recent.
	_, found, err := s.UpdatePaint(first.ID, &domain.PaintPatch{Notes: ptr("revisited")})
	require.NoError(t, err)
	require.True(t, found)

	recent, err := s.ListRecentPaints(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, first.ID, recent[0].ID)
	require.Equal(t, third.ID, recent[1].ID)
}

func TestPaint_Count(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	count, err := s.CountPaints()
	require.NoError(t, err)
	require.Equal(t, 0, count)

	require.NoError(t, s.CreatePaint(testPaint("One", "A")))
	require.NoError(t, s.CreatePaint(testPaint("Two", "B")))

	count, err = s.CountPaints()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
