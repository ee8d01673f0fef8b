package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/backup"
	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

func testSetup(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "snapshot_test")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		_ = testStore.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return testStore, cleanup
}

func TestExport_ProducesCompleteDocument(t *testing.T) {
	s, cleanup := testSetup(t)
	defer cleanup()

	plain := &domain.Paint{
		Name:   "Raw Umber",
		Brand:  "Schmincke",
		Medium: domain.MediumWatercolor,
		Status: domain.StatusOwned,
		Tags:   []string{"earth", "granulating"},
		Swatch: "#6B4423",
	}
	require.NoError(t, s.CreatePaint(plain))

	withPhoto := &domain.Paint{
		Name:   "Opera Pink",
		Brand:  "Holbein",
		Medium: domain.MediumGouache,
		Status: domain.StatusWishlist,
		Photo: &domain.PaintPhoto{
			Data:     []byte{0x89, 0x50, 0x4E, 0x47},
			MimeType: "image/png",
			Width:    320,
			Height:   240,
		},
	}
	require.NoError(t, s.CreatePaint(withPhoto))

	snap, err := backup.Export(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, backup.FormatVersion, snap.Version)
	require.WithinDuration(t, time.Now(), snap.ExportedAt, 5*time.Second)
	require.Len(t, snap.Paints, 2)

	// The envelope keys keep their portable spelling.
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Contains(t, envelope, "version")
	assert.Contains(t, envelope, "exportedAt")
	assert.Contains(t, envelope, "paints")
	assert.Equal(t, float64(1), envelope["version"])
}

func TestExport_EmptyCollectionKeepsList(t *testing.T) {
	s, cleanup := testSetup(t)
	defer cleanup()

	snap, err := backup.Export(context.Background(), s)
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))

	// An empty collection exports as [], never null.
	list, ok := envelope["paints"].([]any)
	require.True(t, ok)
	require.Empty(t, list)
}

func TestParseSnapshot_RoundTrip(t *testing.T) {
	s, cleanup := testSetup(t)
	defer cleanup()

	original := &domain.Paint{
		Brand:  "Pébéo",
		Line:   "Studio",
		Name:   "Cobalt Teal",
		Code:   "PG50",
		Medium: domain.MediumAcrylic,
		Status: domain.StatusOwned,
		Tags:   []string{"cool", "opaque"},
		Notes:  "lovely in skies",
		Swatch: "#0F8A8A",
		Photo: &domain.PaintPhoto{
			Data:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
			Filename: "teal.jpg",
			MimeType: "image/jpeg",
			BlurHash: "L6PZfSi_.AyE",
			Width:    100,
			Height:   80,
		},
	}
	require.NoError(t, s.CreatePaint(original))

	snap, err := backup.Export(context.Background(), s)
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	parsed, err := backup.ParseSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.Skipped)
	require.Len(t, parsed.Paints, 1)

	got := parsed.Paints[0]
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.Brand, got.Brand)
	assert.Equal(t, original.Line, got.Line)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Code, got.Code)
	assert.Equal(t, original.Medium, got.Medium)
	assert.Equal(t, original.Status, got.Status)
	assert.Equal(t, original.Tags, got.Tags)
	assert.Equal(t, original.Notes, got.Notes)
	assert.Equal(t, original.Swatch, got.Swatch)
	assert.Equal(t, original.CreatedAt.Unix(), got.CreatedAt.Unix())
	require.NotNil(t, got.Photo)
	assert.Equal(t, original.Photo.Data, got.Photo.Data)
	assert.Equal(t, original.Photo.BlurHash, got.Photo.BlurHash)
	assert.Equal(t, original.Photo.Width, got.Photo.Width)
}

func TestParseSnapshot_RejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"not_json", `{definitely not json`, backup.ErrInvalidSnapshot},
		{"missing_paints", `{"version": 1, "exportedAt": "2026-01-01T00:00:00Z"}`, backup.ErrInvalidSnapshot},
		{"null_paints", `{"version": 1, "paints": null}`, backup.ErrInvalidSnapshot},
		{"paints_not_a_list", `{"version": 1, "paints": "lots"}`, backup.ErrInvalidSnapshot},
		{"top_level_array", `[1, 2, 3]`, backup.ErrInvalidSnapshot},
		{"future_version", `{"version": 99, "paints": []}`, backup.ErrVersionMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := backup.ParseSnapshot([]byte(tc.doc))
			require.Error(t, err)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, snap)
		})
	}
}

func TestParseSnapshot_ToleratesCorruptRecords(t *testing.T) {
	doc := `{
		"version": 1,
		"paints": [
			{"id": 4, "name": "Good One", "brand": "Brand", "medium": "watercolor", "status": "owned"},
			42,
			"junk",
			{"name": 123, "tags": "not-a-list", "id": "seven", "swatch": true}
		]
	}`

	snap, err := backup.ParseSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, snap.Skipped)
	require.Len(t, snap.Paints, 2)

	good := snap.Paints[0]
	assert.Equal(t, uint64(4), good.ID)
	assert.Equal(t, "Good One", good.Name)

	// The mistyped record survives with zero-valued fields.
	mangled := snap.Paints[1]
	assert.Equal(t, uint64(0), mangled.ID)
	assert.Equal(t, "", mangled.Name)
	assert.Nil(t, mangled.Tags)
	assert.Equal(t, "", mangled.Swatch)
}

func TestParseSnapshot_CoercesFieldShapes(t *testing.T) {
	doc := `{
		"version": 1,
		"paints": [{
			"id": 3.0,
			"name": "Coerced",
			"tags": ["keep", 5, "these", null],
			"created_at": "not a timestamp",
			"photo": {"data": "!!!not base64!!!", "mime_type": "image/png"}
		}, {
			"id": 3.5,
			"name": "Fractional"
		}]
	}`

	snap, err := backup.ParseSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, snap.Paints, 2)

	coerced := snap.Paints[0]
	assert.Equal(t, uint64(3), coerced.ID)
	assert.Equal(t, []string{"keep", "these"}, coerced.Tags)
	assert.True(t, coerced.CreatedAt.IsZero())
	assert.Nil(t, coerced.Photo)

	// A fractional id is no id at all.
	assert.Equal(t, uint64(0), snap.Paints[1].ID)
}
