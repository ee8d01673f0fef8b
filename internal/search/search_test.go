package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func paintDoc(id uint64, name, brand string) *PaintDocument {
	now := time.Now()
	return PaintToDocument(&domain.Paint{
		ID:     id,
		Name:   name,
		Brand:  brand,
		Medium: domain.MediumWatercolor,
		Status: domain.StatusOwned,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(paintDoc(1, "French Ultramarine", "Winsor & Newton")))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Same id again replaces rather than duplicates.
	require.NoError(t, index.IndexDocument(paintDoc(1, "French Ultramarine Hue", "Winsor & Newton")))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*PaintDocument{
		paintDoc(1, "Cadmium Red", "Schmincke"),
		paintDoc(2, "Cadmium Yellow", "Schmincke"),
		paintDoc(3, "Payne's Grey", "Daniel Smith"),
	}

	require.NoError(t, index.IndexDocuments(docs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(paintDoc(7, "Viridian", "Holbein")))
	require.NoError(t, index.DeleteDocument(DocID(7)))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Unknown ids are a no-op.
	require.NoError(t, index.DeleteDocument(DocID(99)))
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*PaintDocument{
		paintDoc(1, "French Ultramarine", "Winsor & Newton"),
		paintDoc(2, "Ultramarine Deep", "Sennelier"),
		paintDoc(3, "Cadmium Red", "Schmincke"),
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(context.Background(), SearchParams{
		Query: "ultramarine",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestSearchIndex_Search_FoldsAccents(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(paintDoc(1, "Vermillion", "Pébéo")))

	// Plain-ascii query finds the accented brand.
	result, err := index.Search(context.Background(), SearchParams{
		Query: "pebeo",
		Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, uint64(1), result.Hits[0].ID)
	assert.Equal(t, "Pébéo", result.Hits[0].Brand)

	// And the accented query folds down to the same tokens.
	result, err = index.Search(context.Background(), SearchParams{
		Query: "Pébéo",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearchIndex_Search_MatchesCode(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := paintDoc(1, "Phthalo Blue", "Daniel Smith")
	doc.Code = "PB15:3"
	require.NoError(t, index.IndexDocument(doc))

	result, err := index.Search(context.Background(), SearchParams{
		Query: "pb15",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearchIndex_Search_FiltersByStatus(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	owned := paintDoc(1, "Sap Green", "Holbein")
	wished := paintDoc(2, "Sap Green", "Sennelier")
	wished.Status = string(domain.StatusWishlist)
	require.NoError(t, index.IndexDocuments([]*PaintDocument{owned, wished}))

	result, err := index.Search(context.Background(), SearchParams{
		Query:  "sap green",
		Status: "wishlist",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, uint64(2), result.Hits[0].ID)
}

func TestSearchIndex_Search_FiltersByBrand(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*PaintDocument{
		paintDoc(1, "Lamp Black", "Winsor & Newton"),
		paintDoc(2, "Lamp Black", "Daniel Smith"),
	}
	require.NoError(t, index.IndexDocuments(docs))

	// Brand filter goes through the folded key, so case does not matter.
	result, err := index.Search(context.Background(), SearchParams{
		Brand: "winsor & newton",
		Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, uint64(1), result.Hits[0].ID)
}

func TestSearchIndex_Search_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments([]*PaintDocument{
		paintDoc(1, "Titanium White", "Amsterdam"),
		paintDoc(2, "Ivory Black", "Amsterdam"),
	}))

	result, err := index.Search(context.Background(), SearchParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchIndex_Search_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	owned := paintDoc(1, "Quinacridone Rose", "Daniel Smith")
	empty := paintDoc(2, "Quinacridone Gold", "Daniel Smith")
	empty.Status = string(domain.StatusEmpty)
	require.NoError(t, index.IndexDocuments([]*PaintDocument{owned, empty}))

	params := DefaultSearchParams()
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	values := map[string]int{}
	for _, fc := range result.Facets.Statuses {
		values[fc.Value] = fc.Count
	}
	assert.Equal(t, 1, values["owned"])
	assert.Equal(t, 1, values["empty"])
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(paintDoc(1, "Raw Umber", "Holbein")))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// The rebuilt index accepts new documents.
	require.NoError(t, index.IndexDocument(paintDoc(2, "Burnt Umber", "Holbein")))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	index1, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	require.NoError(t, index1.IndexDocument(paintDoc(1, "Cerulean Blue", "Holbein")))
	require.NoError(t, index1.Close())

	index2, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	result, err := index2.Search(context.Background(), SearchParams{Query: "cerulean", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearchIndex_VersionMismatchRebuilds(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-version-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	index1, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	require.NoError(t, index1.IndexDocument(paintDoc(1, "Indigo", "Sennelier")))
	require.NoError(t, index1.Close())

	// Pretend the index was written by an older mapping.
	require.NoError(t, os.WriteFile(tmpDir+"/search.version", []byte("0"), 0644))

	index2, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count, "stale index should be dropped for re-feeding")
}

func TestPaintToDocument(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 4, 2, 11, 30, 0, 0, time.UTC)

	p := &domain.Paint{
		ID:     42,
		Brand:  "Pébéo",
		Line:   "Studio Acrylics",
		Name:   "Héliogène Green",
		Code:   "PG36",
		Medium: domain.MediumAcrylic,
		Status: domain.StatusOwned,
		Tags:   []string{"granulating"},
		Notes:  "good coverage",
		Swatch: "#1C7C54",
		Timestamps: domain.Timestamps{
			CreatedAt: created,
			UpdatedAt: updated,
		},
	}

	doc := PaintToDocument(p)

	assert.Equal(t, "42", doc.ID)
	assert.Equal(t, "Héliogène Green", doc.Name)
	assert.Equal(t, "heliogene green", doc.NameFolded)
	assert.Equal(t, "Pébéo", doc.Brand)
	assert.Equal(t, "pebeo", doc.BrandFolded)
	assert.Equal(t, "acrylic", doc.Medium)
	assert.Equal(t, "owned", doc.Status)
	assert.Equal(t, []string{"granulating"}, doc.Tags)
	assert.Equal(t, "#1C7C54", doc.Swatch)
	assert.Equal(t, created.UnixMilli(), doc.CreatedAt)
	assert.Equal(t, updated.UnixMilli(), doc.UpdatedAt)
}
