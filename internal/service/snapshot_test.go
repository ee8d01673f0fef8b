package service_test

import (
	"context"
	"errors"
	"testing"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	domainerrors "github.com/swatchbookapp/swatchbook-server/internal/errors"
	"github.com/swatchbookapp/swatchbook-server/internal/search"
	"github.com/swatchbookapp/swatchbook-server/internal/service"
)

func TestSnapshotService_ExportRoundTrip(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.paints.Create(ctx, validPaint())
	require.NoError(t, err)

	snap, err := env.snapshot.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Paints, 1)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	// Importing our own export into a fresh instance reproduces the collection.
	other, otherCleanup := setupTestServices(t)
	defer otherCleanup()

	stats, err := other.snapshot.Import(ctx, data, service.ImportModeMerge, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)

	paints, err := other.paints.List(ctx, service.ListPaintsOptions{})
	require.NoError(t, err)
	require.Len(t, paints, 1)
	assert.Equal(t, "French Ultramarine", paints[0].Name)
}

func TestSnapshotService_Import_MalformedDocument(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	for _, data := range [][]byte{
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"version": 1}`),
	} {
		_, err := env.snapshot.Import(context.Background(), data, service.ImportModeMerge, false)
		require.Error(t, err, "input %q", data)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
	}
}

func TestSnapshotService_Import_ReplaceRequiresConfirm(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.paints.Create(ctx, validPaint())
	require.NoError(t, err)

	_, err = env.snapshot.Import(ctx, []byte(`{"paints": []}`), service.ImportModeReplace, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))

	// Nothing was wiped by the rejected attempt.
	count, err := env.paints.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSnapshotService_Import_ReplaceWipesCollection(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.paints.Create(ctx, validPaint())
	require.NoError(t, err)

	doc := []byte(`{"version": 1, "paints": [{"name": "Sap Green", "medium": "watercolor", "status": "owned"}]}`)
	stats, err := env.snapshot.Import(ctx, doc, service.ImportModeReplace, true)
	require.NoError(t, err)

	assert.Equal(t, "replace", stats.Mode)
	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, 1, stats.Added)

	paints, err := env.paints.List(ctx, service.ListPaintsOptions{})
	require.NoError(t, err)
	require.Len(t, paints, 1)
	assert.Equal(t, "Sap Green", paints[0].Name)
}

func TestSnapshotService_Import_UnknownMode(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := env.snapshot.Import(context.Background(), []byte(`{"paints": []}`), "append", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
}

func TestSnapshotService_Import_SanitizesRecords(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	doc := []byte(`{"paints": [
		{"name": "  Neon Mystery  ", "medium": "plasma", "status": "borrowed", "swatch": "zzz"}
	]}`)
	stats, err := env.snapshot.Import(ctx, doc, service.ImportModeMerge, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)

	paints, err := env.paints.List(ctx, service.ListPaintsOptions{})
	require.NoError(t, err)
	require.Len(t, paints, 1)

	p := paints[0]
	assert.Equal(t, "Neon Mystery", p.Name)
	assert.Equal(t, domain.MediumOther, p.Medium, "unknown medium falls back")
	assert.Equal(t, domain.StatusOwned, p.Status, "unknown status falls back")
	assert.Empty(t, p.Swatch, "invalid hex is blanked, not rejected")
	assert.False(t, p.CreatedAt.IsZero())
}

func TestSnapshotService_Import_RebuildsSearchIndex(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	doc := []byte(`{"paints": [
		{"name": "Quinacridone Gold", "medium": "watercolor", "status": "owned"},
		{"name": "Quinacridone Rose", "medium": "watercolor", "status": "owned"}
	]}`)
	_, err := env.snapshot.Import(ctx, doc, service.ImportModeMerge, false)
	require.NoError(t, err)

	result, err := env.search.Search(ctx, search.SearchParams{Query: "quinacridone", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}
