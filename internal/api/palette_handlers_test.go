package api

import (
	"fmt"
	"net/http"
	"testing"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePalette(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/palettes", map[string]any{"name": "Travel Tin", "slots": 12})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PaletteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotZero(t, envelope.Data.ID)
	assert.Equal(t, "Travel Tin", envelope.Data.Name)
	assert.Equal(t, 12, envelope.Data.Slots)
}

func TestCreatePalette_ZeroSlotsRejected(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/palettes", map[string]any{"name": "Broken", "slots": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
}

func TestListPalettes(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.createPalette(t, "Studio", 24)
	ts.createPalette(t, "Travel Tin", 12)

	resp := ts.api.Get("/api/v1/palettes")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListPalettesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Palettes, 2)
}

func TestSetPaletteSlot(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paintID := ts.createPaint(t, validPaintBody())
	paletteID := ts.createPalette(t, "Studio", 6)

	resp := ts.api.Put(fmt.Sprintf("/api/v1/palettes/%d/slots/2", paletteID),
		map[string]any{"paint_id": paintID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SlotRecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Index)
	require.NotNil(t, envelope.Data.PaintID)
	assert.Equal(t, paintID, *envelope.Data.PaintID)
}

func TestSetPaletteSlot_NullClears(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paintID := ts.createPaint(t, validPaintBody())
	paletteID := ts.createPalette(t, "Studio", 6)

	path := fmt.Sprintf("/api/v1/palettes/%d/slots/0", paletteID)
	resp := ts.api.Put(path, map[string]any{"paint_id": paintID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Put(path, map[string]any{"paint_id": nil})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SlotRecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.PaintID)
}

func TestSetPaletteSlot_OutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paletteID := ts.createPalette(t, "Studio", 6)

	resp := ts.api.Put(fmt.Sprintf("/api/v1/palettes/%d/slots/6", paletteID),
		map[string]any{"paint_id": nil})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestGetPaletteSlots_DanglingReadsEmpty(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paintID := ts.createPaint(t, validPaintBody())
	paletteID := ts.createPalette(t, "Studio", 4)

	resp := ts.api.Put(fmt.Sprintf("/api/v1/palettes/%d/slots/1", paletteID),
		map[string]any{"paint_id": paintID})
	require.Equal(t, http.StatusOK, resp.Code)

	// Delete the paint out from under the slot.
	resp = ts.api.Delete(fmt.Sprintf("/api/v1/paints/%d", paintID))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/palettes/%d/slots", paletteID))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[SlotsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Slots, 4)
	for _, slot := range envelope.Data.Slots {
		assert.Nil(t, slot.Paint)
	}
}

func TestDeletePalette_RemovesSlots(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paintID := ts.createPaint(t, validPaintBody())
	paletteID := ts.createPalette(t, "Studio", 6)

	resp := ts.api.Put(fmt.Sprintf("/api/v1/palettes/%d/slots/0", paletteID),
		map[string]any{"paint_id": paintID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete(fmt.Sprintf("/api/v1/palettes/%d", paletteID))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/palettes/%d/slots", paletteID))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
