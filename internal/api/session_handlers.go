package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/session"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session state",
		Description: "Returns the UI state snapshot: sorted paints, palettes, and selection",
		Tags:        []string{"Session"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSelection",
		Method:      http.MethodPut,
		Path:        "/api/v1/session/selection",
		Summary:     "Set selection",
		Description: "Updates the selected and editing paint ids",
		Tags:        []string{"Session"},
	}, s.handleSetSelection)
}

// === DTOs ===

// SessionResponse contains the UI state snapshot.
type SessionResponse struct {
	Paints          []PaintResponse   `json:"paints" doc:"All paints in display order"`
	Palettes        []PaletteResponse `json:"palettes" doc:"All palettes"`
	SelectedPaintID *uint64           `json:"selected_paint_id" doc:"Currently selected paint, null when none"`
	EditingPaintID  *uint64           `json:"editing_paint_id" doc:"Paint open in the editor, null when none"`
	Revision        uint64            `json:"revision" doc:"Monotonic state revision, bumps on every change"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// SetSelectionRequest is the request body for updating the selection.
type SetSelectionRequest struct {
	SelectedPaintID *uint64 `json:"selected_paint_id,omitempty" doc:"Paint to select, null or absent to clear"`
	EditingPaintID  *uint64 `json:"editing_paint_id,omitempty" doc:"Paint to edit, null or absent to close the editor"`
}

// SetSelectionInput wraps the selection request for Huma.
type SetSelectionInput struct {
	Body SetSelectionRequest
}

// === Handlers ===

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: sessionToResponse(snap)}, nil
}

func (s *Server) handleSetSelection(ctx context.Context, input *SetSelectionInput) (*SessionOutput, error) {
	snap, err := s.session.SetSelection(ctx, input.Body.SelectedPaintID, input.Body.EditingPaintID)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: sessionToResponse(snap)}, nil
}

func sessionToResponse(snap *session.Snapshot) SessionResponse {
	resp := SessionResponse{
		Paints:          make([]PaintResponse, len(snap.Paints)),
		Palettes:        make([]PaletteResponse, len(snap.Palettes)),
		SelectedPaintID: snap.SelectedPaintID,
		EditingPaintID:  snap.EditingPaintID,
		Revision:        snap.Revision,
	}
	for i, p := range snap.Paints {
		resp.Paints[i] = paintToResponse(p)
	}
	for i, p := range snap.Palettes {
		resp.Palettes[i] = paletteToResponse(p)
	}
	return resp
}
