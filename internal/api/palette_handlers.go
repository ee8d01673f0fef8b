package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

func (s *Server) registerPaletteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPalettes",
		Method:      http.MethodGet,
		Path:        "/api/v1/palettes",
		Summary:     "List palettes",
		Description: "Returns all palettes",
		Tags:        []string{"Palettes"},
	}, s.handleListPalettes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPalette",
		Method:      http.MethodPost,
		Path:        "/api/v1/palettes",
		Summary:     "Create palette",
		Description: "Creates a new palette",
		Tags:        []string{"Palettes"},
	}, s.handleCreatePalette)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPalette",
		Method:      http.MethodGet,
		Path:        "/api/v1/palettes/{id}",
		Summary:     "Get palette",
		Description: "Returns a palette by ID",
		Tags:        []string{"Palettes"},
	}, s.handleGetPalette)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePalette",
		Method:      http.MethodPatch,
		Path:        "/api/v1/palettes/{id}",
		Summary:     "Update palette",
		Description: "Applies a partial update to a palette",
		Tags:        []string{"Palettes"},
	}, s.handleUpdatePalette)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePalette",
		Method:      http.MethodDelete,
		Path:        "/api/v1/palettes/{id}",
		Summary:     "Delete palette",
		Description: "Removes a palette and its slot assignments",
		Tags:        []string{"Palettes"},
	}, s.handleDeletePalette)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPaletteSlots",
		Method:      http.MethodGet,
		Path:        "/api/v1/palettes/{id}/slots",
		Summary:     "Get palette slots",
		Description: "Returns every slot with its paint resolved; empty slots are null",
		Tags:        []string{"Palettes"},
	}, s.handleGetPaletteSlots)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPaletteSlot",
		Method:      http.MethodPut,
		Path:        "/api/v1/palettes/{id}/slots/{index}",
		Summary:     "Set palette slot",
		Description: "Assigns a paint to a slot, or clears it with a null paint_id",
		Tags:        []string{"Palettes"},
	}, s.handleSetPaletteSlot)
}

// === DTOs ===

// PaletteResponse contains palette data in API responses.
type PaletteResponse struct {
	ID        uint64    `json:"id" doc:"Palette ID"`
	Name      string    `json:"name" doc:"Palette name"`
	Slots     int       `json:"slots" doc:"Number of slots"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListPalettesResponse contains a list of palettes.
type ListPalettesResponse struct {
	Palettes []PaletteResponse `json:"palettes" doc:"Palette records"`
}

// ListPalettesOutput wraps the list palettes response for Huma.
type ListPalettesOutput struct {
	Body ListPalettesResponse
}

// CreatePaletteRequest is the request body for creating a palette.
type CreatePaletteRequest struct {
	Name  string `json:"name" validate:"required,max=200" doc:"Palette name"`
	Slots int    `json:"slots" validate:"required,min=1,max=500" doc:"Number of slots"`
}

// CreatePaletteInput wraps the create palette request for Huma.
type CreatePaletteInput struct {
	Body CreatePaletteRequest
}

// PaletteOutput wraps the palette response for Huma.
type PaletteOutput struct {
	Body PaletteResponse
}

// GetPaletteInput contains parameters for getting a palette.
type GetPaletteInput struct {
	ID uint64 `path:"id" doc:"Palette ID"`
}

// UpdatePaletteRequest is the request body for updating a palette.
type UpdatePaletteRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"Palette name"`
	Slots *int    `json:"slots,omitempty" validate:"omitempty,min=1,max=500" doc:"Number of slots"`
}

// UpdatePaletteInput wraps the update palette request for Huma.
type UpdatePaletteInput struct {
	ID   uint64 `path:"id" doc:"Palette ID"`
	Body UpdatePaletteRequest
}

// SlotResponse is one palette position with its paint resolved.
type SlotResponse struct {
	Index int            `json:"index" doc:"Slot position, 0-based"`
	Paint *PaintResponse `json:"paint" doc:"Resolved paint, null when the slot is empty"`
}

// SlotsResponse contains a palette's full slot layout.
type SlotsResponse struct {
	PaletteID uint64         `json:"palette_id" doc:"Palette ID"`
	Slots     []SlotResponse `json:"slots" doc:"All positions in order"`
}

// SlotsOutput wraps the slots response for Huma.
type SlotsOutput struct {
	Body SlotsResponse
}

// SetSlotRequest is the request body for assigning a slot.
type SetSlotRequest struct {
	PaintID *uint64 `json:"paint_id" doc:"Paint to place in the slot, null to clear"`
}

// SetSlotInput wraps the slot assignment request for Huma.
type SetSlotInput struct {
	ID    uint64 `path:"id" doc:"Palette ID"`
	Index int    `path:"index" doc:"Slot position, 0-based"`
	Body  SetSlotRequest
}

// SlotRecordResponse echoes a written slot record.
type SlotRecordResponse struct {
	PaletteID uint64    `json:"palette_id" doc:"Palette ID"`
	Index     int       `json:"index" doc:"Slot position"`
	PaintID   *uint64   `json:"paint_id" doc:"Assigned paint, null when cleared"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// SlotRecordOutput wraps the slot record response for Huma.
type SlotRecordOutput struct {
	Body SlotRecordResponse
}

// === Handlers ===

func (s *Server) handleListPalettes(ctx context.Context, _ *struct{}) (*ListPalettesOutput, error) {
	palettes, err := s.services.Palette.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]PaletteResponse, len(palettes))
	for i, p := range palettes {
		resp[i] = paletteToResponse(p)
	}

	return &ListPalettesOutput{Body: ListPalettesResponse{Palettes: resp}}, nil
}

func (s *Server) handleCreatePalette(ctx context.Context, input *CreatePaletteInput) (*PaletteOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	created, err := s.services.Palette.Create(ctx, &domain.Palette{
		Name:  input.Body.Name,
		Slots: input.Body.Slots,
	})
	if err != nil {
		return nil, err
	}

	return &PaletteOutput{Body: paletteToResponse(created)}, nil
}

func (s *Server) handleGetPalette(ctx context.Context, input *GetPaletteInput) (*PaletteOutput, error) {
	p, err := s.services.Palette.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PaletteOutput{Body: paletteToResponse(p)}, nil
}

func (s *Server) handleUpdatePalette(ctx context.Context, input *UpdatePaletteInput) (*PaletteOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	updated, err := s.services.Palette.Update(ctx, input.ID, &domain.PalettePatch{
		Name:  input.Body.Name,
		Slots: input.Body.Slots,
	})
	if err != nil {
		return nil, err
	}

	return &PaletteOutput{Body: paletteToResponse(updated)}, nil
}

func (s *Server) handleDeletePalette(ctx context.Context, input *GetPaletteInput) (*MessageOutput, error) {
	if err := s.services.Palette.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Palette deleted"}}, nil
}

func (s *Server) handleGetPaletteSlots(ctx context.Context, input *GetPaletteInput) (*SlotsOutput, error) {
	slots, err := s.services.Palette.GetSlots(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := SlotsResponse{
		PaletteID: input.ID,
		Slots:     make([]SlotResponse, len(slots)),
	}
	for i, slot := range slots {
		resp.Slots[i] = SlotResponse{Index: slot.Index}
		if slot.Paint != nil {
			pr := paintToResponse(slot.Paint)
			resp.Slots[i].Paint = &pr
		}
	}

	return &SlotsOutput{Body: resp}, nil
}

func (s *Server) handleSetPaletteSlot(ctx context.Context, input *SetSlotInput) (*SlotRecordOutput, error) {
	slot, err := s.services.Palette.SetSlot(ctx, input.ID, input.Index, input.Body.PaintID)
	if err != nil {
		return nil, err
	}

	return &SlotRecordOutput{
		Body: SlotRecordResponse{
			PaletteID: slot.PaletteID,
			Index:     slot.Index,
			PaintID:   slot.PaintID,
			UpdatedAt: slot.UpdatedAt,
		},
	}, nil
}

func paletteToResponse(p *domain.Palette) PaletteResponse {
	return PaletteResponse{
		ID:        p.ID,
		Name:      p.Name,
		Slots:     p.Slots,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
