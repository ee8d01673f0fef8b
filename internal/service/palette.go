package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	domainerrors "github.com/swatchbookapp/swatchbook-server/internal/errors"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// PaletteService orchestrates palette and slot operations. Slot writes are
// bounds-checked against the palette here; the store treats (palette, index)
// pairs as opaque keys.
type PaletteService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPaletteService creates a new palette service.
func NewPaletteService(st *store.Store, logger *slog.Logger) *PaletteService {
	return &PaletteService{
		store:  st,
		logger: logger,
	}
}

// ResolvedSlot is a palette position with its paint reference resolved.
// Paint is nil for an empty slot or a dangling reference.
type ResolvedSlot struct {
	Index int           `json:"index"`
	Paint *domain.Paint `json:"paint,omitempty"`
}

// Create persists a new palette.
func (s *PaletteService) Create(_ context.Context, p *domain.Palette) (*domain.Palette, error) {
	if err := cleanPaletteInput(p); err != nil {
		return nil, err
	}

	if err := s.store.CreatePalette(p); err != nil {
		return nil, err
	}

	s.logger.Info("palette created", "id", p.ID, "name", p.Name, "slots", p.Slots)
	return p, nil
}

// Get returns a palette by id.
func (s *PaletteService) Get(_ context.Context, id uint64) (*domain.Palette, error) {
	p, err := s.store.GetPalette(id)
	if errors.Is(err, store.ErrPaletteNotFound) {
		return nil, domainerrors.NotFoundf("palette %d not found", id)
	}
	return p, err
}

// List returns all palettes.
func (s *PaletteService) List(_ context.Context) ([]*domain.Palette, error) {
	return s.store.ListPalettes()
}

// Update applies a partial update to a palette. When the slot count
// shrinks, slot records beyond the new bound are removed.
func (s *PaletteService) Update(_ context.Context, id uint64, patch *domain.PalettePatch) (*domain.Palette, error) {
	if patch.Name != nil {
		*patch.Name = strings.TrimSpace(*patch.Name)
		if *patch.Name == "" {
			return nil, domainerrors.Validation("name cannot be blank")
		}
	}
	if patch.Slots != nil && *patch.Slots < 1 {
		return nil, domainerrors.Validation("a palette needs at least one slot")
	}

	updated, found, err := s.store.UpdatePalette(id, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("palette %d not found", id)
	}

	if patch.Slots != nil {
		removed, err := s.store.TrimSlotsBeyond(id, updated.Slots)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			s.logger.Info("palette shrunk", "id", id, "slots", updated.Slots, "trimmed", removed)
		}
	}

	return updated, nil
}

// Delete removes a palette and all its slot records.
func (s *PaletteService) Delete(_ context.Context, id uint64) error {
	found, err := s.store.DeletePalette(id)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.NotFoundf("palette %d not found", id)
	}

	s.logger.Info("palette deleted", "id", id)
	return nil
}

// SetSlot assigns a paint to a palette position, or clears the position
// when paintID is nil. The index must fall within the palette's slot count
// and a non-nil paintID must reference an existing paint.
func (s *PaletteService) SetSlot(ctx context.Context, paletteID uint64, index int, paintID *uint64) (*domain.PaletteSlot, error) {
	palette, err := s.Get(ctx, paletteID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= palette.Slots {
		return nil, domainerrors.InvalidInputf("slot index %d out of range for palette with %d slots", index, palette.Slots)
	}

	if paintID != nil {
		if _, err := s.store.GetPaint(*paintID); err != nil {
			if errors.Is(err, store.ErrPaintNotFound) {
				return nil, domainerrors.Validationf("paint %d does not exist", *paintID)
			}
			return nil, err
		}
	}

	return s.store.SetSlotPaint(paletteID, index, paintID)
}

// GetSlots returns every position of a palette in order, with paint
// references resolved. Positions without a record, with a cleared record,
// or with a dangling reference all come back empty.
func (s *PaletteService) GetSlots(ctx context.Context, paletteID uint64) ([]ResolvedSlot, error) {
	palette, err := s.Get(ctx, paletteID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListPaletteSlots(paletteID)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedSlot, palette.Slots)
	for i := range resolved {
		resolved[i].Index = i
	}

	for _, rec := range records {
		if rec.Index < 0 || rec.Index >= palette.Slots || rec.PaintID == nil {
			continue
		}
		paint, err := s.store.GetPaint(*rec.PaintID)
		if errors.Is(err, store.ErrPaintNotFound) {
			continue // dangling reference reads as empty
		}
		if err != nil {
			return nil, err
		}
		resolved[rec.Index].Paint = paint
	}

	return resolved, nil
}

func cleanPaletteInput(p *domain.Palette) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domainerrors.Validation("name is required")
	}
	if p.Slots < 1 {
		return domainerrors.Validation("a palette needs at least one slot")
	}
	return nil
}
