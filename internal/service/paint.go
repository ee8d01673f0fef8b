package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	domainerrors "github.com/swatchbookapp/swatchbook-server/internal/errors"
	"github.com/swatchbookapp/swatchbook-server/internal/media/images"
	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// PaintService orchestrates paint record operations: input normalization,
// persistence, photo processing, and search index upkeep.
type PaintService struct {
	store  *store.Store
	search *SearchService
	images *images.Processor
	logger *slog.Logger
}

// NewPaintService creates a new paint service.
func NewPaintService(st *store.Store, search *SearchService, processor *images.Processor, logger *slog.Logger) *PaintService {
	return &PaintService{
		store:  st,
		search: search,
		images: processor,
		logger: logger,
	}
}

// ListPaintsOptions narrows a paint listing. At most one filter applies;
// Status wins over Brand, Brand over Recent.
type ListPaintsOptions struct {
	Status domain.OwnershipStatus
	Brand  string
	Recent int // When > 0, return the N most recently updated paints
}

// Create persists a new paint. The id is assigned by the store.
func (s *PaintService) Create(ctx context.Context, p *domain.Paint) (*domain.Paint, error) {
	if err := cleanPaintInput(p); err != nil {
		return nil, err
	}

	if err := s.store.CreatePaint(p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)

	s.logger.Info("paint created", "id", p.ID, "name", p.DisplayName())
	return p, nil
}

// Get returns a paint by id.
func (s *PaintService) Get(_ context.Context, id uint64) (*domain.Paint, error) {
	p, err := s.store.GetPaint(id)
	if errors.Is(err, store.ErrPaintNotFound) {
		return nil, domainerrors.NotFoundf("paint %d not found", id)
	}
	return p, err
}

// List returns paints, optionally narrowed by a single filter.
func (s *PaintService) List(_ context.Context, opts ListPaintsOptions) ([]*domain.Paint, error) {
	switch {
	case opts.Status != "":
		if !opts.Status.Valid() {
			return nil, domainerrors.InvalidInputf("unknown status %q", opts.Status)
		}
		return s.store.ListPaintsByStatus(opts.Status)
	case opts.Brand != "":
		return s.store.ListPaintsByBrand(opts.Brand)
	case opts.Recent > 0:
		return s.store.ListRecentPaints(opts.Recent)
	default:
		return s.store.ListPaints()
	}
}

// Update applies a partial update to a paint.
func (s *PaintService) Update(ctx context.Context, id uint64, patch *domain.PaintPatch) (*domain.Paint, error) {
	if err := cleanPatchInput(patch); err != nil {
		return nil, err
	}

	updated, found, err := s.store.UpdatePaint(id, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("paint %d not found", id)
	}

	s.reindex(ctx, updated)

	return updated, nil
}

// Delete removes a paint. Palette slots referencing it are left in place;
// readers treat the dangling reference as an empty slot.
func (s *PaintService) Delete(ctx context.Context, id uint64) error {
	found, err := s.store.DeletePaint(id)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.NotFoundf("paint %d not found", id)
	}

	if err := s.search.DeletePaint(ctx, id); err != nil {
		s.logger.Warn("failed to remove paint from search index", "id", id, "error", err)
	}

	s.logger.Info("paint deleted", "id", id)
	return nil
}

// Count returns the number of paint records.
func (s *PaintService) Count(_ context.Context) (int, error) {
	return s.store.CountPaints()
}

// SetPhoto processes an uploaded image and attaches it to a paint,
// replacing any existing photo.
func (s *PaintService) SetPhoto(ctx context.Context, id uint64, data []byte, filename string) (*domain.Paint, error) {
	photo, err := s.images.Process(data, filename)
	if errors.Is(err, images.ErrInvalidImage) {
		return nil, domainerrors.InvalidInput("unsupported or corrupt image").WithCause(err)
	}
	if err != nil {
		return nil, err
	}

	updated, found, err := s.store.UpdatePaint(id, &domain.PaintPatch{Photo: photo})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("paint %d not found", id)
	}

	// Photo bytes are not part of the search document; no reindex needed.
	s.logger.Info("paint photo set", "id", id, "bytes", len(photo.Data))
	return updated, nil
}

// GetPhoto returns the stored photo for a paint.
func (s *PaintService) GetPhoto(ctx context.Context, id uint64) (*domain.PaintPhoto, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Photo == nil {
		return nil, domainerrors.NotFoundf("paint %d has no photo", id)
	}
	return p.Photo, nil
}

// RemovePhoto detaches the photo from a paint.
func (s *PaintService) RemovePhoto(_ context.Context, id uint64) error {
	_, found, err := s.store.UpdatePaint(id, &domain.PaintPatch{RemovePhoto: true})
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.NotFoundf("paint %d not found", id)
	}
	return nil
}

// reindex updates the search document for a paint, best effort.
func (s *PaintService) reindex(ctx context.Context, p *domain.Paint) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexPaint(ctx, p); err != nil {
		s.logger.Warn("failed to index paint", "id", p.ID, "error", err)
	}
}

// cleanPaintInput normalizes a full paint record at the form boundary.
// Unlike import sanitization, a bad swatch here is the user's error.
func cleanPaintInput(p *domain.Paint) error {
	p.Brand = strings.TrimSpace(p.Brand)
	p.Line = strings.TrimSpace(p.Line)
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)

	if p.Name == "" {
		return domainerrors.Validation("name is required")
	}
	if !p.Medium.Valid() {
		return domainerrors.Validationf("unknown medium %q", p.Medium)
	}
	if !p.Status.Valid() {
		return domainerrors.Validationf("unknown status %q", p.Status)
	}

	hex, err := normalize.Hex(p.Swatch)
	if err != nil {
		return domainerrors.Validationf("invalid swatch color %q", p.Swatch)
	}
	p.Swatch = hex

	p.Tags = normalize.Tags(p.Tags)
	return nil
}

// cleanPatchInput normalizes the set fields of a partial update.
func cleanPatchInput(patch *domain.PaintPatch) error {
	if patch.Name != nil {
		*patch.Name = strings.TrimSpace(*patch.Name)
		if *patch.Name == "" {
			return domainerrors.Validation("name cannot be blank")
		}
	}
	if patch.Brand != nil {
		*patch.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Line != nil {
		*patch.Line = strings.TrimSpace(*patch.Line)
	}
	if patch.Code != nil {
		*patch.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Medium != nil && !patch.Medium.Valid() {
		return domainerrors.Validationf("unknown medium %q", *patch.Medium)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domainerrors.Validationf("unknown status %q", *patch.Status)
	}
	if patch.Swatch != nil {
		hex, err := normalize.Hex(*patch.Swatch)
		if err != nil {
			return domainerrors.Validationf("invalid swatch color %q", *patch.Swatch)
		}
		*patch.Swatch = hex
	}
	if patch.Tags != nil {
		*patch.Tags = normalize.Tags(*patch.Tags)
	}
	return nil
}
