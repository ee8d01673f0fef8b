package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/search"
	"github.com/swatchbookapp/swatchbook-server/internal/service"
)

func (s *Server) registerPaintRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPaints",
		Method:      http.MethodGet,
		Path:        "/api/v1/paints",
		Summary:     "List paints",
		Description: "Returns the paint collection, optionally filtered or searched",
		Tags:        []string{"Paints"},
	}, s.handleListPaints)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPaint",
		Method:      http.MethodPost,
		Path:        "/api/v1/paints",
		Summary:     "Create paint",
		Description: "Adds a paint to the collection",
		Tags:        []string{"Paints"},
	}, s.handleCreatePaint)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPaint",
		Method:      http.MethodGet,
		Path:        "/api/v1/paints/{id}",
		Summary:     "Get paint",
		Description: "Returns a paint by ID",
		Tags:        []string{"Paints"},
	}, s.handleGetPaint)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePaint",
		Method:      http.MethodPatch,
		Path:        "/api/v1/paints/{id}",
		Summary:     "Update paint",
		Description: "Applies a partial update to a paint",
		Tags:        []string{"Paints"},
	}, s.handleUpdatePaint)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePaint",
		Method:      http.MethodDelete,
		Path:        "/api/v1/paints/{id}",
		Summary:     "Delete paint",
		Description: "Removes a paint from the collection",
		Tags:        []string{"Paints"},
	}, s.handleDeletePaint)

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadPaintPhoto",
		Method:       http.MethodPut,
		Path:         "/api/v1/paints/{id}/photo",
		Summary:      "Upload paint photo",
		Description:  "Attaches a photo to a paint; the image is re-encoded and bounded",
		Tags:         []string{"Paints"},
		MaxBodyBytes: MaxUploadSize,
	}, s.handleUploadPaintPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPaintPhoto",
		Method:      http.MethodGet,
		Path:        "/api/v1/paints/{id}/photo",
		Summary:     "Get paint photo",
		Description: "Returns the stored photo bytes",
		Tags:        []string{"Paints"},
	}, s.handleGetPaintPhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePaintPhoto",
		Method:      http.MethodDelete,
		Path:        "/api/v1/paints/{id}/photo",
		Summary:     "Delete paint photo",
		Description: "Detaches the photo from a paint",
		Tags:        []string{"Paints"},
	}, s.handleDeletePaintPhoto)
}

// === DTOs ===

// MessageResponse contains a status message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps a status message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// PhotoMeta describes a stored photo without carrying its bytes.
type PhotoMeta struct {
	Filename string `json:"filename,omitempty" doc:"Original upload name"`
	MimeType string `json:"mime_type" doc:"Stored image MIME type"`
	BlurHash string `json:"blur_hash,omitempty" doc:"Compact placeholder hash"`
	Width    int    `json:"width" doc:"Stored width in pixels"`
	Height   int    `json:"height" doc:"Stored height in pixels"`
	Size     int    `json:"size" doc:"Stored size in bytes"`
}

// PaintResponse contains paint data in API responses.
type PaintResponse struct {
	ID        uint64     `json:"id" doc:"Paint ID"`
	Brand     string     `json:"brand,omitempty" doc:"Manufacturer"`
	Line      string     `json:"line,omitempty" doc:"Product line"`
	Name      string     `json:"name" doc:"Paint name"`
	Code      string     `json:"code,omitempty" doc:"Manufacturer product code"`
	Medium    string     `json:"medium" doc:"Paint medium"`
	Status    string     `json:"status" doc:"Ownership status"`
	Tags      []string   `json:"tags,omitempty" doc:"Free-form tags"`
	Notes     string     `json:"notes,omitempty" doc:"Free-form notes"`
	Swatch    string     `json:"swatch,omitempty" doc:"Normalized #RRGGBB color"`
	Photo     *PhotoMeta `json:"photo,omitempty" doc:"Photo metadata, if one is attached"`
	CreatedAt time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListPaintsInput contains parameters for listing paints.
type ListPaintsInput struct {
	Query  string `query:"q" doc:"Full-text search query"`
	Status string `query:"status" doc:"Filter by ownership status"`
	Brand  string `query:"brand" doc:"Filter by brand"`
	Recent int    `query:"recent" doc:"Return only the N most recently updated paints"`
}

// ListPaintsResponse contains a list of paints.
type ListPaintsResponse struct {
	Paints []PaintResponse `json:"paints" doc:"Paint records"`
	Total  int             `json:"total" doc:"Number of records returned"`
}

// ListPaintsOutput wraps the list paints response for Huma.
type ListPaintsOutput struct {
	Body ListPaintsResponse
}

// CreatePaintRequest is the request body for creating a paint.
type CreatePaintRequest struct {
	Brand  string   `json:"brand,omitempty" validate:"omitempty,max=120" doc:"Manufacturer"`
	Line   string   `json:"line,omitempty" validate:"omitempty,max=120" doc:"Product line"`
	Name   string   `json:"name" validate:"required,max=200" doc:"Paint name"`
	Code   string   `json:"code,omitempty" validate:"omitempty,max=60" doc:"Manufacturer product code"`
	Medium string   `json:"medium" validate:"required,oneof=watercolor acrylic gouache oil ink other" doc:"Paint medium"`
	Status string   `json:"status" validate:"required,oneof=owned empty wishlist" doc:"Ownership status"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,dive,max=60" doc:"Free-form tags"`
	Notes  string   `json:"notes,omitempty" validate:"omitempty,max=2000" doc:"Free-form notes"`
	Swatch string   `json:"swatch,omitempty" validate:"omitempty,swatch" doc:"Hex color, with or without leading #"`
}

// CreatePaintInput wraps the create paint request for Huma.
type CreatePaintInput struct {
	Body CreatePaintRequest
}

// PaintOutput wraps the paint response for Huma.
type PaintOutput struct {
	Body PaintResponse
}

// GetPaintInput contains parameters for getting a paint.
type GetPaintInput struct {
	ID uint64 `path:"id" doc:"Paint ID"`
}

// UpdatePaintRequest is the request body for updating a paint.
// Absent fields are left untouched.
type UpdatePaintRequest struct {
	Brand  *string   `json:"brand,omitempty" validate:"omitempty,max=120" doc:"Manufacturer"`
	Line   *string   `json:"line,omitempty" validate:"omitempty,max=120" doc:"Product line"`
	Name   *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"Paint name"`
	Code   *string   `json:"code,omitempty" validate:"omitempty,max=60" doc:"Manufacturer product code"`
	Medium *string   `json:"medium,omitempty" validate:"omitempty,oneof=watercolor acrylic gouache oil ink other" doc:"Paint medium"`
	Status *string   `json:"status,omitempty" validate:"omitempty,oneof=owned empty wishlist" doc:"Ownership status"`
	Tags   *[]string `json:"tags,omitempty" validate:"omitempty,dive,max=60" doc:"Free-form tags"`
	Notes  *string   `json:"notes,omitempty" validate:"omitempty,max=2000" doc:"Free-form notes"`
	Swatch *string   `json:"swatch,omitempty" validate:"omitempty,swatch" doc:"Hex color, with or without leading #"`
}

// UpdatePaintInput wraps the update paint request for Huma.
type UpdatePaintInput struct {
	ID   uint64 `path:"id" doc:"Paint ID"`
	Body UpdatePaintRequest
}

// UploadPhotoInput carries a raw image upload.
type UploadPhotoInput struct {
	ID       uint64 `path:"id" doc:"Paint ID"`
	Filename string `query:"filename" doc:"Original file name, display only"`
	RawBody  []byte
}

// PhotoBytesOutput serves raw image bytes.
type PhotoBytesOutput struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

// === Handlers ===

func (s *Server) handleListPaints(ctx context.Context, input *ListPaintsInput) (*ListPaintsOutput, error) {
	if input.Query != "" {
		return s.searchPaints(ctx, input)
	}

	paints, err := s.services.Paint.List(ctx, service.ListPaintsOptions{
		Status: domain.OwnershipStatus(input.Status),
		Brand:  input.Brand,
		Recent: input.Recent,
	})
	if err != nil {
		return nil, err
	}

	return &ListPaintsOutput{Body: paintsToListResponse(paints)}, nil
}

// searchPaints resolves full-text hits back to full records. Hits whose
// record vanished between indexing and lookup are silently dropped.
func (s *Server) searchPaints(ctx context.Context, input *ListPaintsInput) (*ListPaintsOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Status = input.Status
	params.Brand = input.Brand
	params.Limit = 50

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := ListPaintsResponse{Paints: []PaintResponse{}}
	for _, hit := range result.Hits {
		p, err := s.services.Paint.Get(ctx, hit.ID)
		if err != nil {
			continue
		}
		resp.Paints = append(resp.Paints, paintToResponse(p))
	}
	resp.Total = len(resp.Paints)

	return &ListPaintsOutput{Body: resp}, nil
}

func (s *Server) handleCreatePaint(ctx context.Context, input *CreatePaintInput) (*PaintOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	p := &domain.Paint{
		Brand:  input.Body.Brand,
		Line:   input.Body.Line,
		Name:   input.Body.Name,
		Code:   input.Body.Code,
		Medium: domain.MediumType(input.Body.Medium),
		Status: domain.OwnershipStatus(input.Body.Status),
		Tags:   input.Body.Tags,
		Notes:  input.Body.Notes,
		Swatch: input.Body.Swatch,
	}

	created, err := s.services.Paint.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	return &PaintOutput{Body: paintToResponse(created)}, nil
}

func (s *Server) handleGetPaint(ctx context.Context, input *GetPaintInput) (*PaintOutput, error) {
	p, err := s.services.Paint.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PaintOutput{Body: paintToResponse(p)}, nil
}

func (s *Server) handleUpdatePaint(ctx context.Context, input *UpdatePaintInput) (*PaintOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	patch := &domain.PaintPatch{
		Brand:  input.Body.Brand,
		Line:   input.Body.Line,
		Name:   input.Body.Name,
		Code:   input.Body.Code,
		Tags:   input.Body.Tags,
		Notes:  input.Body.Notes,
		Swatch: input.Body.Swatch,
	}
	if input.Body.Medium != nil {
		m := domain.MediumType(*input.Body.Medium)
		patch.Medium = &m
	}
	if input.Body.Status != nil {
		st := domain.OwnershipStatus(*input.Body.Status)
		patch.Status = &st
	}

	updated, err := s.services.Paint.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, err
	}

	return &PaintOutput{Body: paintToResponse(updated)}, nil
}

func (s *Server) handleDeletePaint(ctx context.Context, input *GetPaintInput) (*MessageOutput, error) {
	if err := s.services.Paint.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Paint deleted"}}, nil
}

func (s *Server) handleUploadPaintPhoto(ctx context.Context, input *UploadPhotoInput) (*PaintOutput, error) {
	updated, err := s.services.Paint.SetPhoto(ctx, input.ID, input.RawBody, input.Filename)
	if err != nil {
		return nil, err
	}

	return &PaintOutput{Body: paintToResponse(updated)}, nil
}

func (s *Server) handleGetPaintPhoto(ctx context.Context, input *GetPaintInput) (*PhotoBytesOutput, error) {
	photo, err := s.services.Paint.GetPhoto(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PhotoBytesOutput{
		ContentType:  photo.MimeType,
		CacheControl: CacheOneDayPrivate,
		Body:         photo.Data,
	}, nil
}

func (s *Server) handleDeletePaintPhoto(ctx context.Context, input *GetPaintInput) (*MessageOutput, error) {
	if err := s.services.Paint.RemovePhoto(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Photo removed"}}, nil
}

// === Mapping helpers ===

func paintToResponse(p *domain.Paint) PaintResponse {
	resp := PaintResponse{
		ID:        p.ID,
		Brand:     p.Brand,
		Line:      p.Line,
		Name:      p.Name,
		Code:      p.Code,
		Medium:    string(p.Medium),
		Status:    string(p.Status),
		Tags:      p.Tags,
		Notes:     p.Notes,
		Swatch:    p.Swatch,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Photo != nil {
		resp.Photo = &PhotoMeta{
			Filename: p.Photo.Filename,
			MimeType: p.Photo.MimeType,
			BlurHash: p.Photo.BlurHash,
			Width:    p.Photo.Width,
			Height:   p.Photo.Height,
			Size:     len(p.Photo.Data),
		}
	}
	return resp
}

func paintsToListResponse(paints []*domain.Paint) ListPaintsResponse {
	resp := ListPaintsResponse{Paints: make([]PaintResponse, len(paints)), Total: len(paints)}
	for i, p := range paints {
		resp.Paints[i] = paintToResponse(p)
	}
	return resp
}
