// Package search provides full-text search over the paint collection
// using Bleve. Folded companion fields make accented names match their
// plain-ascii spellings, so "pebeo" finds Pébéo.
package search

import (
	"strconv"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
)

// PaintDocument is the indexed representation of a paint record.
// Name and brand are carried twice: raw for display and scoring, folded
// for diacritic-insensitive matching.
type PaintDocument struct {
	ID string `json:"id"`

	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Line  string `json:"line,omitempty"`
	Code  string `json:"code,omitempty"`

	NameFolded  string `json:"name_folded"`
	BrandFolded string `json:"brand_folded,omitempty"`
	BrandKey    string `json:"brand_key,omitempty"`

	Medium string   `json:"medium"`
	Status string   `json:"status"`
	Tags   []string `json:"tags,omitempty"`
	Notes  string   `json:"notes,omitempty"`
	Swatch string   `json:"swatch,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// DocID returns the index document id for a paint record id.
func DocID(paintID uint64) string {
	return strconv.FormatUint(paintID, 10)
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names as-is, but the mapping uses
// lowercase names, so the conversion is explicit.
func (d *PaintDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"name":        d.Name,
		"name_folded": d.NameFolded,
		"medium":      d.Medium,
		"status":      d.Status,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Brand != "" {
		m["brand"] = d.Brand
		m["brand_folded"] = d.BrandFolded
		m["brand_key"] = d.BrandKey
	}
	if d.Line != "" {
		m["line"] = d.Line
	}
	if d.Code != "" {
		m["code"] = d.Code
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if d.Swatch != "" {
		m["swatch"] = d.Swatch
	}

	return m
}

// PaintToDocument converts a paint record into its indexed form.
func PaintToDocument(p *domain.Paint) *PaintDocument {
	return &PaintDocument{
		ID:          DocID(p.ID),
		Name:        p.Name,
		Brand:       p.Brand,
		Line:        p.Line,
		Code:        p.Code,
		NameFolded:  normalize.Fold(p.Name),
		BrandFolded: normalize.Fold(p.Brand),
		BrandKey:    normalize.FoldKey(p.Brand),
		Medium:      string(p.Medium),
		Status:      string(p.Status),
		Tags:        p.Tags,
		Notes:       p.Notes,
		Swatch:      p.Swatch,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
}
