package domain

// MediumType describes what kind of paint a record is.
type MediumType string

// Supported paint mediums.
const (
	MediumWatercolor MediumType = "watercolor"
	MediumAcrylic    MediumType = "acrylic"
	MediumGouache    MediumType = "gouache"
	MediumOil        MediumType = "oil"
	MediumInk        MediumType = "ink"
	MediumOther      MediumType = "other"
)

// Valid reports whether m is one of the supported mediums.
func (m MediumType) Valid() bool {
	switch m {
	case MediumWatercolor, MediumAcrylic, MediumGouache, MediumOil, MediumInk, MediumOther:
		return true
	}
	return false
}

// OwnershipStatus tracks whether a paint is in the collection, used up, or wanted.
type OwnershipStatus string

// Ownership states.
const (
	StatusOwned    OwnershipStatus = "owned"
	StatusEmpty    OwnershipStatus = "empty"
	StatusWishlist OwnershipStatus = "wishlist"
)

// Valid reports whether s is one of the supported statuses.
func (s OwnershipStatus) Valid() bool {
	switch s {
	case StatusOwned, StatusEmpty, StatusWishlist:
		return true
	}
	return false
}

// PaintPhoto is a re-encoded photo stored inline on a paint record.
// Data holds the bounded JPEG produced by the image processor; the
// original upload is not retained.
type PaintPhoto struct {
	Data     []byte `json:"data,omitempty"`
	Filename string `json:"filename,omitempty"` // Original upload name, display only
	MimeType string `json:"mime_type,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"` // Compact placeholder for progressive loading
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Paint is a single physical paint product: a tube, pan, or bottle that is
// owned, used up, or on the wishlist.
type Paint struct {
	ID     uint64          `json:"id,omitempty"` // Auto-assigned, immutable once set; 0 = unassigned
	Brand  string          `json:"brand,omitempty"`
	Line   string          `json:"line,omitempty"` // Product line within a brand, e.g. "Artists' Watercolour"
	Name   string          `json:"name"`
	Code   string          `json:"code,omitempty"` // Manufacturer product code
	Medium MediumType      `json:"medium"`
	Status OwnershipStatus `json:"status"`
	Tags   []string        `json:"tags,omitempty"`
	Notes  string          `json:"notes,omitempty"`
	Swatch string          `json:"swatch,omitempty"` // Normalized #RRGGBB hex or empty
	Photo  *PaintPhoto     `json:"photo,omitempty"`
	Timestamps
}

// PaintPatch is a partial update merged onto an existing paint.
// Nil fields are left untouched; the record id never changes.
type PaintPatch struct {
	Brand       *string          `json:"brand,omitempty"`
	Line        *string          `json:"line,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Code        *string          `json:"code,omitempty"`
	Medium      *MediumType      `json:"medium,omitempty"`
	Status      *OwnershipStatus `json:"status,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	Swatch      *string          `json:"swatch,omitempty"`
	Photo       *PaintPhoto      `json:"photo,omitempty"`
	RemovePhoto bool             `json:"remove_photo,omitempty"`
}

// Apply shallow-merges the patch onto p. The id and CreatedAt are never
// touched; the caller stamps UpdatedAt.
func (patch *PaintPatch) Apply(p *Paint) {
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Line != nil {
		p.Line = *patch.Line
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Medium != nil {
		p.Medium = *patch.Medium
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.Swatch != nil {
		p.Swatch = *patch.Swatch
	}
	if patch.RemovePhoto {
		p.Photo = nil
	} else if patch.Photo != nil {
		p.Photo = patch.Photo
	}
}

// HasSwatch reports whether the paint carries a color swatch.
func (p *Paint) HasSwatch() bool {
	return p.Swatch != ""
}

// DisplayName returns the name prefixed with the brand when one is set,
// e.g. "Winsor & Newton French Ultramarine". Used in logs and seeds.
func (p *Paint) DisplayName() string {
	if p.Brand == "" {
		return p.Name
	}
	return p.Brand + " " + p.Name
}
