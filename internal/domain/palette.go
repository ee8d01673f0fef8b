package domain

// Palette represents a physical paint-mixing layout with a fixed number of
// positions (wells on a porcelain palette, pans in a travel tin).
type Palette struct {
	ID    uint64 `json:"id,omitempty"`
	Name  string `json:"name"`
	Slots int    `json:"slots"` // Always >= 1
	Timestamps
}

// PalettePatch is a partial update merged onto an existing palette.
type PalettePatch struct {
	Name  *string `json:"name,omitempty"`
	Slots *int    `json:"slots,omitempty"`
}

// Apply shallow-merges the patch onto p.
func (patch *PalettePatch) Apply(p *Palette) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Slots != nil {
		p.Slots = *patch.Slots
	}
}

// PaletteSlot is one position within a palette. Identified by
// (PaletteID, Index); Index starts at 0. PaintID is nil for an empty slot.
//
// A slot may reference a paint that has since been deleted. The reference is
// weak: readers resolve it against the paint collection and treat a miss as
// an empty slot.
type PaletteSlot struct {
	PaletteID uint64  `json:"palette_id"`
	Index     int     `json:"index"`
	PaintID   *uint64 `json:"paint_id"`
	Timestamps
}
