package backup

import (
	"encoding/base64"
	"math"
	"time"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// decodeRecord maps one snapshot entry onto a Paint, field by field.
// A mistyped field becomes its zero value rather than failing the record;
// value-level cleanup (hex, enums, timestamp defaults) happens later in
// normalize.SanitizePaint.
func decodeRecord(fields map[string]any) *domain.Paint {
	p := &domain.Paint{
		Brand:  asString(fields["brand"]),
		Line:   asString(fields["line"]),
		Name:   asString(fields["name"]),
		Code:   asString(fields["code"]),
		Medium: domain.MediumType(asString(fields["medium"])),
		Status: domain.OwnershipStatus(asString(fields["status"])),
		Tags:   asStringList(fields["tags"]),
		Notes:  asString(fields["notes"]),
		Swatch: asString(fields["swatch"]),
	}

	if id, ok := asID(fields["id"]); ok {
		p.ID = id
	}
	p.CreatedAt = asTime(fields["created_at"])
	p.UpdatedAt = asTime(fields["updated_at"])
	p.Photo = asPhoto(fields["photo"])

	return p
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asID accepts the JSON number form of a record id. Fractional or
// non-positive values do not count as ids, nor do values past the exact
// integer range of a float64.
func asID(v any) (uint64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if f < 1 || f != math.Trunc(f) || f > 1<<53 {
		return 0, false
	}
	return uint64(f), true
}

func asInt(v any) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}

// asStringList keeps the string elements of a list and drops the rest.
// Anything that is not a list becomes nil.
func asStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// asPhoto rebuilds an inline photo. The data field carries base64 bytes
// (the standard JSON encoding for byte slices); a photo that does not
// decode is dropped rather than imported broken.
func asPhoto(v any) *domain.PaintPhoto {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	encoded, ok := fields["data"].(string)
	if !ok || encoded == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil
	}

	return &domain.PaintPhoto{
		Data:     data,
		Filename: asString(fields["filename"]),
		MimeType: asString(fields["mime_type"]),
		BlurHash: asString(fields["blur_hash"]),
		Width:    asInt(fields["width"]),
		Height:   asInt(fields["height"]),
	}
}
