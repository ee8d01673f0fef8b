// Package normalize provides utilities for normalizing and sanitizing
// paint record data at the form and import boundaries.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// ErrInvalidHex is returned when a color input is neither empty nor a
// six-digit hex color. Callers at the form boundary surface it to the user;
// the import path blanks the field instead.
var ErrInvalidHex = errors.New("invalid hex color")

var (
	// Matches exactly six hex digits.
	hexDigits = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
	// Matches runs of whitespace.
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches characters that cannot appear in an index key segment.
	nonKeySafeRe = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// Hex normalizes a color swatch input to canonical form.
//
// Rules:
//  1. Surrounding whitespace is trimmed
//  2. Empty input stays empty (a paint without a swatch is fine)
//  3. A leading "#" is optional on input
//  4. Exactly six hex digits are required
//  5. Output is uppercase with a leading "#"
//
// Examples:
//
//	"1a2b3c"  → "#1A2B3C"
//	"#1a2b3c" → "#1A2B3C"
//	""        → ""
//	"zzzzzz"  → ErrInvalidHex
func Hex(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", nil
	}

	s = strings.TrimPrefix(s, "#")
	if !hexDigits.MatchString(s) {
		return "", ErrInvalidHex
	}

	return "#" + strings.ToUpper(s), nil
}

// Tags cleans a tag list: each element is trimmed and empties are dropped.
// Order is preserved and duplicates are allowed; tag identity is the
// caller's business.
func Tags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Fold lowercases s and strips diacritics so that searches for "pebeo"
// match "Pébéo". Non-alphanumeric runs collapse to single spaces.
func Fold(s string) string {
	// Decompose accented characters, then drop the combining marks and
	// anything else outside ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonKeySafeRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// FoldKey folds s into a form safe for use as an index key segment:
// folded as by Fold, with spaces replaced by dashes.
//
//	"Pébéo"           → "pebeo"
//	"Winsor & Newton" → "winsor-newton"
func FoldKey(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "-")
}

// SanitizePaint defaults and cleans every field of an imported paint record
// independently, so one corrupt record never poisons a batch:
//
//   - invalid swatch hex is blanked, valid hex is normalized
//   - tags are trimmed and filtered of empties
//   - unknown medium falls back to "other", unknown status to "owned"
//   - missing timestamps default to now
//   - a photo husk without image bytes is dropped
//
// Text fields are trimmed of surrounding whitespace. The id is left alone;
// import mode decides what ids mean.
func SanitizePaint(p *domain.Paint) {
	p.Brand = strings.TrimSpace(p.Brand)
	p.Line = strings.TrimSpace(p.Line)
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)

	hex, err := Hex(p.Swatch)
	if err != nil {
		hex = ""
	}
	p.Swatch = hex

	p.Tags = Tags(p.Tags)

	if !p.Medium.Valid() {
		p.Medium = domain.MediumOther
	}
	if !p.Status.Valid() {
		p.Status = domain.StatusOwned
	}

	if p.Photo != nil && len(p.Photo.Data) == 0 {
		p.Photo = nil
	}

	p.EnsureTimestamps()
}
