package backup

import (
	"context"
	"fmt"
	"time"

	"encoding/json/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// FormatVersion is the snapshot format version. Increment on breaking changes.
const FormatVersion = 1

// Snapshot is the portable export document. The envelope keys keep their
// original camelCase spelling so snapshots stay interchangeable with
// earlier exports; paint records inside use the domain's snake_case fields.
type Snapshot struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Paints     []*domain.Paint `json:"paints"`

	// Skipped counts incoming entries that were not JSON objects and
	// could not become records. Parse bookkeeping, not part of the format.
	Skipped int `json:"-"`
}

// Export builds a snapshot of the full paint collection. Every field is
// carried, including inline photo bytes.
func Export(ctx context.Context, s *store.Store) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		Paints:     []*domain.Paint{},
	}

	for p, err := range s.StreamPaints(ctx) {
		if err != nil {
			return nil, fmt.Errorf("export paints: %w", err)
		}
		snap.Paints = append(snap.Paints, p)
	}

	return snap, nil
}

// ParseSnapshot decodes a snapshot document. The document must be a JSON
// object with a list under "paints"; anything else fails with
// ErrInvalidSnapshot before any record work happens. Individual records
// are decoded tolerantly: mistyped fields fall back to zero values and
// non-object entries are dropped and counted, so one corrupt record never
// sinks the run. Unknown envelope fields are ignored.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var doc struct {
		Version    any    `json:"version"`
		ExportedAt any    `json:"exportedAt"`
		Paints     *[]any `json:"paints"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if doc.Paints == nil {
		return nil, fmt.Errorf("%w: missing paints list", ErrInvalidSnapshot)
	}

	if version, ok := asID(doc.Version); ok && version > FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrVersionMismatch, version)
	}

	snap := &Snapshot{
		Version: FormatVersion,
		Paints:  []*domain.Paint{},
	}
	if exportedAt := asTime(doc.ExportedAt); !exportedAt.IsZero() {
		snap.ExportedAt = exportedAt
	}

	for _, entry := range *doc.Paints {
		fields, ok := entry.(map[string]any)
		if !ok {
			snap.Skipped++
			continue
		}
		snap.Paints = append(snap.Paints, decodeRecord(fields))
	}

	return snap, nil
}
