package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/swatchbookapp/swatchbook-server/internal/backup"
	domainerrors "github.com/swatchbookapp/swatchbook-server/internal/errors"
	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// Import modes.
const (
	ImportModeMerge   = "merge"
	ImportModeReplace = "replace"
)

// SnapshotService handles whole-collection export and import.
type SnapshotService struct {
	store  *store.Store
	search *SearchService
	logger *slog.Logger
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(st *store.Store, search *SearchService, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{
		store:  st,
		search: search,
		logger: logger,
	}
}

// Export builds a snapshot of the full paint collection, photos included.
func (s *SnapshotService) Export(ctx context.Context) (*backup.Snapshot, error) {
	return backup.Export(ctx, s.store)
}

// Import parses and applies a snapshot document. Replace mode wipes the
// collection first and demands an explicit confirmation from the caller;
// merge upserts records by id and auto-assigns the rest. Each record is
// sanitized in isolation, so one corrupt entry never aborts the run. On
// success the search index is rebuilt from the store.
func (s *SnapshotService) Import(ctx context.Context, data []byte, mode string, confirm bool) (*store.ImportStats, error) {
	replace := false
	switch mode {
	case ImportModeMerge, "":
	case ImportModeReplace:
		if !confirm {
			return nil, domainerrors.InvalidInput("replace import wipes the collection; set confirm to proceed")
		}
		replace = true
	default:
		return nil, domainerrors.InvalidInputf("unknown import mode %q", mode)
	}

	snap, err := backup.ParseSnapshot(data)
	if errors.Is(err, backup.ErrVersionMismatch) {
		return nil, domainerrors.InvalidInput("snapshot was exported by a newer version").WithCause(err)
	}
	if errors.Is(err, backup.ErrInvalidSnapshot) {
		return nil, domainerrors.InvalidInput("not a valid snapshot document").WithCause(err)
	}
	if err != nil {
		return nil, err
	}

	if snap.Skipped > 0 {
		s.logger.Warn("snapshot contained malformed entries", "skipped", snap.Skipped)
	}

	for _, p := range snap.Paints {
		normalize.SanitizePaint(p)
	}

	stats, err := s.store.ImportPaints(snap.Paints, replace)
	if err != nil {
		return nil, err
	}

	if err := s.search.ReindexAll(ctx); err != nil {
		s.logger.Warn("failed to rebuild search index after import", "error", err)
	}

	return stats, nil
}
