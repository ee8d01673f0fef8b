package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"encoding/json/v2"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
)

// ImportStats summarizes one import run.
type ImportStats struct {
	Mode     string `json:"mode"`
	Added    int    `json:"added"`
	Upserted int    `json:"upserted"`
	Removed  int    `json:"removed"`
}

// StreamPaints returns an iterator over all paints for snapshot export,
// honoring ctx cancellation between records.
func (s *Store) StreamPaints(ctx context.Context) iter.Seq2[*domain.Paint, error] {
	return func(yield func(*domain.Paint, error) bool) {
		for p, err := range streamEntities[domain.Paint](s.db, []byte(paintPrefix)) {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			if !yield(p, err) {
				return
			}
		}
	}
}

// streamEntities is a generic streaming iterator for any record type.
// Index keys live in their own top-level idx: namespace, so a record
// prefix scan only ever sees records.
func streamEntities[T any](db *badger.DB, prefix []byte) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})

				if err != nil {
					if !yield(nil, err) {
						return nil
					}
					continue
				}

				if !yield(&entity, nil) {
					return nil
				}
			}

			return nil
		})
	}
}

// ClearPaints wipes the paint collection and its indexes. The id sequence
// is left alone, so paints added afterwards keep counting upward.
func (s *Store) ClearPaints() (int, error) {
	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		n, err := clearPaintsTxn(txn)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info("paints cleared", slog.Int("removed", removed))
	}
	s.emit(sse.NewPaintsClearedEvent(removed))
	return removed, nil
}

// clearPaintsTxn removes every paint record and index key within the
// caller's transaction, returning the number of records removed.
func clearPaintsTxn(txn *badger.Txn) (int, error) {
	removed, err := deleteByPrefix(txn, []byte(paintPrefix))
	if err != nil {
		return 0, err
	}

	indexPrefixes := []string{
		paintByUpdatedPrefix,
		paintByCreatedPrefix,
		paintByNamePrefix,
		paintByBrandPrefix,
		paintByStatusPrefix,
	}
	for _, prefix := range indexPrefixes {
		if _, err := deleteByPrefix(txn, []byte(prefix)); err != nil {
			return 0, err
		}
	}

	return removed, nil
}

// ImportPaints runs a whole import in one transaction, so a failure part
// way through leaves the collection untouched. Replace mode wipes the
// collection first; records carrying an id are written under that id
// (overwriting in merge mode), records without get the next sequence
// value. Callers sanitize records before handing them over.
func (s *Store) ImportPaints(paints []*domain.Paint, replace bool) (*ImportStats, error) {
	stats := &ImportStats{Mode: "merge"}
	if replace {
		stats.Mode = "replace"
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if replace {
			removed, err := clearPaintsTxn(txn)
			if err != nil {
				return err
			}
			stats.Removed = removed
		}

		for _, p := range paints {
			if p.ID == 0 {
				if err := createPaintTxn(txn, p); err != nil {
					return err
				}
				stats.Added++
				continue
			}

			overwrote, err := putPaintTxn(txn, p)
			if err != nil {
				return err
			}
			if overwrote {
				stats.Upserted++
			} else {
				stats.Added++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("paints imported",
			slog.String("mode", stats.Mode),
			slog.Int("added", stats.Added),
			slog.Int("upserted", stats.Upserted),
			slog.Int("removed", stats.Removed))
	}
	s.emit(sse.NewPaintsImportedEvent(stats.Mode, stats.Added, stats.Upserted, stats.Removed))
	return stats, nil
}

// putPaintTxn writes a paint under its explicit id, replacing any existing
// record and its index entries. Import semantics: incoming ids win.
func putPaintTxn(txn *badger.Txn, p *domain.Paint) (bool, error) {
	overwrote := false

	var existing domain.Paint
	err := getTxn(txn, paintKey(p.ID), &existing)
	switch {
	case err == nil:
		if err := deletePaintIndexesTxn(txn, &existing); err != nil {
			return false, err
		}
		overwrote = true
	case errors.Is(err, badger.ErrKeyNotFound):
	default:
		return false, err
	}

	if err := advanceSequence(txn, paintSeqKey, p.ID); err != nil {
		return false, err
	}

	p.EnsureTimestamps()
	if err := writePaintTxn(txn, p); err != nil {
		return false, err
	}
	return overwrote, nil
}

// deleteByPrefix removes every key under prefix within the caller's
// transaction and reports how many went.
func deleteByPrefix(txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		if err := txn.Delete(key); err != nil {
			return count, fmt.Errorf("failed to delete key %q: %w", key, err)
		}
		count++
	}

	return count, nil
}
