package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
)

// paintIndexKeys returns every secondary index key for a paint. Name and
// brand are folded so lookups survive accents and casing; status and the
// two timestamp indexes use their values as-is.
func paintIndexKeys(p *domain.Paint) [][]byte {
	return [][]byte{
		formatTimestampIndexKey(paintByUpdatedPrefix, p.UpdatedAt, p.ID),
		formatTimestampIndexKey(paintByCreatedPrefix, p.CreatedAt, p.ID),
		fmt.Appendf(nil, "%s%s:%d", paintByNamePrefix, normalize.FoldKey(p.Name), p.ID),
		fmt.Appendf(nil, "%s%s:%d", paintByBrandPrefix, normalize.FoldKey(p.Brand), p.ID),
		fmt.Appendf(nil, "%s%s:%d", paintByStatusPrefix, p.Status, p.ID),
	}
}

func writePaintTxn(txn *badger.Txn, p *domain.Paint) error {
	if err := setTxn(txn, paintKey(p.ID), p); err != nil {
		return err
	}
	idValue := []byte(formatID(p.ID))
	for _, key := range paintIndexKeys(p) {
		if err := txn.Set(key, idValue); err != nil {
			return fmt.Errorf("failed to write paint index: %w", err)
		}
	}
	return nil
}

func deletePaintIndexesTxn(txn *badger.Txn, p *domain.Paint) error {
	for _, key := range paintIndexKeys(p) {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete paint index: %w", err)
		}
	}
	return nil
}

// createPaintTxn assigns an id if the paint has none, reconciles the
// sequence when it does, and writes the record plus its indexes.
func createPaintTxn(txn *badger.Txn, p *domain.Paint) error {
	if p.ID == 0 {
		id, err := nextSequence(txn, paintSeqKey)
		if err != nil {
			return err
		}
		p.ID = id
	} else {
		_, err := txn.Get(paintKey(p.ID))
		if err == nil {
			return ErrPaintExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check paint existence: %w", err)
		}
		if err := advanceSequence(txn, paintSeqKey, p.ID); err != nil {
			return err
		}
	}

	p.EnsureTimestamps()
	return writePaintTxn(txn, p)
}

// CreatePaint stores a new paint. A zero id gets the next sequence value;
// an explicit id fails with ErrPaintExists when already taken.
func (s *Store) CreatePaint(p *domain.Paint) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return createPaintTxn(txn, p)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("paint created",
			slog.Uint64("id", p.ID),
			slog.String("name", p.Name),
			slog.String("brand", p.Brand))
	}
	s.emit(sse.NewPaintCreatedEvent(p))
	return nil
}

// GetPaint retrieves a paint by id.
func (s *Store) GetPaint(id uint64) (*domain.Paint, error) {
	var p domain.Paint
	if err := s.get(paintKey(id), &p); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrPaintNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPaints returns every paint sorted by id.
func (s *Store) ListPaints() ([]*domain.Paint, error) {
	var paints []*domain.Paint
	for p, err := range streamEntities[domain.Paint](s.db, []byte(paintPrefix)) {
		if err != nil {
			return nil, err
		}
		paints = append(paints, p)
	}

	sort.Slice(paints, func(i, j int) bool { return paints[i].ID < paints[j].ID })
	return paints, nil
}

// ListPaintsByStatus returns paints with the given ownership status, in id
// order within the index scan.
func (s *Store) ListPaintsByStatus(status domain.OwnershipStatus) ([]*domain.Paint, error) {
	prefix := fmt.Appendf(nil, "%s%s:", paintByStatusPrefix, status)
	return s.paintsByIndexPrefix(prefix, false, 0)
}

// ListPaintsByBrand returns paints whose folded brand matches the folded
// query, so "Pébéo" and "pebeo" hit the same entries.
func (s *Store) ListPaintsByBrand(brand string) ([]*domain.Paint, error) {
	prefix := fmt.Appendf(nil, "%s%s:", paintByBrandPrefix, normalize.FoldKey(brand))
	return s.paintsByIndexPrefix(prefix, false, 0)
}

// ListRecentPaints returns up to limit paints, most recently updated first.
func (s *Store) ListRecentPaints(limit int) ([]*domain.Paint, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.paintsByIndexPrefix([]byte(paintByUpdatedPrefix), true, limit)
}

// paintsByIndexPrefix resolves index entries under prefix to their records.
// Entries whose record vanished are skipped rather than failing the scan.
func (s *Store) paintsByIndexPrefix(prefix []byte, reverse bool, limit int) ([]*domain.Paint, error) {
	var paints []*domain.Paint
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = reverse
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if reverse {
			seek = append(append([]byte{}, prefix...), 0xFF)
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(paints) >= limit {
				break
			}

			var id uint64
			err := it.Item().Value(func(val []byte) error {
				parsed, perr := parseID(string(val))
				if perr != nil {
					return fmt.Errorf("corrupt index value %q: %w", val, perr)
				}
				id = parsed
				return nil
			})
			if err != nil {
				return err
			}

			var p domain.Paint
			if err := getTxn(txn, paintKey(id), &p); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			paints = append(paints, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paints, nil
}

// UpdatePaint applies a patch to an existing paint. Returns the updated
// record and true, or nil and false when the id is unknown; a missing
// paint is not an error so racing deletes stay quiet.
func (s *Store) UpdatePaint(id uint64, patch *domain.PaintPatch) (*domain.Paint, bool, error) {
	var updated *domain.Paint
	err := s.db.Update(func(txn *badger.Txn) error {
		var p domain.Paint
		if err := getTxn(txn, paintKey(id), &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		// Indexes are keyed by field values, so drop the old entries
		// before the patch rewrites them.
		if err := deletePaintIndexesTxn(txn, &p); err != nil {
			return err
		}

		patch.Apply(&p)
		p.Touch()

		if err := writePaintTxn(txn, &p); err != nil {
			return err
		}
		updated = &p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if updated == nil {
		return nil, false, nil
	}

	if s.logger != nil {
		s.logger.Debug("paint updated", slog.Uint64("id", id))
	}
	s.emit(sse.NewPaintUpdatedEvent(updated))
	return updated, true, nil
}

// DeletePaint removes a paint and its index entries. Deleting an unknown id
// is a no-op; palette slots that referenced the paint keep their value and
// resolve as dangling until reassigned.
func (s *Store) DeletePaint(id uint64) (bool, error) {
	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var p domain.Paint
		if err := getTxn(txn, paintKey(id), &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		if err := deletePaintIndexesTxn(txn, &p); err != nil {
			return err
		}
		if err := txn.Delete(paintKey(id)); err != nil {
			return fmt.Errorf("failed to delete paint: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if s.logger != nil {
		s.logger.Info("paint deleted", slog.Uint64("id", id))
	}
	s.emit(sse.NewPaintDeletedEvent(id))
	return true, nil
}

// CountPaints returns the number of stored paints without loading values.
func (s *Store) CountPaints() (int, error) {
	count := 0
	prefix := []byte(paintPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
