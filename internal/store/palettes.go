package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
)

func paletteIndexKeys(p *domain.Palette) [][]byte {
	return [][]byte{
		formatTimestampIndexKey(paletteByUpdatedPrefix, p.UpdatedAt, p.ID),
		formatTimestampIndexKey(paletteByCreatedPrefix, p.CreatedAt, p.ID),
	}
}

func writePaletteTxn(txn *badger.Txn, p *domain.Palette) error {
	if err := setTxn(txn, paletteKey(p.ID), p); err != nil {
		return err
	}
	idValue := []byte(formatID(p.ID))
	for _, key := range paletteIndexKeys(p) {
		if err := txn.Set(key, idValue); err != nil {
			return fmt.Errorf("failed to write palette index: %w", err)
		}
	}
	return nil
}

func deletePaletteIndexesTxn(txn *badger.Txn, p *domain.Palette) error {
	for _, key := range paletteIndexKeys(p) {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete palette index: %w", err)
		}
	}
	return nil
}

// CreatePalette stores a new palette. A blank name falls back to
// "New Palette" and the slot count is clamped to at least 1.
func (s *Store) CreatePalette(p *domain.Palette) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = "New Palette"
	}
	if p.Slots < 1 {
		p.Slots = 1
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if p.ID == 0 {
			id, err := nextSequence(txn, paletteSeqKey)
			if err != nil {
				return err
			}
			p.ID = id
		} else {
			_, err := txn.Get(paletteKey(p.ID))
			if err == nil {
				return ErrPaletteExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check palette existence: %w", err)
			}
			if err := advanceSequence(txn, paletteSeqKey, p.ID); err != nil {
				return err
			}
		}

		p.EnsureTimestamps()
		return writePaletteTxn(txn, p)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("palette created",
			slog.Uint64("id", p.ID),
			slog.String("name", p.Name),
			slog.Int("slots", p.Slots))
	}
	s.emit(sse.NewPaletteCreatedEvent(p))
	return nil
}

// GetPalette retrieves a palette by id.
func (s *Store) GetPalette(id uint64) (*domain.Palette, error) {
	var p domain.Palette
	if err := s.get(paletteKey(id), &p); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrPaletteNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPalettes returns every palette sorted by id.
func (s *Store) ListPalettes() ([]*domain.Palette, error) {
	var palettes []*domain.Palette
	for p, err := range streamEntities[domain.Palette](s.db, []byte(palettePrefix)) {
		if err != nil {
			return nil, err
		}
		palettes = append(palettes, p)
	}

	sort.Slice(palettes, func(i, j int) bool { return palettes[i].ID < palettes[j].ID })
	return palettes, nil
}

// UpdatePalette applies a patch to an existing palette, with the same
// benign-miss contract as UpdatePaint. A patched slot count is clamped to
// at least 1. Trimming slot records beyond a reduced count is the caller's
// follow-up via TrimSlotsBeyond.
func (s *Store) UpdatePalette(id uint64, patch *domain.PalettePatch) (*domain.Palette, bool, error) {
	var updated *domain.Palette
	err := s.db.Update(func(txn *badger.Txn) error {
		var p domain.Palette
		if err := getTxn(txn, paletteKey(id), &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		if err := deletePaletteIndexesTxn(txn, &p); err != nil {
			return err
		}

		patch.Apply(&p)
		if p.Slots < 1 {
			p.Slots = 1
		}
		p.Touch()

		if err := writePaletteTxn(txn, &p); err != nil {
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
		s.logger.Debug("palette updated", slog.Uint64("id", id))
	}
	s.emit(sse.NewPaletteUpdatedEvent(updated))
	return updated, true, nil
}

// DeletePalette removes the palette record, then sweeps every slot
// belonging to it in a second transaction. The sweep is not atomic with
// the record delete; a crash between the two leaves orphan slots. The
// sweep runs even when the palette record was already gone, so orphans
// from such a crash are still collected on the next delete.
func (s *Store) DeletePalette(id uint64) (bool, error) {
	found := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var p domain.Palette
		if err := getTxn(txn, paletteKey(id), &p); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		if err := deletePaletteIndexesTxn(txn, &p); err != nil {
			return err
		}
		if err := txn.Delete(paletteKey(id)); err != nil {
			return fmt.Errorf("failed to delete palette: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}

	var removed int
	err = s.db.Update(func(txn *badger.Txn) error {
		n, err := deleteByPrefix(txn, slotScanPrefix(id))
		removed = n
		return err
	})
	if err != nil {
		return found, fmt.Errorf("failed to sweep palette slots: %w", err)
	}

	if !found && removed == 0 {
		return false, nil
	}

	if s.logger != nil {
		s.logger.Info("palette deleted",
			slog.Uint64("id", id),
			slog.Int("slots_removed", removed))
	}
	s.emit(sse.NewPaletteDeletedEvent(id, removed))
	return found, nil
}
