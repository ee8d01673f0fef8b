package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
)

// SetSlotPaint upserts the slot record at (paletteID, index). The composite
// key deduplicates repeated writes to the same position. A nil paintID
// stores an empty-but-tracked slot, which renders the same as an absent
// record. Existing slots keep their CreatedAt.
func (s *Store) SetSlotPaint(paletteID uint64, index int, paintID *uint64) (*domain.PaletteSlot, error) {
	slot := &domain.PaletteSlot{
		PaletteID: paletteID,
		Index:     index,
		PaintID:   paintID,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var existing domain.PaletteSlot
		err := getTxn(txn, slotKey(paletteID, index), &existing)
		switch {
		case err == nil:
			slot.CreatedAt = existing.CreatedAt
			slot.Touch()
		case errors.Is(err, badger.ErrKeyNotFound):
			slot.InitTimestamps()
		default:
			return err
		}

		return setTxn(txn, slotKey(paletteID, index), slot)
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewSlotUpdatedEvent(slot))
	return slot, nil
}

// ListPaletteSlots returns every slot record for a palette in ascending
// index order. Keys use decimal indexes, so ordering happens after the
// scan rather than relying on byte order.
func (s *Store) ListPaletteSlots(paletteID uint64) ([]*domain.PaletteSlot, error) {
	var slots []*domain.PaletteSlot
	for slot, err := range streamEntities[domain.PaletteSlot](s.db, slotScanPrefix(paletteID)) {
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots, nil
}

// TrimSlotsBeyond deletes every slot record for the palette whose index is
// maxSlots or higher, in one transaction. Called after a palette's slot
// count shrinks so stale positions do not linger. A maxSlots of zero or
// below removes every slot.
func (s *Store) TrimSlotsBeyond(paletteID uint64, maxSlots int) (int, error) {
	prefix := slotScanPrefix(paletteID)
	removed := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var doomed [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			index, err := strconv.Atoi(string(key[len(prefix):]))
			if err != nil {
				it.Close()
				return fmt.Errorf("corrupt slot key %q: %w", key, err)
			}
			if index >= maxSlots {
				doomed = append(doomed, key)
			}
		}
		it.Close()

		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to trim slot: %w", err)
			}
		}
		removed = len(doomed)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 && s.logger != nil {
		s.logger.Debug("trimmed palette slots",
			slog.Uint64("palette_id", paletteID),
			slog.Int("max_slots", maxSlots),
			slog.Int("removed", removed))
	}
	return removed, nil
}
