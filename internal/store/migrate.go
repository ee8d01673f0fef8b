package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"encoding/json/v2"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// Schema versioning. Badger itself is schemaless, so the registry under
// schema: records which collections and indexes exist. Each migration step
// runs once, in its own transaction, and bumps schema:version; reopening
// an up-to-date database is a version check and nothing else.
const (
	schemaVersionKey = "schema:version"
	schemaVersion    = 2
)

type migration struct {
	version int
	name    string
	run     func(txn *badger.Txn) error
}

func (s *Store) migrations() []migration {
	return []migration{
		{1, "paints collection and indexes", migratePaintsTxn},
		{2, "palettes and slots collections", migratePalettesTxn},
	}
}

func (s *Store) migrate() error {
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if current > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, schemaVersion)
	}

	for _, m := range s.migrations() {
		if m.version <= current {
			continue
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			if err := m.run(txn); err != nil {
				return err
			}
			return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(m.version)))
		})
		if err != nil {
			return fmt.Errorf("schema migration %d (%s) failed: %w", m.version, m.name, err)
		}

		if s.logger != nil {
			s.logger.Info("schema migrated",
				slog.Int("version", m.version),
				slog.String("step", m.name))
		}
	}

	return nil
}

// SchemaVersion reports the current schema version, zero for a fresh
// database.
func (s *Store) SchemaVersion() (int, error) {
	version := 0
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaVersionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, perr := strconv.Atoi(string(val))
			if perr != nil {
				return fmt.Errorf("corrupt schema version %q: %w", val, perr)
			}
			version = parsed
			return nil
		})
	})
	return version, err
}

// migratePaintsTxn registers the paint collection and its five indexes.
// When an index is new, index keys are rebuilt from whatever records are
// already present, so data written before the schema existed stays
// queryable.
func migratePaintsTxn(txn *badger.Txn) error {
	if _, err := registerCollectionTxn(txn, "paints"); err != nil {
		return err
	}

	backfill := false
	for _, name := range []string{"updated", "created", "name", "brand", "status"} {
		created, err := registerIndexTxn(txn, "paints", name)
		if err != nil {
			return err
		}
		if created {
			backfill = true
		}
	}
	if !backfill {
		return nil
	}

	return forEachRecord(txn, []byte(paintPrefix), func(val []byte) error {
		var p domain.Paint
		if err := json.Unmarshal(val, &p); err != nil {
			return fmt.Errorf("corrupt paint record during backfill: %w", err)
		}
		idValue := []byte(formatID(p.ID))
		for _, key := range paintIndexKeys(&p) {
			if err := txn.Set(key, idValue); err != nil {
				return err
			}
		}
		return advanceSequence(txn, paintSeqKey, p.ID)
	})
}

// migratePalettesTxn registers the palette and slot collections plus the
// palette timestamp indexes, backfilling like migratePaintsTxn. Slots need
// no index entries; their composite key is the index.
func migratePalettesTxn(txn *badger.Txn) error {
	if _, err := registerCollectionTxn(txn, "palettes"); err != nil {
		return err
	}
	if _, err := registerCollectionTxn(txn, "palette_slots"); err != nil {
		return err
	}

	backfill := false
	for _, name := range []string{"updated", "created"} {
		created, err := registerIndexTxn(txn, "palettes", name)
		if err != nil {
			return err
		}
		if created {
			backfill = true
		}
	}
	if !backfill {
		return nil
	}

	return forEachRecord(txn, []byte(palettePrefix), func(val []byte) error {
		var p domain.Palette
		if err := json.Unmarshal(val, &p); err != nil {
			return fmt.Errorf("corrupt palette record during backfill: %w", err)
		}
		idValue := []byte(formatID(p.ID))
		for _, key := range paletteIndexKeys(&p) {
			if err := txn.Set(key, idValue); err != nil {
				return err
			}
		}
		return advanceSequence(txn, paletteSeqKey, p.ID)
	})
}

// registerCollectionTxn marks a collection as present. Returns true when
// this call created the marker.
func registerCollectionTxn(txn *badger.Txn, name string) (bool, error) {
	key := fmt.Appendf(nil, "schema:collection:%s", name)
	_, err := txn.Get(key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}
	return true, txn.Set(key, []byte("1"))
}

// registerIndexTxn marks an index as present for a collection. Returns
// true when this call created the marker.
func registerIndexTxn(txn *badger.Txn, collection, name string) (bool, error) {
	key := fmt.Appendf(nil, "schema:index:%s:%s", collection, name)
	_, err := txn.Get(key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}
	return true, txn.Set(key, []byte("1"))
}

// forEachRecord walks every value under prefix within the caller's
// transaction. Values are copied out before fn runs so fn is free to write
// through the same transaction.
func forEachRecord(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(val); err != nil {
			return err
		}
	}
	return nil
}
