package store

import (
	"errors"
	"fmt"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"
)

// Record ids come from per-collection counters stored as plain keys rather
// than badger.Sequence. Sequences hand out ids outside the transaction, so a
// failed write would burn ids and an import could not reconcile explicit ids
// against the counter atomically. A counter key read and written inside the
// record's own transaction gives both.
const (
	paintSeqKey   = "seq:paints"
	paletteSeqKey = "seq:palettes"
)

// nextSequence increments the counter and returns the new id. Must run in
// the same transaction as the record write so the assignment commits with it.
func nextSequence(txn *badger.Txn, key string) (uint64, error) {
	last, err := readSequence(txn, key)
	if err != nil {
		return 0, err
	}

	next := last + 1
	if err := txn.Set([]byte(key), []byte(strconv.FormatUint(next, 10))); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key, err)
	}

	return next, nil
}

// advanceSequence raises the counter to at least id. Used when a record
// arrives with an explicit id, so later auto-assigned ids never collide.
func advanceSequence(txn *badger.Txn, key string, id uint64) error {
	last, err := readSequence(txn, key)
	if err != nil {
		return err
	}
	if id <= last {
		return nil
	}
	return txn.Set([]byte(key), []byte(strconv.FormatUint(id, 10)))
}

func readSequence(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", key, err)
	}

	var last uint64
	err = item.Value(func(val []byte) error {
		parsed, perr := strconv.ParseUint(string(val), 10, 64)
		if perr != nil {
			return fmt.Errorf("corrupt sequence value for %s: %w", key, perr)
		}
		last = parsed
		return nil
	})
	return last, err
}
