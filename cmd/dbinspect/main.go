package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "Swatchbook", "data", "db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	paintCount := 0
	withPhoto := 0
	withSwatch := 0
	byMedium := map[domain.MediumType]int{}
	byStatus := map[domain.OwnershipStatus]int{}

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("paint:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("paint:")); it.ValidForPrefix([]byte("paint:")); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var paint domain.Paint
				if err := json.Unmarshal(val, &paint); err != nil {
					return err
				}

				paintCount++
				byMedium[paint.Medium]++
				byStatus[paint.Status]++
				if paint.Photo != nil {
					withPhoto++
				}
				if paint.Swatch != "" {
					withSwatch++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan paints: %v", err)
	}

	fmt.Printf("Paints: %d (%d with photo, %d with swatch)\n", paintCount, withPhoto, withSwatch)
	for medium, n := range byMedium {
		fmt.Printf("  medium %-10s %d\n", medium, n)
	}
	for status, n := range byStatus {
		fmt.Printf("  status %-10s %d\n", status, n)
	}
	fmt.Println()

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("palette:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("palette:")); it.ValidForPrefix([]byte("palette:")); it.Next() {
			var palette domain.Palette
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &palette)
			})
			if err != nil {
				return err
			}

			filled := 0
			slotsPrefix := fmt.Appendf(nil, "slot:%d:", palette.ID)
			slotOpts := badger.DefaultIteratorOptions
			slotOpts.Prefix = slotsPrefix
			sit := txn.NewIterator(slotOpts)
			for sit.Seek(slotsPrefix); sit.ValidForPrefix(slotsPrefix); sit.Next() {
				var slot domain.PaletteSlot
				err := sit.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &slot)
				})
				if err != nil {
					sit.Close()
					return err
				}
				if slot.PaintID != nil {
					filled++
				}
			}
			sit.Close()

			fmt.Printf("Palette %d %q: %d/%d slots filled\n", palette.ID, palette.Name, filled, palette.Slots)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan palettes: %v", err)
	}

	fmt.Println()

	// Count index keys to catch drift between records and indexes.
	indexCount := 0
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("idx:")
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("idx:")); it.ValidForPrefix([]byte("idx:")); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, "idx:paints:") || strings.HasPrefix(key, "idx:palettes:") {
				indexCount++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan indexes: %v", err)
	}

	fmt.Printf("Index keys: %d\n", indexCount)
}
