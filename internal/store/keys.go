package store

import (
	"fmt"
	"strconv"
)

// Key layout. Records live under per-collection prefixes with decimal ids;
// secondary index keys live under idx: with the record id as the final
// segment and again as the value. Slots need no separate index because the
// composite primary key is prefix-scannable by palette.
const (
	paintPrefix   = "paint:"
	palettePrefix = "palette:"
	slotPrefix    = "slot:"

	paintByUpdatedPrefix = "idx:paints:updated:"
	paintByCreatedPrefix = "idx:paints:created:"
	paintByNamePrefix    = "idx:paints:name:"
	paintByBrandPrefix   = "idx:paints:brand:"
	paintByStatusPrefix  = "idx:paints:status:"

	paletteByUpdatedPrefix = "idx:palettes:updated:"
	paletteByCreatedPrefix = "idx:palettes:created:"
)

func paintKey(id uint64) []byte {
	return fmt.Appendf(nil, "%s%d", paintPrefix, id)
}

func paletteKey(id uint64) []byte {
	return fmt.Appendf(nil, "%s%d", palettePrefix, id)
}

func slotKey(paletteID uint64, index int) []byte {
	return fmt.Appendf(nil, "%s%d:%d", slotPrefix, paletteID, index)
}

// slotScanPrefix returns the prefix covering every slot of one palette.
// The trailing colon keeps palette 1 from matching palette 12.
func slotScanPrefix(paletteID uint64) []byte {
	return fmt.Appendf(nil, "%s%d:", slotPrefix, paletteID)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
