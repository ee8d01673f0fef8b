package store

import (
	"fmt"
	"time"
)

// formatTimestampIndexKey creates a sortable timestamp index key.
// Keys use fixed-width RFC3339 with zero-padded nanoseconds so that
// lexicographic order matches chronological order:
//
//	{prefix}{YYYY-MM-DDTHH:MM:SS.NNNNNNNNNZ}:{id}
//
// The id suffix keeps keys unique when two records share a timestamp.
func formatTimestampIndexKey(prefix string, timestamp time.Time, id uint64) []byte {
	ts := timestamp.UTC().Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", timestamp.Nanosecond()) + "Z"
	return fmt.Appendf(nil, "%s%s:%d", prefix, ts, id)
}
