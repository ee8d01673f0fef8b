// Package sse implements Server-Sent Events for pushing inventory changes
// to connected clients.
package sse

import (
	"time"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// Swatchbook is a single-user tool, so every event is broadcast to every
// connected client. There is no per-client filtering.

// EventType represents the type of SSE event.
type EventType string

const (
	// EventPaintCreated represents a paint creation event.
	EventPaintCreated EventType = "paint.created"
	// EventPaintUpdated represents a paint update event.
	EventPaintUpdated EventType = "paint.updated"
	// EventPaintDeleted represents a paint deletion event.
	EventPaintDeleted EventType = "paint.deleted"

	// EventPaintsCleared represents a bulk wipe of the paint collection.
	EventPaintsCleared EventType = "paints.cleared"
	// EventPaintsImported represents a completed snapshot import.
	EventPaintsImported EventType = "paints.imported"

	// EventPaletteCreated represents a palette creation event.
	EventPaletteCreated EventType = "palette.created"
	// EventPaletteUpdated represents a palette update event.
	EventPaletteUpdated EventType = "palette.updated"
	// EventPaletteDeleted represents a palette deletion event, including
	// the cascading slot sweep.
	EventPaletteDeleted EventType = "palette.deleted"

	// EventSlotUpdated represents a slot assignment or clear.
	EventSlotUpdated EventType = "slot.updated"

	// EventSessionUpdated represents a change to the shared session state
	// (selection, editing target, or a data reload).
	EventSessionUpdated EventType = "session.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field carries the event payload as a JSON object so clients can
// render the change without a follow-up fetch.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// PaintEventData is the data payload for paint create/update events.
type PaintEventData struct {
	Paint *domain.Paint `json:"paint"`
}

// PaintDeletedEventData is the data payload for paint delete events.
type PaintDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	PaintID   uint64    `json:"paint_id"`
}

// PaintsClearedEventData is the data payload for bulk wipe events.
type PaintsClearedEventData struct {
	ClearedAt time.Time `json:"cleared_at"`
	Removed   int       `json:"removed"`
}

// PaintsImportedEventData is the data payload for import completion events.
type PaintsImportedEventData struct {
	Mode     string `json:"mode"`
	Added    int    `json:"added"`
	Upserted int    `json:"upserted"`
	Removed  int    `json:"removed"`
}

// PaletteEventData is the data payload for palette create/update events.
type PaletteEventData struct {
	Palette *domain.Palette `json:"palette"`
}

// PaletteDeletedEventData is the data payload for palette delete events.
type PaletteDeletedEventData struct {
	DeletedAt    time.Time `json:"deleted_at"`
	PaletteID    uint64    `json:"palette_id"`
	SlotsRemoved int       `json:"slots_removed"`
}

// SlotEventData is the data payload for slot events.
type SlotEventData struct {
	Slot *domain.PaletteSlot `json:"slot"`
}

// SessionEventData is the data payload for session state events.
type SessionEventData struct {
	Revision uint64 `json:"revision"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewPaintCreatedEvent creates a paint.created event.
func NewPaintCreatedEvent(paint *domain.Paint) Event {
	return Event{
		Type:      EventPaintCreated,
		Data:      PaintEventData{Paint: paint},
		Timestamp: time.Now(),
	}
}

// NewPaintUpdatedEvent creates a paint.updated event.
func NewPaintUpdatedEvent(paint *domain.Paint) Event {
	return Event{
		Type:      EventPaintUpdated,
		Data:      PaintEventData{Paint: paint},
		Timestamp: time.Now(),
	}
}

// NewPaintDeletedEvent creates a paint.deleted event.
func NewPaintDeletedEvent(paintID uint64) Event {
	return Event{
		Type: EventPaintDeleted,
		Data: PaintDeletedEventData{
			PaintID:   paintID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewPaintsClearedEvent creates a paints.cleared event.
func NewPaintsClearedEvent(removed int) Event {
	return Event{
		Type: EventPaintsCleared,
		Data: PaintsClearedEventData{
			ClearedAt: time.Now(),
			Removed:   removed,
		},
		Timestamp: time.Now(),
	}
}

// NewPaintsImportedEvent creates a paints.imported event.
func NewPaintsImportedEvent(mode string, added, upserted, removed int) Event {
	return Event{
		Type: EventPaintsImported,
		Data: PaintsImportedEventData{
			Mode:     mode,
			Added:    added,
			Upserted: upserted,
			Removed:  removed,
		},
		Timestamp: time.Now(),
	}
}

// NewPaletteCreatedEvent creates a palette.created event.
func NewPaletteCreatedEvent(palette *domain.Palette) Event {
	return Event{
		Type:      EventPaletteCreated,
		Data:      PaletteEventData{Palette: palette},
		Timestamp: time.Now(),
	}
}

// NewPaletteUpdatedEvent creates a palette.updated event.
func NewPaletteUpdatedEvent(palette *domain.Palette) Event {
	return Event{
		Type:      EventPaletteUpdated,
		Data:      PaletteEventData{Palette: palette},
		Timestamp: time.Now(),
	}
}

// NewPaletteDeletedEvent creates a palette.deleted event.
func NewPaletteDeletedEvent(paletteID uint64, slotsRemoved int) Event {
	return Event{
		Type: EventPaletteDeleted,
		Data: PaletteDeletedEventData{
			PaletteID:    paletteID,
			SlotsRemoved: slotsRemoved,
			DeletedAt:    time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewSlotUpdatedEvent creates a slot.updated event.
func NewSlotUpdatedEvent(slot *domain.PaletteSlot) Event {
	return Event{
		Type:      EventSlotUpdated,
		Data:      SlotEventData{Slot: slot},
		Timestamp: time.Now(),
	}
}

// NewSessionUpdatedEvent creates a session.updated event.
func NewSessionUpdatedEvent(revision uint64) Event {
	return Event{
		Type:      EventSessionUpdated,
		Data:      SessionEventData{Revision: revision},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
