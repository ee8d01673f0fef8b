// Package session holds the UI session state: the current record lists,
// the active selection, and the edit-in-progress id. The state is always
// a cache derived from the store — rebuilt after every mutation, never
// the source of truth.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	domainerrors "github.com/swatchbookapp/swatchbook-server/internal/errors"
	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// Snapshot is one consistent view of the session state.
type Snapshot struct {
	Paints          []*domain.Paint   `json:"paints"`
	Palettes        []*domain.Palette `json:"palettes"`
	SelectedPaintID *uint64           `json:"selected_paint_id"`
	EditingPaintID  *uint64           `json:"editing_paint_id"`
	Revision        uint64            `json:"revision"`
}

// State is the mutex-guarded session container. It implements
// store.EventEmitter so every committed mutation invalidates the cached
// lists; the next Snapshot call rebuilds them from the store.
type State struct {
	mu     sync.Mutex
	store  *store.Store
	events store.EventEmitter
	logger *slog.Logger

	paints   []*domain.Paint
	palettes []*domain.Palette
	selected *uint64
	editing  *uint64
	revision uint64
	stale    bool
}

// NewState creates an empty session state. Bind must be called before
// the first Snapshot.
func NewState(logger *slog.Logger) *State {
	return &State{
		logger: logger,
		stale:  true,
	}
}

// Bind attaches the backing store. Separate from NewState because the
// store wants this state as its event emitter, and something has to be
// constructed first.
func (s *State) Bind(st *store.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	s.stale = true
}

// BindEvents attaches an outbound emitter for selection changes. Store
// mutations already reach clients through the store's own emitter; this
// one carries the session.updated events that have no store write.
func (s *State) BindEvents(events store.EventEmitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

// Emit implements store.EventEmitter. Any store mutation invalidates
// the cached lists and bumps the revision; the payload itself is not
// inspected — a rebuild reads whatever the store holds now.
func (s *State) Emit(_ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision++
	s.stale = true
}

// Revision returns the current change counter.
func (s *State) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Snapshot returns the current session view, rebuilding the cached
// lists from the store when a mutation has happened since the last call.
func (s *State) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale {
		if err := s.rebuildLocked(ctx); err != nil {
			return nil, err
		}
	}

	return s.snapshotLocked(), nil
}

// SetSelection updates the active selection and edit-in-progress id.
// Referenced paints must exist; a stale id from the UI is a not-found,
// not a crash. Returns the resulting snapshot.
func (s *State) SetSelection(ctx context.Context, selected, editing *uint64) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []*uint64{selected, editing} {
		if id == nil {
			continue
		}
		if _, err := s.store.GetPaint(*id); err != nil {
			return nil, domainerrors.NotFoundf("paint %d not found", *id).WithCause(err)
		}
	}

	s.selected = cloneID(selected)
	s.editing = cloneID(editing)
	s.revision++

	if s.stale {
		if err := s.rebuildLocked(ctx); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		s.events.Emit(sse.NewSessionUpdatedEvent(s.revision))
	}

	return s.snapshotLocked(), nil
}

// rebuildLocked refreshes the cached lists from the store and drops a
// selection whose paint no longer exists. Caller holds the mutex.
func (s *State) rebuildLocked(_ context.Context) error {
	paints, err := s.store.ListPaints()
	if err != nil {
		return err
	}
	palettes, err := s.store.ListPalettes()
	if err != nil {
		return err
	}

	// The store's list order is unspecified; the session view sorts by
	// folded display name so the UI never has to.
	sort.Slice(paints, func(i, j int) bool {
		a := normalize.Fold(paints[i].DisplayName())
		b := normalize.Fold(paints[j].DisplayName())
		if a == b {
			return paints[i].ID < paints[j].ID
		}
		return a < b
	})
	sort.Slice(palettes, func(i, j int) bool {
		a := normalize.Fold(palettes[i].Name)
		b := normalize.Fold(palettes[j].Name)
		if a == b {
			return palettes[i].ID < palettes[j].ID
		}
		return a < b
	})

	s.paints = paints
	s.palettes = palettes
	s.stale = false

	if s.selected != nil && !containsPaint(paints, *s.selected) {
		s.selected = nil
	}
	if s.editing != nil && !containsPaint(paints, *s.editing) {
		s.editing = nil
	}

	if s.logger != nil {
		s.logger.Debug("session state rebuilt",
			"paints", len(paints),
			"palettes", len(palettes),
			"revision", s.revision,
		)
	}
	return nil
}

// snapshotLocked copies the current state. Caller holds the mutex.
func (s *State) snapshotLocked() *Snapshot {
	paints := make([]*domain.Paint, len(s.paints))
	copy(paints, s.paints)
	palettes := make([]*domain.Palette, len(s.palettes))
	copy(palettes, s.palettes)

	return &Snapshot{
		Paints:          paints,
		Palettes:        palettes,
		SelectedPaintID: cloneID(s.selected),
		EditingPaintID:  cloneID(s.editing),
		Revision:        s.revision,
	}
}

func containsPaint(paints []*domain.Paint, id uint64) bool {
	for _, p := range paints {
		if p.ID == id {
			return true
		}
	}
	return false
}

func cloneID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
