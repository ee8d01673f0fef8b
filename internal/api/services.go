package api

import (
	"github.com/swatchbookapp/swatchbook-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Paint    *service.PaintService
	Palette  *service.PaletteService
	Snapshot *service.SnapshotService
	Search   *service.SearchService
}
