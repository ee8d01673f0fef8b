package providers

import (
	"github.com/samber/do/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/logger"
	"github.com/swatchbookapp/swatchbook-server/internal/media/images"
	"github.com/swatchbookapp/swatchbook-server/internal/service"
)

// ProvidePaintService provides the paint collection service.
func ProvidePaintService(i do.Injector) (*service.PaintService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPaintService(storeHandle.Store, searchService, processor, log.Logger), nil
}

// ProvidePaletteService provides the palette and slot service.
func ProvidePaletteService(i do.Injector) (*service.PaletteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPaletteService(storeHandle.Store, log.Logger), nil
}

// ProvideSnapshotService provides the export/import service.
func ProvideSnapshotService(i do.Injector) (*service.SnapshotService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSnapshotService(storeHandle.Store, searchService, log.Logger), nil
}
