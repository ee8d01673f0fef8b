package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
	"github.com/swatchbookapp/swatchbook-server/internal/search"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// SearchService bridges the search index with the paint store, handling
// document creation, updates, and query execution.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger,
	}
}

// Search executes a full-text query over the paint collection.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexPaint indexes a single paint. Call this when a paint is created
// or updated.
func (s *SearchService) IndexPaint(_ context.Context, p *domain.Paint) error {
	if err := s.index.IndexDocument(search.PaintToDocument(p)); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed paint", "id", p.ID, "name", p.Name)
	return nil
}

// DeletePaint removes a paint from the index.
func (s *SearchService) DeletePaint(_ context.Context, paintID uint64) error {
	return s.index.DeleteDocument(search.DocID(paintID))
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the store.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	// Rebuild index (drops existing)
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.PaintDocument, 0, 256)
	for p, err := range s.store.StreamPaints(ctx) {
		if err != nil {
			return fmt.Errorf("stream paints: %w", err)
		}
		docs = append(docs, search.PaintToDocument(p))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index paints: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "documents", len(docs))
	return nil
}
