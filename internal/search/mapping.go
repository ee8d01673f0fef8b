package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for paint documents.
//
// Priorities:
//  1. Full-text search on paint names with English stemming
//  2. Diacritic-insensitive matching through the folded companion fields
//  3. Exact keyword matching for status, medium, and brand filters
//  4. Term vectors on name and brand for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Brand - searchable, important for narrowing ("schmincke white")
	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = en.AnalyzerName
	brandFieldMapping.Store = true
	brandFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("brand", brandFieldMapping)

	// Product line - searchable
	lineFieldMapping := bleve.NewTextFieldMapping()
	lineFieldMapping.Analyzer = en.AnalyzerName
	lineFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("line", lineFieldMapping)

	// Folded name/brand - accent-stripped lowercase; the standard
	// analyzer tokenizes without stemming so the already-normalized
	// tokens survive intact
	nameFoldedMapping := bleve.NewTextFieldMapping()
	nameFoldedMapping.Analyzer = standard.Name
	nameFoldedMapping.Store = false
	docMapping.AddFieldMappingsAt("name_folded", nameFoldedMapping)

	brandFoldedMapping := bleve.NewTextFieldMapping()
	brandFoldedMapping.Analyzer = standard.Name
	brandFoldedMapping.Store = false
	docMapping.AddFieldMappingsAt("brand_folded", brandFoldedMapping)

	// Manufacturer code - standard analyzer keeps letter-digit runs
	// together, so "PB29" indexes as "pb29"
	codeFieldMapping := bleve.NewTextFieldMapping()
	codeFieldMapping.Analyzer = standard.Name
	codeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("code", codeFieldMapping)

	// Notes - searchable but not stored
	notesFieldMapping := bleve.NewTextFieldMapping()
	notesFieldMapping.Analyzer = en.AnalyzerName
	notesFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("notes", notesFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Status - for owned/empty/wishlist filtering
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// Medium - for watercolor/acrylic/... filtering
	mediumFieldMapping := bleve.NewTextFieldMapping()
	mediumFieldMapping.Analyzer = keyword.Name
	mediumFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("medium", mediumFieldMapping)

	// Brand key - folded-and-collapsed brand for exact filter matches
	brandKeyFieldMapping := bleve.NewTextFieldMapping()
	brandKeyFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("brand_key", brandKeyFieldMapping)

	// Tags - keyword analyzer keeps compound tags intact (e.g. "half-pan")
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Swatch hex - stored for display in hits, never searched
	swatchFieldMapping := bleve.NewTextFieldMapping()
	swatchFieldMapping.Analyzer = keyword.Name
	swatchFieldMapping.Store = true
	swatchFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("swatch", swatchFieldMapping)

	// --- Numeric fields (sorting) ---

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
