package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/swatchbookapp/swatchbook-server/internal/normalize"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Status string // Exact ownership status ("owned", "empty", "wishlist")
	Medium string // Exact medium
	Brand  string // Brand, matched through the folded brand key
	Tags   []string

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent", "created"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool
	FacetFields   []string
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		FacetFields:   []string{"status", "medium"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID         uint64            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Brand      string            `json:"brand,omitempty"`
	Line       string            `json:"line,omitempty"`
	Code       string            `json:"code,omitempty"`
	Status     string            `json:"status,omitempty"`
	Medium     string            `json:"medium,omitempty"`
	Swatch     string            `json:"swatch,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Statuses []FacetCount `json:"statuses,omitempty"`
	Mediums  []FacetCount `json:"mediums,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		for _, field := range params.FacetFields {
			searchRequest.AddFacet(field, bleve.NewFacetRequest(field, 20))
		}
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("brand")
		searchRequest.Highlight.AddField("line")
	}

	searchRequest.Fields = []string{
		"id", "name", "brand", "line", "code", "status", "medium", "swatch",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{Score: hit.Score}

		if id, err := strconv.ParseUint(hit.ID, 10, 64); err == nil {
			searchHit.ID = id
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if b, ok := hit.Fields["brand"].(string); ok {
			searchHit.Brand = b
		}
		if l, ok := hit.Fields["line"].(string); ok {
			searchHit.Line = l
		}
		if c, ok := hit.Fields["code"].(string); ok {
			searchHit.Code = c
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}
		if m, ok := hit.Fields["medium"].(string); ok {
			searchHit.Medium = m
		}
		if sw, ok := hit.Fields["swatch"].(string); ok {
			searchHit.Swatch = sw
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		folded := normalize.Fold(params.Query)
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Folded name catches accented spellings either direction
		nameFoldedMatch := bleve.NewMatchQuery(folded)
		nameFoldedMatch.SetField("name_folded")
		nameFoldedMatch.SetBoost(2.5)
		textQueries = append(textQueries, nameFoldedMatch)

		// Brand matches, raw and folded
		brandMatch := bleve.NewMatchQuery(params.Query)
		brandMatch.SetField("brand")
		brandMatch.SetBoost(2.0)
		textQueries = append(textQueries, brandMatch)

		brandFoldedMatch := bleve.NewMatchQuery(folded)
		brandFoldedMatch.SetField("brand_folded")
		brandFoldedMatch.SetBoost(1.8)
		textQueries = append(textQueries, brandFoldedMatch)

		// Product line and manufacturer code
		lineMatch := bleve.NewMatchQuery(params.Query)
		lineMatch.SetField("line")
		lineMatch.SetBoost(1.2)
		textQueries = append(textQueries, lineMatch)

		codeMatch := bleve.NewMatchQuery(strings.ToLower(params.Query))
		codeMatch.SetField("code")
		codeMatch.SetBoost(2.0)
		textQueries = append(textQueries, codeMatch)

		// Notes, low weight
		notesMatch := bleve.NewMatchQuery(params.Query)
		notesMatch.SetField("notes")
		notesMatch.SetBoost(0.5)
		textQueries = append(textQueries, notesMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(folded)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name_folded")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(folded) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(folded)
			prefixQuery.SetField("name_folded")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Status != "" {
		tq := bleve.NewTermQuery(params.Status)
		tq.SetField("status")
		queries = append(queries, tq)
	}

	if params.Medium != "" {
		tq := bleve.NewTermQuery(params.Medium)
		tq.SetField("medium")
		queries = append(queries, tq)
	}

	if params.Brand != "" {
		tq := bleve.NewTermQuery(normalize.FoldKey(params.Brand))
		tq.SetField("brand_key")
		queries = append(queries, tq)
	}

	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"updated_at"})
		} else {
			req.SortBy([]string{"-updated_at"})
		}
	case "created":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if statusFacet, ok := result.Facets["status"]; ok {
		for _, term := range statusFacet.Terms.Terms() {
			facets.Statuses = append(facets.Statuses, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if mediumFacet, ok := result.Facets["medium"]; ok {
		for _, term := range mediumFacet.Terms.Terms() {
			facets.Mediums = append(facets.Mediums, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
