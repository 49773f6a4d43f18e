package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for work documents. The
// mapping is fixed for the lifetime of an index: evolution is an
// out-of-band operator migration, never an in-process alteration.
//
// Field classes:
//  1. Free text with the standard analyzer: title, summary, notes,
//     content_text, and the typed tag arrays.
//  2. Keyword (exact match, facetable): rating, language, warnings,
//     categories, status, user_id.
//  3. Numeric counters for range queries.
//  4. Boolean completion flag and date timestamps.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	for _, field := range []string{"title", "summary", "notes", "content_text"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// Typed tag arrays share the text treatment so partial tag names
	// still match ("Granger" finds "Hermione Granger").
	for _, field := range []string{"fandom", "characters", "relationships", "freeform_tags"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Keyword fields (exact match) ---

	for _, field := range []string{"rating", "language", "warnings", "categories", "status", "user_id"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Numeric counters ---

	for _, field := range []string{
		"word_count", "chapter_count",
		"hits_count", "kudos_count", "comments_count", "bookmarks_count",
	} {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Boolean and dates ---

	completeFieldMapping := bleve.NewBooleanFieldMapping()
	completeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("is_complete", completeFieldMapping)

	for _, field := range []string{"published_at", "updated_at", "created_at"} {
		fm := bleve.NewDateTimeFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
