// Package search owns the derived, denormalized projection of the primary
// store: one Bleve document per work, rebuilt wholesale on resync and never
// patched field-by-field.
package search

import (
	"strings"
	"time"

	"github.com/storymill/worksync/internal/classify"
	"github.com/storymill/worksync/internal/domain"
)

// SearchDocument is the typed projection of a work plus the
// classification-closure of its tag names. Field names in ToMap must match
// the index mapping exactly.
type SearchDocument struct {
	ID          string
	Title       string
	Summary     string
	Notes       string
	ContentText string

	Fandoms       []string
	Characters    []string
	Relationships []string
	FreeformTags  []string
	Categories    []string
	Warnings      []string

	Rating   string
	Language string
	Status   string
	UserID   string

	WordCount      int
	ChapterCount   int
	HitsCount      int
	KudosCount     int
	CommentsCount  int
	BookmarksCount int

	IsComplete bool

	PublishedAt time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

// BuildDocument assembles a search document from a work and its classified
// tags. Deterministic, no I/O. Empty textual fields become empty strings
// rather than omitted fields so the index mapping stays stable; numeric
// fields default to zero and status is derived from the completion flag.
func BuildDocument(work *domain.Work, tags classify.ByCategory) *SearchDocument {
	return &SearchDocument{
		ID:          work.ID,
		Title:       work.Title,
		Summary:     work.Summary,
		Notes:       work.Notes,
		ContentText: contentText(work),

		Fandoms:       tags.Names(classify.CategoryFandom),
		Characters:    tags.Names(classify.CategoryCharacter),
		Relationships: tags.Names(classify.CategoryRelationship),
		FreeformTags:  tags.Names(classify.CategoryFreeform),
		Categories:    tags.Names(classify.CategoryCategory),
		Warnings:      tags.Names(classify.CategoryWarning),

		Rating:   work.Rating,
		Language: work.Language,
		Status:   work.StatusLabel(),
		UserID:   work.UserID,

		WordCount:      work.WordCount,
		ChapterCount:   work.ChapterCount,
		HitsCount:      work.HitsCount,
		KudosCount:     work.KudosCount,
		CommentsCount:  work.CommentsCount,
		BookmarksCount: work.BookmarksCount,

		IsComplete: work.IsComplete,

		PublishedAt: timeOrZero(work.PublishedAt),
		UpdatedAt:   work.UpdatedAt,
		CreatedAt:   work.CreatedAt,
	}
}

// contentText joins the non-empty title, summary and notes, in that order,
// for free-text ranking over the whole work.
func contentText(work *domain.Work) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{work.Title, work.Summary, work.Notes} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ToMap converts the document to a map with the lowercase field names the
// index mapping uses. Every field is always emitted, including empty ones.
func (d *SearchDocument) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"title":        d.Title,
		"summary":      d.Summary,
		"notes":        d.Notes,
		"content_text": d.ContentText,

		"fandom":        d.Fandoms,
		"characters":    d.Characters,
		"relationships": d.Relationships,
		"freeform_tags": d.FreeformTags,
		"categories":    d.Categories,
		"warnings":      d.Warnings,

		"rating":   d.Rating,
		"language": d.Language,
		"status":   d.Status,
		"user_id":  d.UserID,

		"word_count":      d.WordCount,
		"chapter_count":   d.ChapterCount,
		"hits_count":      d.HitsCount,
		"kudos_count":     d.KudosCount,
		"comments_count":  d.CommentsCount,
		"bookmarks_count": d.BookmarksCount,

		"is_complete": d.IsComplete,

		"published_at": d.PublishedAt,
		"updated_at":   d.UpdatedAt,
		"created_at":   d.CreatedAt,
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
