// Package domain defines the core entities read from the primary store.
// The relational store is the source of truth; everything here is read-only
// from the sync core's perspective.
package domain

import "time"

// Work is a creative-work record as stored in the primary store.
// Mutated by the surrounding application, never by this process.
type Work struct {
	ID             string
	Title          string
	Summary        string
	Notes          string
	Language       string
	Rating         string
	WordCount      int
	ChapterCount   int
	IsComplete     bool
	HitsCount      int
	KudosCount     int
	CommentsCount  int
	BookmarksCount int
	UserID         string
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusLabel derives the display status from the completion flag.
// IsComplete is the single source of truth; the label is never stored.
func (w *Work) StatusLabel() string {
	if w.IsComplete {
		return "Complete Work"
	}
	return "Work in Progress"
}

// Tag is a flat, untyped vocabulary entry. Tags carry no type column;
// their semantic category is inferred at index time.
type Tag struct {
	ID   string
	Name string
}

// WorkWithTags is one page row: a work plus the names of its associated
// tags, as returned by the store's page query.
type WorkWithTags struct {
	Work     *Work
	TagNames []string
}
