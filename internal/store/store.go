// Package store defines the read contract against the primary store. The
// sync core never mutates works or tags; it only counts and pages them.
package store

import (
	"context"

	"github.com/storymill/worksync/internal/domain"
)

// Store is the read-only view of the primary store.
type Store interface {
	// CountWorks returns the number of work records.
	CountWorks(ctx context.Context) (int, error)

	// PageWorks returns one page of works with their joined tag names,
	// ordered stably by work id ascending. An empty page signals the end.
	PageWorks(ctx context.Context, offset, limit int) ([]*domain.WorkWithTags, error)
}
