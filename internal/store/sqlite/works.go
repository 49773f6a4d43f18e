package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/storymill/worksync/internal/domain"
)

// workColumns is the ordered list of columns selected in work queries.
// Must match the scan order in scanWork.
const workColumns = `id, title, summary, notes, language, rating,
	word_count, chapter_count, is_complete,
	hits_count, kudos_count, comments_count, bookmarks_count,
	user_id, published_at, created_at, updated_at`

// scanWork scans a row into a domain.Work.
func scanWork(scanner interface{ Scan(dest ...any) error }) (*domain.Work, error) {
	var w domain.Work

	var (
		isComplete  int
		publishedAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&w.ID,
		&w.Title,
		&w.Summary,
		&w.Notes,
		&w.Language,
		&w.Rating,
		&w.WordCount,
		&w.ChapterCount,
		&isComplete,
		&w.HitsCount,
		&w.KudosCount,
		&w.CommentsCount,
		&w.BookmarksCount,
		&w.UserID,
		&publishedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.IsComplete = isComplete != 0

	if publishedAt.Valid && publishedAt.String != "" {
		t, err := parseTime(publishedAt.String)
		if err != nil {
			return nil, err
		}
		w.PublishedAt = &t
	}
	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	w.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// CountWorks returns the total number of work records.
func (s *Store) CountWorks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count works: %w", err)
	}
	return count, nil
}

// PageWorks returns one page of works ordered by id ascending, each with
// its joined tag names. An empty slice signals the end of the store.
func (s *Store) PageWorks(ctx context.Context, offset, limit int) ([]*domain.WorkWithTags, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workColumns+` FROM works ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("page works: %w", err)
	}
	defer rows.Close()

	var page []*domain.WorkWithTags
	var ids []string
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		page = append(page, &domain.WorkWithTags{Work: w, TagNames: []string{}})
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, nil
	}

	tagsByWork, err := s.tagNamesForWorks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range page {
		if names, ok := tagsByWork[row.Work.ID]; ok {
			row.TagNames = names
		}
	}

	return page, nil
}

// tagNamesForWorks fetches tag names for a batch of work ids in a single
// join query, keyed by work id.
func (s *Store) tagNamesForWorks(ctx context.Context, workIDs []string) (map[string][]string, error) {
	if len(workIDs) == 0 {
		return map[string][]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(workIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(workIDs))
	for i, id := range workIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT wt.work_id, t.name
		FROM work_tags wt
		JOIN tags t ON t.id = wt.tag_id
		WHERE wt.work_id IN (`+placeholders+`)
		ORDER BY wt.work_id, t.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("tags for works: %w", err)
	}
	defer rows.Close()

	byWork := make(map[string][]string)
	for rows.Next() {
		var workID, name string
		if err := rows.Scan(&workID, &name); err != nil {
			return nil, err
		}
		byWork[workID] = append(byWork[workID], name)
	}
	return byWork, rows.Err()
}

// CreateWork inserts a work record. Used by the seed tool and tests; the
// production write path belongs to the surrounding application.
func (s *Store) CreateWork(ctx context.Context, w *domain.Work) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO works (`+workColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID,
		w.Title,
		w.Summary,
		w.Notes,
		w.Language,
		w.Rating,
		w.WordCount,
		w.ChapterCount,
		boolToInt(w.IsComplete),
		w.HitsCount,
		w.KudosCount,
		w.CommentsCount,
		w.BookmarksCount,
		w.UserID,
		nullTimeString(w.PublishedAt),
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert work: %w", err)
	}
	return nil
}

// CreateTag inserts a tag, ignoring duplicates by name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (id, name) VALUES (?, ?)`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// TagWork associates a tag with a work.
func (s *Store) TagWork(ctx context.Context, workID, tagID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO work_tags (work_id, tag_id) VALUES (?, ?)`, workID, tagID)
	if err != nil {
		return fmt.Errorf("insert work tag: %w", err)
	}
	return nil
}

// TagIDByName looks up a tag id by its exact name.
func (s *Store) TagIDByName(ctx context.Context, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
