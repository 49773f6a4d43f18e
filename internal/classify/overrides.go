package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OverrideTable is an operator-supplied mapping from tag name to category,
// consulted before the heuristic chain. It exists so production
// misclassifications are fixable via data, not code changes.
//
// Thread safety: Lookup and Replace are safe for concurrent use, so the
// file watcher can swap the table under live classification.
type OverrideTable struct {
	mu     sync.RWMutex
	byName map[string]Category
}

// NewOverrideTable creates an empty override table.
func NewOverrideTable() *OverrideTable {
	return &OverrideTable{byName: map[string]Category{}}
}

// Lookup returns the override category for a tag name, if one is set.
func (t *OverrideTable) Lookup(name string) (Category, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cat, ok := t.byName[name]
	return cat, ok
}

// Replace swaps the entire mapping atomically.
func (t *OverrideTable) Replace(m map[string]Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName = m
}

// Len returns the number of override entries.
func (t *OverrideTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}

// overrideEntry is the validated shape of one override-file row.
type overrideEntry struct {
	Name     string `validate:"required"`
	Category string `validate:"required,oneof=relationship category rating warning fandom character freeform"`
}

var validate = validator.New()

// LoadOverrideFile parses a YAML override file mapping tag names to
// category names. Every entry is validated; a single bad entry rejects
// the whole file so a half-applied table never goes live.
//
// File format:
//
//	"Harry Potter": character
//	"Steve/Bucky": relationship
func LoadOverrideFile(path string) (map[string]Category, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- operator-supplied config path is expected
	if err != nil {
		return nil, fmt.Errorf("read override file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse override file: %w", err)
	}

	m := make(map[string]Category, len(raw))
	for name, cat := range raw {
		entry := overrideEntry{Name: name, Category: cat}
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("invalid override %q -> %q: %w", name, cat, err)
		}
		m[name] = Category(cat)
	}
	return m, nil
}

// LoadInto loads the override file into the table. Missing file is not an
// error - overrides are optional.
func (t *OverrideTable) LoadInto(path string) error {
	if path == "" {
		return nil
	}
	m, err := LoadOverrideFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	t.Replace(m)
	return nil
}

// Watch reloads the override table whenever the file changes on disk.
// Blocks until ctx is cancelled. A reload failure keeps the previous
// table and logs a warning.
func (t *OverrideTable) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			m, err := LoadOverrideFile(path)
			if err != nil {
				logger.Warn("override reload failed, keeping previous table",
					"path", path,
					"error", err,
				)
				continue
			}
			t.Replace(m)
			logger.Info("reloaded classification overrides", "path", path, "entries", len(m))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("override watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
