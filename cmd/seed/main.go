// Package main provides a tool to seed the primary store with sample works.
//
// This fills the works and tags tables with realistic archive data so the
// sync daemon has something to index during development and testing.
//
// Usage:
//
//	DB_PATH=~/worksync/works.db go run ./cmd/seed
//	DB_PATH=~/worksync/works.db go run ./cmd/seed --works 500
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/storymill/worksync/internal/domain"
	"github.com/storymill/worksync/internal/id"
	"github.com/storymill/worksync/internal/store/sqlite"
)

var workCount = flag.Int("works", 100, "Number of works to create")

var ratings = []string{
	"General Audiences",
	"Teen And Up Audiences",
	"Mature",
	"Explicit",
	"Not Rated",
}

var languages = []string{"English", "English", "English", "中文-普通话 國語", "Русский", "Español"}

// tagPool mixes every category the classifier knows about, the way a real
// archive's flat vocabulary does.
var tagPool = []string{
	"Gen", "F/F", "F/M", "M/M", "Multi",
	"Creator Chose Not To Use Archive Warnings", "Major Character Death", "No Archive Warnings Apply",
	"Harry Potter", "Hermione Granger", "Draco Malfoy", "James T. Kirk", "Leia Organa",
	"Harry/Draco", "Kirk/Spock", "Steve Rogers/Tony Stark",
	"Marvel Cinematic Universe", "Star Wars - All Media Types", "Sherlock (TV)",
	"Fluff", "Angst", "Alternate Universe - Coffee Shop", "Slow Burn", "Hurt/Comfort",
	"found family", "enemies to lovers", "Canon Divergence",
}

var titleWords = []string{
	"Midnight", "Ashes", "Gravity", "Starlight", "Paper", "Northern", "Silent",
	"Crowns", "Tides", "Letters", "Winter", "Thorns", "Echoes", "Harbor",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/worksync/works.db")
	}

	fmt.Printf("Opening store at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Create the tag vocabulary first so works can reference it.
	tagIDs := make(map[string]string, len(tagPool))
	for _, name := range tagPool {
		tag := &domain.Tag{ID: id.MustGenerate("tag"), Name: name}
		if err := s.CreateTag(ctx, tag); err != nil {
			log.Fatalf("Failed to create tag %q: %v", name, err)
		}
		// CreateTag ignores duplicates, so read back the canonical id.
		tagID, err := s.TagIDByName(ctx, name)
		if err != nil {
			log.Fatalf("Failed to look up tag %q: %v", name, err)
		}
		tagIDs[name] = tagID
	}
	fmt.Printf("Tag vocabulary ready: %d tags\n", len(tagIDs))

	// A handful of authors sharing the catalogue looks more realistic
	// than one author per work.
	authorIDs := make([]string, 8)
	for i := range authorIDs {
		authorIDs[i] = "user-" + uuid.NewString()
	}

	created := 0
	for i := 0; i < *workCount; i++ {
		w := randomWork(rng, authorIDs)
		if err := s.CreateWork(ctx, w); err != nil {
			log.Printf("Failed to create work %q: %v", w.Title, err)
			continue
		}

		for _, name := range randomTags(rng) {
			if err := s.TagWork(ctx, w.ID, tagIDs[name]); err != nil {
				log.Printf("Failed to tag work %s with %q: %v", w.ID, name, err)
			}
		}
		created++
	}

	total, err := s.CountWorks(ctx)
	if err != nil {
		log.Fatalf("Failed to count works: %v", err)
	}
	fmt.Printf("Done: created %d works (store now holds %d)\n", created, total)
}

func randomWork(rng *rand.Rand, authorIDs []string) *domain.Work {
	title := fmt.Sprintf("%s %s", pick(rng, titleWords), pick(rng, titleWords))
	chapters := 1 + rng.Intn(30)
	published := time.Now().AddDate(0, -rng.Intn(48), -rng.Intn(28))
	updated := published.AddDate(0, 0, rng.Intn(90))

	return &domain.Work{
		ID:             id.MustGenerate("work"),
		Title:          title,
		Summary:        fmt.Sprintf("A story about %s and what came after.", pick(rng, titleWords)),
		Notes:          "",
		Language:       pick(rng, languages),
		Rating:         pick(rng, ratings),
		WordCount:      500 + rng.Intn(150000),
		ChapterCount:   chapters,
		IsComplete:     rng.Intn(3) != 0,
		HitsCount:      rng.Intn(50000),
		KudosCount:     rng.Intn(5000),
		CommentsCount:  rng.Intn(800),
		BookmarksCount: rng.Intn(1200),
		UserID:         pick(rng, authorIDs),
		PublishedAt:    &published,
		CreatedAt:      published,
		UpdatedAt:      updated,
	}
}

// randomTags picks 3-8 distinct tags from the pool.
func randomTags(rng *rand.Rand) []string {
	n := 3 + rng.Intn(6)
	seen := make(map[string]bool, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		name := pick(rng, tagPool)
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
