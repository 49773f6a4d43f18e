// Package classify infers the semantic category of a flat tag name.
// The vocabulary in the primary store is untyped; the index needs typed
// tag fields, so every tag name is run through a first-match-wins rule
// chain. The chain is a heuristic, not ground truth - operators can
// correct misclassifications with an override table consulted before
// any rule fires.
package classify

import (
	"regexp"
	"strings"
)

// Category is the semantic class assigned to a tag name.
type Category string

// The seven tag categories. Classify always returns one of these.
const (
	CategoryRelationship Category = "relationship"
	CategoryCategory     Category = "category"
	CategoryRating       Category = "rating"
	CategoryWarning      Category = "warning"
	CategoryFandom       Category = "fandom"
	CategoryCharacter    Category = "character"
	CategoryFreeform     Category = "freeform"
)

// Categories lists every valid category, in rule order.
var Categories = []Category{
	CategoryCategory,
	CategoryRating,
	CategoryWarning,
	CategoryRelationship,
	CategoryFandom,
	CategoryCharacter,
	CategoryFreeform,
}

// categoryTags is the fixed enumerated set of pairing-category tags.
var categoryTags = map[string]struct{}{
	"Gen":   {},
	"F/F":   {},
	"F/M":   {},
	"M/M":   {},
	"Multi": {},
	"Other": {},
}

// ratingTags is the fixed rating vocabulary.
var ratingTags = map[string]struct{}{
	"General Audiences":     {},
	"Teen And Up Audiences": {},
	"Mature":                {},
	"Explicit":              {},
	"Not Rated":             {},
}

// warningTags is the fixed archive-warning vocabulary. Note that
// "Rape/Non-Con" contains a slash; warnings are checked before the
// relationship rule so it never misclassifies.
var warningTags = map[string]struct{}{
	"Creator Chose Not To Use Archive Warnings": {},
	"No Archive Warnings Apply":                 {},
	"Graphic Depictions Of Violence":            {},
	"Major Character Death":                     {},
	"Rape/Non-Con":                              {},
	"Underage":                                  {},
}

// slashFranchises are franchise names that contain a "/" but are not
// relationships.
var slashFranchises = []string{
	"Fate/Stay Night",
	"Fate/Grand Order",
	"Fate/Zero",
	"Fate/Apocrypha",
	".hack//Sign",
}

// franchiseMarkers is a curated allow-list of substrings that identify
// fandom tags. Deliberately conservative: a marker that also matches a
// plausible character name would shadow the character rule.
var franchiseMarkers = []string{
	"Marvel",
	"DC Comics",
	"Star Wars",
	"Star Trek",
	"Doctor Who",
	"Dragon Age",
	"Mass Effect",
	"Final Fantasy",
	"Fire Emblem",
	"Middle-earth",
	"Lord of the Rings",
	"A Song of Ice and Fire",
	"Game of Thrones",
	"Cinematic Universe",
	"- Fandom",
	"(TV)",
	"(Movies)",
	"(Video Game)",
}

// personNamePattern matches a personal-name shape: two capitalized
// tokens with an optional middle initial ("Harry Potter", "Harry J. Potter").
var personNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z'-]+ (?:[A-Z]\. )?[A-Z][A-Za-z'-]+$`)

// Classifier maps tag names to categories. It is deterministic and does
// no I/O: for a fixed override table, the same name always yields the
// same category.
type Classifier struct {
	overrides *OverrideTable
}

// New creates a classifier. overrides may be nil, in which case only the
// heuristic chain applies.
func New(overrides *OverrideTable) *Classifier {
	return &Classifier{overrides: overrides}
}

// Classify returns the category for a tag name. Rules are evaluated in a
// fixed order and the first match wins; ambiguous names resolve to the
// earliest-listed rule.
func (c *Classifier) Classify(name string) Category {
	if c.overrides != nil {
		if cat, ok := c.overrides.Lookup(name); ok {
			return cat
		}
	}

	if _, ok := categoryTags[name]; ok {
		return CategoryCategory
	}
	if _, ok := ratingTags[name]; ok {
		return CategoryRating
	}
	if _, ok := warningTags[name]; ok {
		return CategoryWarning
	}
	if strings.Contains(name, "/") && !isSlashFranchise(name) {
		return CategoryRelationship
	}
	if isFandom(name) {
		return CategoryFandom
	}
	if personNamePattern.MatchString(name) {
		return CategoryCharacter
	}
	return CategoryFreeform
}

// GroupTags classifies every name and groups them by category,
// preserving input order within each category.
func (c *Classifier) GroupTags(names []string) ByCategory {
	grouped := make(ByCategory, len(Categories))
	for _, name := range names {
		cat := c.Classify(name)
		grouped[cat] = append(grouped[cat], name)
	}
	return grouped
}

// ByCategory holds tag names grouped by their inferred category.
type ByCategory map[Category][]string

// Names returns the tag names for one category, never nil.
func (b ByCategory) Names(cat Category) []string {
	if b == nil {
		return []string{}
	}
	names := b[cat]
	if names == nil {
		return []string{}
	}
	return names
}

func isSlashFranchise(name string) bool {
	for _, f := range slashFranchises {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func isFandom(name string) bool {
	for _, marker := range franchiseMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
