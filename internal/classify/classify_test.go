package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Examples(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name string
		want Category
	}{
		// Fixed vocabularies.
		{"Gen", CategoryCategory},
		{"F/F", CategoryCategory},
		{"M/M", CategoryCategory},
		{"Multi", CategoryCategory},
		{"Explicit", CategoryRating},
		{"General Audiences", CategoryRating},
		{"Not Rated", CategoryRating},
		{"Major Character Death", CategoryWarning},
		{"No Archive Warnings Apply", CategoryWarning},

		// Relationships.
		{"Harry/Draco", CategoryRelationship},
		{"Steve Rogers/Bucky Barnes", CategoryRelationship},

		// Fandoms.
		{"Marvel Cinematic Universe", CategoryFandom},
		{"Star Wars - All Media Types", CategoryFandom},
		{"Sherlock (TV)", CategoryFandom},

		// Characters.
		{"Harry Potter", CategoryCharacter},
		{"Hermione Granger", CategoryCharacter},
		{"James T. Kirk", CategoryCharacter},

		// Freeform default.
		{"found family", CategoryFreeform},
		{"fluff", CategoryFreeform},
		{"Alternate Universe - Coffee Shop", CategoryFreeform},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.name))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := New(nil)

	// "F/M" contains a slash but the category rule fires first.
	assert.Equal(t, CategoryCategory, c.Classify("F/M"))

	// "Rape/Non-Con" contains a slash but the warning rule fires first.
	assert.Equal(t, CategoryWarning, c.Classify("Rape/Non-Con"))

	// A slash-bearing franchise name is not a relationship; the fandom
	// rule picks it up via the marker list or it falls to freeform,
	// never to relationship.
	assert.NotEqual(t, CategoryRelationship, c.Classify("Fate/Stay Night"))
}

func TestClassify_Pure(t *testing.T) {
	c := New(nil)

	// Repeated calls over the same input always agree, and the result is
	// always one of the seven categories.
	names := []string{"Gen", "Explicit", "Harry/Draco", "Harry Potter", "fluff", "Underage", "Star Wars - All Media Types"}
	valid := map[Category]bool{}
	for _, cat := range Categories {
		valid[cat] = true
	}

	for _, name := range names {
		first := c.Classify(name)
		require.True(t, valid[first], "unknown category %q for %q", first, name)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Classify(name))
		}
	}
}

func TestClassify_OverridePrecedesRules(t *testing.T) {
	overrides := NewOverrideTable()
	overrides.Replace(map[string]Category{
		// "Harry Potter" classifies as character by shape; the operator
		// knows it is actually the fandom tag.
		"Harry Potter": CategoryFandom,
	})
	c := New(overrides)

	assert.Equal(t, CategoryFandom, c.Classify("Harry Potter"))

	// Other names are unaffected.
	assert.Equal(t, CategoryCharacter, c.Classify("Hermione Granger"))
}

func TestGroupTags(t *testing.T) {
	c := New(nil)

	grouped := c.GroupTags([]string{
		"Teen And Up Audiences",
		"F/M",
		"Harry Potter",
		"Hermione Granger",
		"Harry/Draco",
		"found family",
		"slow burn",
	})

	assert.Equal(t, []string{"Teen And Up Audiences"}, grouped.Names(CategoryRating))
	assert.Equal(t, []string{"F/M"}, grouped.Names(CategoryCategory))
	assert.Equal(t, []string{"Harry Potter", "Hermione Granger"}, grouped.Names(CategoryCharacter))
	assert.Equal(t, []string{"Harry/Draco"}, grouped.Names(CategoryRelationship))
	assert.Equal(t, []string{"found family", "slow burn"}, grouped.Names(CategoryFreeform))

	// Absent categories come back as empty slices, not nil.
	assert.Empty(t, grouped.Names(CategoryWarning))
	assert.NotNil(t, grouped.Names(CategoryWarning))
}
