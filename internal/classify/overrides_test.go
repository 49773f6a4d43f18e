package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOverrideFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOverrideFile(t *testing.T) {
	path := writeOverrideFile(t, `
"Harry Potter": fandom
"Steve/Bucky": relationship
"slow burn": freeform
`)

	m, err := LoadOverrideFile(path)
	require.NoError(t, err)

	assert.Len(t, m, 3)
	assert.Equal(t, CategoryFandom, m["Harry Potter"])
	assert.Equal(t, CategoryRelationship, m["Steve/Bucky"])
}

func TestLoadOverrideFile_RejectsUnknownCategory(t *testing.T) {
	path := writeOverrideFile(t, `"Harry Potter": ship`)

	_, err := LoadOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Harry Potter")
}

func TestLoadOverrideFile_RejectsMalformedYAML(t *testing.T) {
	path := writeOverrideFile(t, "{not yaml")

	_, err := LoadOverrideFile(path)
	require.Error(t, err)
}

func TestOverrideTable_LoadInto_MissingFileIsOptional(t *testing.T) {
	table := NewOverrideTable()

	err := table.LoadInto(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestOverrideTable_Replace(t *testing.T) {
	table := NewOverrideTable()

	_, ok := table.Lookup("Harry Potter")
	assert.False(t, ok)

	table.Replace(map[string]Category{"Harry Potter": CategoryFandom})

	cat, ok := table.Lookup("Harry Potter")
	require.True(t, ok)
	assert.Equal(t, CategoryFandom, cat)

	// A replace fully supersedes the previous table.
	table.Replace(map[string]Category{"fluff": CategoryFreeform})
	_, ok = table.Lookup("Harry Potter")
	assert.False(t, ok)
}
