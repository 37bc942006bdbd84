package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTableKnownSource(t *testing.T) {
	table := NewSourceTable()
	src := table.Lookup("jung-man-and-his-symbols.pdf")
	assert.Equal(t, "jung-man-and-his-symbols", src.SourceID)
	assert.Equal(t, "archetypal", src.Category)
	assert.InDelta(t, 0.074, src.CredibilityWeight, 1e-9)
}

func TestSourceTableUnknownSourceDefaults(t *testing.T) {
	table := NewSourceTable()
	src := table.Lookup("mystery-paper.pdf")
	assert.Equal(t, "mystery-paper", src.SourceID)
	assert.Equal(t, "mystery-paper", src.Title)
	assert.Equal(t, "general", src.Category)
	assert.InDelta(t, 0.1, src.CredibilityWeight, 1e-9)
	assert.Equal(t, "N/A", src.ValidationTier)
}

func TestLoadSourceTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	content := `{"custom.pdf": {"title": "Custom Study", "category": "clinical", "credibility_weight": 0.3, "validation_tier": "High"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadSourceTable(path)
	require.NoError(t, err)
	src := table.Lookup("custom.pdf")
	assert.Equal(t, "Custom Study", src.Title)
	assert.InDelta(t, 0.3, src.CredibilityWeight, 1e-9)
}

func TestLoadSourceTableRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	_, err := LoadSourceTable(path)
	assert.Error(t, err)
}
