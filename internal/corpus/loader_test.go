package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("plain body"))
	require.NoError(t, err)
	assert.Equal(t, "plain body", text)
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("image.png", []byte{0x89})
	assert.Error(t, err)
}

func TestExtractMarkdownStripsFormatting(t *testing.T) {
	md := "# Dream Studies\n\nSome **bold** findings about _sleep_.\n\n- item one\n- item two\n"
	text, err := ExtractText("doc.md", []byte(md))
	require.NoError(t, err)
	assert.Contains(t, text, "Dream Studies")
	assert.Contains(t, text, "Some bold findings about sleep.")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "#")
}

func TestCleanTextRemovesPageNumbers(t *testing.T) {
	raw := "First paragraph.\n42\nSecond paragraph."
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", CleanText(raw))
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	raw := "spaced\t\t  out   text\n\n\n\n\nnext block"
	got := CleanText(raw)
	assert.Equal(t, "spaced out text\n\nnext block", got)
}

func TestCleanTextDropsNonASCIIRuns(t *testing.T) {
	raw := "ligature ﬁ artifacts"
	got := CleanText(raw)
	assert.Equal(t, "ligature artifacts", got)
}
