package interpret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/retrieve"
)

// emptyIndex behaves like an index with no active corpus generation: zero
// results, no error.
type emptyIndex struct{}

func (emptyIndex) Search(ctx context.Context, query string, limit int, categories []string) ([]model.RetrievedChunk, error) {
	return nil, nil
}

func TestResearchDegradesOnEmptyIndex(t *testing.T) {
	res := NewResearcher(retrieve.NewRetriever(emptyIndex{}))
	text, included, err := res.Research(context.Background(), "falling dream", 5, 12000)
	require.NoError(t, err)
	assert.Empty(t, included)
	assert.Equal(t, "No relevant research context available.", text)
}

func TestRAGInterpretProceedsWithoutCorpus(t *testing.T) {
	gen := &fakeGenerator{replies: map[string]string{
		"expert dream analyst": "PRIMARY INTERPRETATION:\nA stress dream.\n",
	}}
	r := NewRAGInterpreter(gen, NewResearcher(retrieve.NewRetriever(emptyIndex{})))

	result, err := r.Interpret(context.Background(), "I was falling.", nil)
	require.NoError(t, err)
	assert.Equal(t, "A stress dream.", result.Interpretation)
	assert.Empty(t, result.Sources)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "No relevant research context available.")
}

func TestPipelineProceedsWithoutCorpus(t *testing.T) {
	gen := &fakeGenerator{replies: stagedReplies()}
	p := NewPipeline(gen, NewResearcher(retrieve.NewRetriever(emptyIndex{})))

	state, err := p.Run(context.Background(), "I was flying.", nil)
	require.NoError(t, err)
	assert.Len(t, state.Trace, 6)
	assert.Empty(t, state.Retrieved)
	assert.Contains(t, state.ResearchContext, "No relevant research context available.")
}
