package retrieve

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/oneiro/internal/model"
)

type fakeIndex struct {
	results []model.RetrievedChunk
}

func (f *fakeIndex) Search(ctx context.Context, query string, limit int, categories []string) ([]model.RetrievedChunk, error) {
	if limit > len(f.results) {
		limit = len(f.results)
	}
	out := make([]model.RetrievedChunk, limit)
	copy(out, f.results[:limit])
	return out, nil
}

func chunkOf(sourceID string, weight, similarity float64) model.RetrievedChunk {
	return model.RetrievedChunk{
		Chunk: model.ResearchChunk{
			SourceID:          sourceID,
			Title:             sourceID,
			Category:          "clinical",
			CredibilityWeight: weight,
			ValidationTier:    "High",
			Content:           "content from " + sourceID,
		},
		Similarity: similarity,
	}
}

func TestRetrieveWeightedReorder(t *testing.T) {
	// S is slightly less similar but far more credible than T, so it wins:
	// 0.70 * 1.8 = 1.26 beats 0.75 * 1.2 = 0.90.
	idx := &fakeIndex{results: []model.RetrievedChunk{
		chunkOf("t", 0.2, 0.75),
		chunkOf("s", 0.8, 0.70),
	}}
	r := NewRetriever(idx)
	got, err := r.Retrieve(context.Background(), "falling dream", 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s", got[0].Chunk.SourceID)
	assert.Equal(t, "t", got[1].Chunk.SourceID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.InDelta(t, 0.70*1.8, got[0].FinalScore, 1e-9)
	assert.InDelta(t, 0.75*1.2, got[1].FinalScore, 1e-9)
}

func TestRetrieveScoreMonotonicInSimilarity(t *testing.T) {
	// Same source weight, higher similarity must never rank lower.
	idx := &fakeIndex{results: []model.RetrievedChunk{
		chunkOf("a", 0.5, 0.9),
		chunkOf("b", 0.5, 0.6),
		chunkOf("c", 0.5, 0.3),
	}}
	r := NewRetriever(idx)
	got, err := r.Retrieve(context.Background(), "q", 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].FinalScore, got[i].FinalScore)
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
}

func TestRetrieveCredibilityBreaksEqualSimilarity(t *testing.T) {
	// Equal raw similarity: the more credible source must rank first.
	idx := &fakeIndex{results: []model.RetrievedChunk{
		chunkOf("s", 0.2, 0.5),
		chunkOf("t", 0.8, 0.5),
	}}
	r := NewRetriever(idx)
	got, err := r.Retrieve(context.Background(), "flying", 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t", got[0].Chunk.SourceID)
	assert.Equal(t, "s", got[1].Chunk.SourceID)
}

func TestRetrieveDeterministicTieBreak(t *testing.T) {
	idx := &fakeIndex{results: []model.RetrievedChunk{
		chunkOf("zeta", 0.4, 0.5),
		chunkOf("alpha", 0.4, 0.5),
	}}
	r := NewRetriever(idx)
	first, err := r.Retrieve(context.Background(), "q", 2, nil)
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), "q", 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "alpha", first[0].Chunk.SourceID)
	assert.Equal(t, first, second)
}

func TestRetrieveTopKCut(t *testing.T) {
	idx := &fakeIndex{results: []model.RetrievedChunk{
		chunkOf("a", 0.1, 0.9),
		chunkOf("b", 0.1, 0.8),
		chunkOf("c", 0.1, 0.7),
		chunkOf("d", 0.1, 0.6),
	}}
	r := NewRetriever(idx)
	got, err := r.Retrieve(context.Background(), "q", 2, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetrieveZeroK(t *testing.T) {
	r := NewRetriever(&fakeIndex{})
	got, err := r.Retrieve(context.Background(), "q", 0, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBuildContextBlockFormat(t *testing.T) {
	chunks := []model.RetrievedChunk{
		{
			Chunk: model.ResearchChunk{
				Title:          "The Content Analysis of Dreams",
				Category:       "content_analysis",
				ValidationTier: "High - 20,000+ coded dreams",
				Content:        "Falling appears in roughly forty percent of reported dreams.",
			},
			Rank: 1,
		},
	}
	ctxText, included := BuildContext(chunks, 0)
	require.Len(t, included, 1)
	assert.True(t, strings.HasPrefix(ctxText, "[Source 1: The Content Analysis of Dreams | Category: content_analysis | Validation: High - 20,000+ coded dreams]\n"))
	assert.Contains(t, ctxText, "Falling appears in roughly forty percent")
	assert.True(t, strings.HasSuffix(ctxText, "\n---\n"))
}

func TestBuildContextBudgetWholeBlocks(t *testing.T) {
	chunks := []model.RetrievedChunk{
		{Chunk: model.ResearchChunk{Title: "a", Category: "c", ValidationTier: "v", Content: "x"}, Rank: 1},
		{Chunk: model.ResearchChunk{Title: "b", Category: "c", ValidationTier: "v", Content: "y"}, Rank: 2},
	}
	full, _ := BuildContext(chunks[:1], 0)
	// A budget big enough for one block but not two keeps exactly one, never a
	// truncated second block.
	ctxText, included := BuildContext(chunks, len(full)+10)
	assert.Equal(t, full, ctxText)
	require.Len(t, included, 1)
	assert.Equal(t, "a", included[0].Chunk.Title)

	// A budget smaller than the first block yields nothing.
	ctxText, included = BuildContext(chunks, 5)
	assert.Empty(t, ctxText)
	assert.Empty(t, included)
}
