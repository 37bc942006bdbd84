package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/oneiro/internal/model"
)

// overFetchFactor widens the nearest-neighbor fetch so credibility re-ranking
// has enough candidates to reorder before the top-k cut.
const overFetchFactor = 2

// Retriever performs weighted retrieval: nearest-neighbor candidates from the
// index are re-scored by source credibility before the final top-k cut.
type Retriever struct {
	index Index
}

func NewRetriever(index Index) *Retriever {
	return &Retriever{index: index}
}

// Retrieve returns the top k chunks for the query ranked by
// similarity * (1 + credibilityWeight). Ties break on raw similarity, then on
// source id and chunk index, so equal inputs always rank identically.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, categories []string) ([]model.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	candidates, err := r.index.Search(ctx, query, k*overFetchFactor, categories)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].FinalScore = candidates[i].Similarity * (1 + candidates[i].Chunk.CredibilityWeight)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Chunk.SourceID != b.Chunk.SourceID {
			return a.Chunk.SourceID < b.Chunk.SourceID
		}
		return a.Chunk.ChunkIndex < b.Chunk.ChunkIndex
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// BuildContext renders ranked chunks into a prompt context bounded by
// budget characters. Blocks are included whole in rank order; a block that
// would push the total past the budget is skipped along with everything after
// it. Returns the rendered context and the chunks that made it in.
func BuildContext(chunks []model.RetrievedChunk, budget int) (string, []model.RetrievedChunk) {
	var sb strings.Builder
	var included []model.RetrievedChunk
	for _, chunk := range chunks {
		block := fmt.Sprintf("[Source %d: %s | Category: %s | Validation: %s]\n%s\n---\n",
			chunk.Rank,
			chunk.Chunk.Title,
			chunk.Chunk.Category,
			chunk.Chunk.ValidationTier,
			chunk.Chunk.Content,
		)
		if budget > 0 && sb.Len()+len(block) > budget {
			break
		}
		sb.WriteString(block)
		included = append(included, chunk)
	}
	return sb.String(), included
}
