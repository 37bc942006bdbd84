package interpret

import (
	"context"

	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/retrieve"
)

// Generator produces a model completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Researcher assembles a research context for a query: up to k chunks
// rendered into at most budget characters.
type Researcher interface {
	Research(ctx context.Context, query string, k, budget int) (string, []model.RetrievedChunk, error)
}

type retrievalResearcher struct {
	retriever *retrieve.Retriever
}

// NewResearcher adapts weighted retrieval into the Researcher the
// interpretation strategies consume.
func NewResearcher(retriever *retrieve.Retriever) Researcher {
	return &retrievalResearcher{retriever: retriever}
}

func (r *retrievalResearcher) Research(ctx context.Context, query string, k, budget int) (string, []model.RetrievedChunk, error) {
	chunks, err := r.retriever.Retrieve(ctx, query, k, nil)
	if err != nil {
		return "", nil, err
	}
	text, included := retrieve.BuildContext(chunks, budget)
	if text == "" {
		// keep the prompt structure intact even with nothing retrieved
		text = "No relevant research context available."
	}
	return text, included, nil
}
