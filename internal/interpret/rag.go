package interpret

import (
	"context"
	"fmt"

	"github.com/xxxsen/oneiro/internal/model"
)

// Single-shot retrieval limits and the fixed follow-up confidence.
const (
	ragChunkCount       = 5
	ragBudgetChars      = 12000
	followupChunkCount  = 3
	followupBudgetChars = 8000
	followupConfidence  = 0.75
	sourceExcerptChars  = 200
)

// RAGInterpreter is the single-shot strategy: one retrieval, one generation,
// one parse.
type RAGInterpreter struct {
	gen      Generator
	research Researcher
}

func NewRAGInterpreter(gen Generator, research Researcher) *RAGInterpreter {
	return &RAGInterpreter{gen: gen, research: research}
}

func (r *RAGInterpreter) Interpret(ctx context.Context, dreamText string, uc model.UserContext) (*model.Interpretation, error) {
	researchContext, chunks, err := r.research.Research(ctx, dreamText, ragChunkCount, ragBudgetChars)
	if err != nil {
		return nil, fmt.Errorf("retrieve research: %w", err)
	}
	resp, err := r.gen.Generate(ctx, ragInterpretationPrompt(dreamText, researchContext, uc))
	if err != nil {
		return nil, fmt.Errorf("generate interpretation: %w", err)
	}
	parsed := ParseRAGResponse(resp)
	return &model.Interpretation{
		Interpretation:  parsed.Interpretation,
		ConfidenceScore: parsed.ConfidenceScore,
		Sources:         citeSources(chunks),
		Reasoning:       parsed.Reasoning,
		Alternatives:    parsed.Alternatives,
		Strategy:        StrategyRAG,
	}, nil
}

// Followup answers a question about a previous interpretation. The answer is
// returned verbatim with a fixed confidence, no section parsing.
func (r *RAGInterpreter) Followup(ctx context.Context, dreamText, question, previousContext string, uc model.UserContext) (*model.Interpretation, error) {
	query := dreamText + " " + question
	researchContext, chunks, err := r.research.Research(ctx, query, followupChunkCount, followupBudgetChars)
	if err != nil {
		return nil, fmt.Errorf("retrieve research: %w", err)
	}
	resp, err := r.gen.Generate(ctx, followupPrompt(dreamText, previousContext, question, researchContext))
	if err != nil {
		return nil, fmt.Errorf("generate followup: %w", err)
	}
	return &model.Interpretation{
		Interpretation:  resp,
		ConfidenceScore: followupConfidence,
		Sources:         citeSources(chunks),
		Reasoning:       "Follow-up response",
		Strategy:        StrategyRAG,
	}, nil
}

func citeSources(chunks []model.RetrievedChunk) []model.CitedSource {
	sources := make([]model.CitedSource, 0, len(chunks))
	for _, chunk := range chunks {
		excerpt := chunk.Chunk.Content
		if len(excerpt) > sourceExcerptChars {
			excerpt = excerpt[:sourceExcerptChars] + "..."
		}
		sources = append(sources, model.CitedSource{
			Source:    chunk.Chunk.Title,
			Category:  chunk.Chunk.Category,
			Relevance: chunk.FinalScore,
			Excerpt:   excerpt,
		})
	}
	return sources
}
