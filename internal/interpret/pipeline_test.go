package interpret

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/oneiro/internal/model"
)

// fakeGenerator answers each prompt by matching a distinctive substring, so
// tests can script every stage independently.
type fakeGenerator struct {
	replies map[string]string
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	for marker, reply := range f.replies {
		if strings.Contains(prompt, marker) {
			if reply == "ERROR" {
				return "", fmt.Errorf("generation failed")
			}
			return reply, nil
		}
	}
	return "unmatched prompt", nil
}

type fakeResearcher struct {
	context string
	chunks  []model.RetrievedChunk
	queries []string
}

func (f *fakeResearcher) Research(ctx context.Context, query string, k, budget int) (string, []model.RetrievedChunk, error) {
	f.queries = append(f.queries, query)
	return f.context, f.chunks, nil
}

func stagedReplies() map[string]string {
	return map[string]string{
		"extract the key symbols":     "flying, ocean, falling, fear, fish",
		"dream symbol analyst":        "symbol analysis text",
		"psychological dream analyst": "psychological analysis text",
		"cultural dream analyst":      "cultural analysis text",
		"synthesis agent": `FINAL INTERPRETATION:
A transition dream.

CONFIDENCE:
High - 80%

REASONING:
Converging evidence.

ALTERNATIVE INTERPRETATIONS:
1. Alt one
2. Alt two
`,
	}
}

func TestPipelineRunsAllStagesInOrder(t *testing.T) {
	gen := &fakeGenerator{replies: stagedReplies()}
	research := &fakeResearcher{context: "research context"}
	p := NewPipeline(gen, research)

	state, err := p.Run(context.Background(), "I was flying over the ocean.", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		StageSymbolExtraction,
		StageResearchRetrieval,
		StageSymbolAnalysis,
		StagePsychologicalAnalysis,
		StageCulturalAnalysis,
		StageSynthesis,
	}, state.Trace)
	assert.Equal(t, []string{"flying", "ocean", "falling", "fear", "fish"}, state.Symbols)
	assert.Equal(t, "symbol analysis text", state.SymbolAnalysis)
	assert.Equal(t, "psychological analysis text", state.PsychologicalAnalysis)
	assert.Equal(t, "cultural analysis text", state.CulturalAnalysis)
	assert.InDelta(t, 0.80, state.ConfidenceScore, 1e-9)
	assert.Equal(t, "Converging evidence.", state.Reasoning)
	assert.Len(t, state.Alternatives, 2)
}

func TestPipelineQueryCombinesDreamAndSymbols(t *testing.T) {
	gen := &fakeGenerator{replies: stagedReplies()}
	research := &fakeResearcher{context: "ctx"}
	p := NewPipeline(gen, research)

	_, err := p.Run(context.Background(), "dream text", nil)
	require.NoError(t, err)
	require.Len(t, research.queries, 1)
	assert.Equal(t, "dream text flying ocean falling fear fish", research.queries[0])
}

func TestPipelineLimitsQuerySymbols(t *testing.T) {
	replies := stagedReplies()
	replies["extract the key symbols"] = "a, b, c, d, e, f, g"
	gen := &fakeGenerator{replies: replies}
	research := &fakeResearcher{}
	p := NewPipeline(gen, research)

	state, err := p.Run(context.Background(), "dream", nil)
	require.NoError(t, err)
	assert.Len(t, state.Symbols, 7)
	require.Len(t, research.queries, 1)
	assert.Equal(t, "dream a b c d e", research.queries[0])
}

func TestPipelineEmptySymbolsNonFatal(t *testing.T) {
	replies := stagedReplies()
	replies["extract the key symbols"] = "   ,  , "
	gen := &fakeGenerator{replies: replies}
	research := &fakeResearcher{context: "ctx"}
	p := NewPipeline(gen, research)

	state, err := p.Run(context.Background(), "a wordless dream", nil)
	require.NoError(t, err)
	assert.Empty(t, state.Symbols)
	require.Len(t, research.queries, 1)
	assert.Equal(t, "a wordless dream", research.queries[0])
	assert.Len(t, state.Trace, 6)
}

func TestPipelineStageFailureAborts(t *testing.T) {
	replies := stagedReplies()
	replies["psychological dream analyst"] = "ERROR"
	gen := &fakeGenerator{replies: replies}
	research := &fakeResearcher{}
	p := NewPipeline(gen, research)

	state, err := p.Run(context.Background(), "dream", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), StagePsychologicalAnalysis)
	// Completed stages remain on the state, nothing after the failure ran.
	assert.Equal(t, "symbol analysis text", state.SymbolAnalysis)
	assert.Empty(t, state.PsychologicalAnalysis)
	assert.Empty(t, state.CulturalAnalysis)
	assert.Equal(t, []string{
		StageSymbolExtraction,
		StageResearchRetrieval,
		StageSymbolAnalysis,
	}, state.Trace)
}

func TestPipelineTruncatesContexts(t *testing.T) {
	replies := stagedReplies()
	gen := &fakeGenerator{replies: replies}
	research := &fakeResearcher{context: strings.Repeat("r", 10000)}
	p := NewPipeline(gen, research)

	_, err := p.Run(context.Background(), "dream", nil)
	require.NoError(t, err)
	// The second prompt is the symbol analysis, its research window is capped.
	require.GreaterOrEqual(t, len(gen.prompts), 2)
	assert.NotContains(t, gen.prompts[1], strings.Repeat("r", symbolContextChars+1))
	assert.Contains(t, gen.prompts[1], strings.Repeat("r", symbolContextChars))
}

func TestAgenticInterpreterResult(t *testing.T) {
	gen := &fakeGenerator{replies: stagedReplies()}
	research := &fakeResearcher{
		context: "ctx",
		chunks: []model.RetrievedChunk{{
			Chunk: model.ResearchChunk{
				Title:    "The Neuropsychology of Dreams",
				Category: "neuroscience",
				Content:  strings.Repeat("z", 300),
			},
			FinalScore: 1.1,
			Rank:       1,
		}},
	}
	a := NewAgenticInterpreter(gen, research)

	result, symbols, err := a.Interpret(context.Background(), "flying dream", model.UserContext{"stress_level": "medium"})
	require.NoError(t, err)
	assert.Equal(t, StrategyAgentic, result.Strategy)
	assert.Len(t, result.StageTrace, 6)
	assert.Len(t, symbols, 5)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "The Neuropsychology of Dreams", result.Sources[0].Source)
	assert.InDelta(t, 1.1, result.Sources[0].Relevance, 1e-9)
	assert.Len(t, result.Sources[0].Excerpt, sourceExcerptChars+3)
	assert.Contains(t, result.Interpretation, "A transition dream.")
}

func TestRAGInterpreterResult(t *testing.T) {
	gen := &fakeGenerator{replies: map[string]string{
		"expert dream analyst": `PRIMARY INTERPRETATION:
Anxiety about control.

CONFIDENCE LEVEL:
Medium - 55%

REASONING:
Based on the evidence.

ALTERNATIVE INTERPRETATIONS:
1. Something else
`,
	}}
	research := &fakeResearcher{
		context: "ctx",
		chunks: []model.RetrievedChunk{{
			Chunk:      model.ResearchChunk{Title: "src", Category: "clinical", Content: "short"},
			FinalScore: 0.9,
		}},
	}
	r := NewRAGInterpreter(gen, research)

	result, err := r.Interpret(context.Background(), "teeth falling out", nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyRAG, result.Strategy)
	assert.Empty(t, result.StageTrace)
	assert.Equal(t, "Anxiety about control.", result.Interpretation)
	assert.InDelta(t, 0.55, result.ConfidenceScore, 1e-9)
	assert.Equal(t, "Based on the evidence.", result.Reasoning)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "short", result.Sources[0].Excerpt)
}

func TestRAGFollowupFixedConfidence(t *testing.T) {
	gen := &fakeGenerator{replies: map[string]string{
		"follow-up question": "The staircase relates to progress themes in the literature.",
	}}
	research := &fakeResearcher{context: "ctx"}
	r := NewRAGInterpreter(gen, research)

	result, err := r.Followup(context.Background(), "dream", "what about the staircase?", "previous interpretation", nil)
	require.NoError(t, err)
	assert.InDelta(t, followupConfidence, result.ConfidenceScore, 1e-9)
	assert.Equal(t, "Follow-up response", result.Reasoning)
	assert.Contains(t, result.Interpretation, "staircase")
	require.Len(t, research.queries, 1)
	assert.Equal(t, "dream what about the staircase?", research.queries[0])
}
