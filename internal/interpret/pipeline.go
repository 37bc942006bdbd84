package interpret

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/model"
)

// Retrieval and truncation limits for the staged analysis. The staged path
// retrieves wider than the single-shot path because four analysts share one
// context.
const (
	researchChunkCount   = 7
	researchBudgetChars  = 16000
	symbolContextChars   = 3000
	priorAnalysisChars   = 1500
	psychContextChars    = 2000
	culturalContextChars = 2000
	maxQuerySymbols      = 5
)

type stage struct {
	name string
	run  func(ctx context.Context, state *AnalysisState) error
}

// Pipeline runs the staged interpretation: six fixed stages executed in
// order, each reading the state its predecessors wrote.
type Pipeline struct {
	gen      Generator
	research Researcher
}

func NewPipeline(gen Generator, research Researcher) *Pipeline {
	return &Pipeline{gen: gen, research: research}
}

// Run executes all stages. The first failing stage aborts the run; the
// returned state still carries everything completed before the failure.
func (p *Pipeline) Run(ctx context.Context, dreamText string, uc model.UserContext) (*AnalysisState, error) {
	state := &AnalysisState{
		DreamText:   dreamText,
		UserContext: uc,
	}
	stages := []stage{
		{StageSymbolExtraction, p.extractSymbols},
		{StageResearchRetrieval, p.retrieveResearch},
		{StageSymbolAnalysis, p.analyzeSymbols},
		{StagePsychologicalAnalysis, p.analyzePsychological},
		{StageCulturalAnalysis, p.analyzeCultural},
		{StageSynthesis, p.synthesize},
	}
	logger := logutil.GetLogger(ctx)
	for _, st := range stages {
		if err := st.run(ctx, state); err != nil {
			return state, fmt.Errorf("stage %s: %w", st.name, err)
		}
		state.Trace = append(state.Trace, st.name)
		logger.Debug("analysis stage complete", zap.String("stage", st.name))
	}
	return state, nil
}

func (p *Pipeline) extractSymbols(ctx context.Context, state *AnalysisState) error {
	resp, err := p.gen.Generate(ctx, symbolExtractionPrompt(state.DreamText))
	if err != nil {
		return err
	}
	// An unparseable response is not fatal: retrieval falls back to the raw
	// dream text as the query.
	for _, part := range strings.Split(resp, ",") {
		symbol := strings.Trim(strings.TrimSpace(part), `"`)
		if symbol == "" {
			continue
		}
		state.Symbols = append(state.Symbols, symbol)
	}
	return nil
}

func (p *Pipeline) retrieveResearch(ctx context.Context, state *AnalysisState) error {
	query := state.DreamText
	symbols := state.Symbols
	if len(symbols) > maxQuerySymbols {
		symbols = symbols[:maxQuerySymbols]
	}
	if len(symbols) > 0 {
		query = query + " " + strings.Join(symbols, " ")
	}
	text, chunks, err := p.research.Research(ctx, query, researchChunkCount, researchBudgetChars)
	if err != nil {
		return err
	}
	state.ResearchContext = text
	state.Retrieved = chunks
	return nil
}

func (p *Pipeline) analyzeSymbols(ctx context.Context, state *AnalysisState) error {
	prompt := symbolAnalysisPrompt(state.DreamText, state.Symbols,
		truncate(state.ResearchContext, symbolContextChars))
	resp, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.SymbolAnalysis = resp
	return nil
}

func (p *Pipeline) analyzePsychological(ctx context.Context, state *AnalysisState) error {
	prompt := psychologicalAnalysisPrompt(state.DreamText, state.UserContext,
		truncate(state.SymbolAnalysis, priorAnalysisChars),
		truncate(state.ResearchContext, psychContextChars))
	resp, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.PsychologicalAnalysis = resp
	return nil
}

func (p *Pipeline) analyzeCultural(ctx context.Context, state *AnalysisState) error {
	prompt := culturalAnalysisPrompt(state.DreamText, state.Symbols,
		truncate(state.ResearchContext, culturalContextChars))
	resp, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.CulturalAnalysis = resp
	return nil
}

func (p *Pipeline) synthesize(ctx context.Context, state *AnalysisState) error {
	prompt := synthesisPrompt(state.DreamText,
		state.SymbolAnalysis, state.PsychologicalAnalysis, state.CulturalAnalysis)
	resp, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	state.Synthesis = resp
	parsed := ParseSynthesis(resp)
	state.Interpretation = parsed.Interpretation
	state.ConfidenceScore = parsed.ConfidenceScore
	state.Reasoning = parsed.Reasoning
	state.Alternatives = parsed.Alternatives
	return nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
