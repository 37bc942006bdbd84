package interpret

import (
	"context"

	"github.com/xxxsen/oneiro/internal/model"
)

// AgenticInterpreter is the staged strategy: the six-stage pipeline followed
// by a synthesis parse.
type AgenticInterpreter struct {
	pipeline *Pipeline
}

func NewAgenticInterpreter(gen Generator, research Researcher) *AgenticInterpreter {
	return &AgenticInterpreter{pipeline: NewPipeline(gen, research)}
}

// Interpret runs the full pipeline and also returns the extracted symbols so
// callers can persist them alongside the interpretation.
func (a *AgenticInterpreter) Interpret(ctx context.Context, dreamText string, uc model.UserContext) (*model.Interpretation, []string, error) {
	state, err := a.pipeline.Run(ctx, dreamText, uc)
	if err != nil {
		return nil, nil, err
	}
	result := &model.Interpretation{
		Interpretation:  state.Interpretation,
		ConfidenceScore: state.ConfidenceScore,
		Sources:         citeSources(state.Retrieved),
		Reasoning:       state.Reasoning,
		Alternatives:    state.Alternatives,
		Strategy:        StrategyAgentic,
		StageTrace:      state.Trace,
	}
	return result, state.Symbols, nil
}
