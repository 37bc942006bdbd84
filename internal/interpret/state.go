package interpret

import (
	"github.com/xxxsen/oneiro/internal/model"
)

// Strategy names accepted on the interpretation API.
const (
	StrategyRAG     = "rag"
	StrategyAgentic = "agentic"
)

// Stage names, in execution order.
const (
	StageSymbolExtraction      = "symbol_extraction"
	StageResearchRetrieval     = "research_retrieval"
	StageSymbolAnalysis        = "symbol_analysis"
	StagePsychologicalAnalysis = "psychological_analysis"
	StageCulturalAnalysis      = "cultural_analysis"
	StageSynthesis             = "synthesis"
)

// AnalysisState accumulates the output of each pipeline stage. Stages only
// append; nothing written by an earlier stage is mutated later.
type AnalysisState struct {
	DreamText   string
	UserContext model.UserContext

	Symbols         []string
	ResearchContext string
	Retrieved       []model.RetrievedChunk

	SymbolAnalysis        string
	PsychologicalAnalysis string
	CulturalAnalysis      string

	Synthesis       string
	Interpretation  string
	ConfidenceScore float64
	Reasoning       string
	Alternatives    []string

	Trace []string
}
