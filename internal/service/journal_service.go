package service

import (
	"context"
	"sort"
	"time"

	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/repo"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	topSymbolCount  = 10
)

type SymbolFrequency struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// PatternReport summarizes recurring structure across the whole journal.
type PatternReport struct {
	TotalDreams   int               `json:"total_dreams"`
	AvgConfidence float64           `json:"avg_confidence"`
	TopSymbols    []SymbolFrequency `json:"top_symbols"`
	Monthly       map[string]int    `json:"monthly"`
}

type JournalService struct {
	journal *repo.JournalRepo
}

func NewJournalService(journal *repo.JournalRepo) *JournalService {
	return &JournalService{journal: journal}
}

func (s *JournalService) Get(ctx context.Context, id int64) (*model.DreamEntry, error) {
	return s.journal.Get(ctx, id)
}

func (s *JournalService) List(ctx context.Context, limit, offset int) ([]model.DreamEntry, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.journal.List(ctx, limit, offset)
}

// Patterns aggregates symbol frequency, average confidence and per-month
// counts over all journal entries.
func (s *JournalService) Patterns(ctx context.Context) (*PatternReport, error) {
	entries, err := s.journal.ListForPatterns(ctx)
	if err != nil {
		return nil, err
	}
	report := &PatternReport{
		TotalDreams: len(entries),
		Monthly:     map[string]int{},
	}
	if len(entries) == 0 {
		report.TopSymbols = []SymbolFrequency{}
		return report, nil
	}

	counts := map[string]int{}
	total := 0.0
	for _, entry := range entries {
		total += entry.ConfidenceScore
		for _, symbol := range entry.Symbols {
			counts[symbol]++
		}
		month := time.UnixMilli(entry.Ctime).UTC().Format("2006-01")
		report.Monthly[month]++
	}
	report.AvgConfidence = total / float64(len(entries))

	symbols := make([]SymbolFrequency, 0, len(counts))
	for symbol, count := range counts {
		symbols = append(symbols, SymbolFrequency{Symbol: symbol, Count: count})
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Count != symbols[j].Count {
			return symbols[i].Count > symbols[j].Count
		}
		return symbols[i].Symbol < symbols[j].Symbol
	})
	if len(symbols) > topSymbolCount {
		symbols = symbols[:topSymbolCount]
	}
	report.TopSymbols = symbols
	return report, nil
}
