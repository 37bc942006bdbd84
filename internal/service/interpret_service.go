package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/ai"
	"github.com/xxxsen/oneiro/internal/interpret"
	"github.com/xxxsen/oneiro/internal/model"
	appErr "github.com/xxxsen/oneiro/internal/pkg/errors"
	"github.com/xxxsen/oneiro/internal/repo"
)

var ErrAIUnavailable = ai.ErrUnavailable

type cachedResult struct {
	interpretation *model.Interpretation
	symbols        []string
}

// InterpretService dispatches a dream to the requested strategy, caches
// identical requests and records every interpretation in the journal.
type InterpretService struct {
	rag           *interpret.RAGInterpreter
	agentic       *interpret.AgenticInterpreter
	journal       *repo.JournalRepo
	cache         *expirable.LRU[string, cachedResult]
	maxInputChars int
}

func NewInterpretService(rag *interpret.RAGInterpreter, agentic *interpret.AgenticInterpreter, journal *repo.JournalRepo, maxInputChars int) *InterpretService {
	cache := expirable.NewLRU[string, cachedResult](1024, nil, time.Hour)
	return &InterpretService{
		rag:           rag,
		agentic:       agentic,
		journal:       journal,
		cache:         cache,
		maxInputChars: maxInputChars,
	}
}

// Interpret runs the interpretation and returns the persisted journal entry.
// The empty and over-length checks happen before any retrieval or generation
// work.
func (s *InterpretService) Interpret(ctx context.Context, dreamText string, uc model.UserContext, strategy string) (*model.DreamEntry, error) {
	dreamText = strings.TrimSpace(dreamText)
	if dreamText == "" {
		return nil, appErr.ErrInvalid
	}
	if s.maxInputChars > 0 && len(dreamText) > s.maxInputChars {
		return nil, appErr.ErrInvalid
	}
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strategy == "" {
		strategy = interpret.StrategyRAG
	}
	if strategy != interpret.StrategyRAG && strategy != interpret.StrategyAgentic {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("strategy", strategy))

	key := requestKey(strategy, dreamText, uc)
	result, ok := s.cache.Get(key)
	if !ok {
		var err error
		result, err = s.run(ctx, dreamText, uc, strategy)
		if err != nil {
			logger.Error("interpretation failed", zap.Error(err))
			return nil, err
		}
		s.cache.Add(key, result)
	} else {
		logger.Debug("interpretation served from cache")
	}

	entry := &model.DreamEntry{
		DreamText:       dreamText,
		UserContext:     uc,
		Interpretation:  result.interpretation,
		ConfidenceScore: result.interpretation.ConfidenceScore,
		Symbols:         result.symbols,
		Strategy:        strategy,
		Ctime:           time.Now().UnixMilli(),
	}
	id, err := s.journal.Insert(ctx, entry)
	if err != nil {
		logger.Error("failed to record journal entry", zap.Error(err))
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

func (s *InterpretService) run(ctx context.Context, dreamText string, uc model.UserContext, strategy string) (cachedResult, error) {
	if strategy == interpret.StrategyAgentic {
		interpretation, symbols, err := s.agentic.Interpret(ctx, dreamText, uc)
		if err != nil {
			return cachedResult{}, err
		}
		return cachedResult{interpretation: interpretation, symbols: symbols}, nil
	}
	interpretation, err := s.rag.Interpret(ctx, dreamText, uc)
	if err != nil {
		return cachedResult{}, err
	}
	return cachedResult{interpretation: interpretation}, nil
}

// Followup answers a question about an existing journal entry using its
// stored interpretation as conversational context.
func (s *InterpretService) Followup(ctx context.Context, entryID int64, question string) (*model.Interpretation, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, appErr.ErrInvalid
	}
	entry, err := s.journal.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	previous := ""
	if entry.Interpretation != nil {
		previous = entry.Interpretation.Interpretation
	}
	return s.rag.Followup(ctx, entry.DreamText, question, previous, entry.UserContext)
}

func requestKey(strategy, dreamText string, uc model.UserContext) string {
	keys := make([]string, 0, len(uc))
	for k := range uc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	h.Write([]byte(strategy))
	h.Write([]byte{0})
	h.Write([]byte(dreamText))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(uc[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}
