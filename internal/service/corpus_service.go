package service

import (
	"context"
	"sync/atomic"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/corpus"
	appErr "github.com/xxxsen/oneiro/internal/pkg/errors"
	"github.com/xxxsen/oneiro/internal/repo"
)

// CorpusService exposes index rebuild and stats. Rebuilds are single-writer:
// a second rebuild request while one is running is rejected, reads keep
// hitting the previous generation until the swap.
type CorpusService struct {
	builder    *corpus.Builder
	chunks     *repo.ChunkRepo
	rebuilding atomic.Bool
}

func NewCorpusService(builder *corpus.Builder, chunks *repo.ChunkRepo) *CorpusService {
	return &CorpusService{builder: builder, chunks: chunks}
}

func (s *CorpusService) Rebuild(ctx context.Context) (int, error) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return 0, appErr.ErrCorpusBuilding
	}
	defer s.rebuilding.Store(false)
	logger := logutil.GetLogger(ctx)
	logger.Info("corpus rebuild started")
	count, err := s.builder.Build(ctx)
	if err != nil {
		logger.Error("corpus rebuild failed", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *CorpusService) Stats(ctx context.Context) (*repo.CorpusStats, error) {
	gen, err := s.chunks.ActiveGeneration(ctx)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, appErr.ErrCorpusEmpty
	}
	stats, err := s.chunks.Stats(ctx, gen.ID)
	if err != nil {
		return nil, err
	}
	stats.EmbedModel = gen.EmbedModel
	return stats, nil
}
