package corpus

import (
	"context"
	"fmt"
	"io"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/ai"
	"github.com/xxxsen/oneiro/internal/docstore"
	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/repo"
)

const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// Builder turns raw corpus documents into an indexed chunk generation: extract
// text, clean it, chunk it, embed every chunk, then activate the generation.
type Builder struct {
	store        docstore.Store
	chunks       *repo.ChunkRepo
	manager      *ai.Manager
	sources      *SourceTable
	chunkSize    int
	chunkOverlap int
}

func NewBuilder(store docstore.Store, chunks *repo.ChunkRepo, manager *ai.Manager, sources *SourceTable, chunkSize, chunkOverlap int) *Builder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Builder{
		store:        store,
		chunks:       chunks,
		manager:      manager,
		sources:      sources,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Build indexes every supported document in the store into a new generation
// and returns the number of chunks indexed. The previous generation stays
// active (and readable) until the new one is complete.
func (b *Builder) Build(ctx context.Context) (int, error) {
	logger := logutil.GetLogger(ctx)
	keys, err := b.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list corpus documents: %w", err)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("no corpus documents found")
	}
	generationID, err := b.chunks.CreateGeneration(ctx, b.manager.EmbeddingModelName())
	if err != nil {
		return 0, fmt.Errorf("create generation: %w", err)
	}
	total := 0
	for _, key := range keys {
		count, err := b.indexDocument(ctx, generationID, key)
		if err != nil {
			return 0, fmt.Errorf("index %s: %w", key, err)
		}
		logger.Info("document indexed", zap.String("key", key), zap.Int("chunks", count))
		total += count
	}
	if err := b.chunks.ActivateGeneration(ctx, generationID, total); err != nil {
		return 0, fmt.Errorf("activate generation: %w", err)
	}
	logger.Info("corpus build complete", zap.Int64("generation", generationID), zap.Int("chunks", total))
	return total, nil
}

func (b *Builder) indexDocument(ctx context.Context, generationID int64, key string) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("key", key))
	rc, err := b.store.Open(ctx, key)
	if err != nil {
		return 0, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return 0, err
	}
	text, err := ExtractText(key, data)
	if err != nil {
		logger.Warn("skipping document", zap.Error(err))
		return 0, nil
	}
	text = CleanText(text)
	if text == "" {
		logger.Warn("document produced no text, skipping")
		return 0, nil
	}
	meta := b.sources.Lookup(key)
	pieces := Chunk(text, b.chunkSize, b.chunkOverlap, DefaultSeparators)
	records := make([]*model.ResearchChunk, 0, len(pieces))
	for idx, piece := range pieces {
		embedding, err := b.manager.Embed(ctx, piece, TaskTypeDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", idx, err)
		}
		records = append(records, &model.ResearchChunk{
			SourceID:          meta.SourceID,
			ChunkIndex:        idx,
			TotalChunks:       len(pieces),
			Title:             meta.Title,
			Category:          meta.Category,
			CredibilityWeight: meta.CredibilityWeight,
			ValidationTier:    meta.ValidationTier,
			Content:           piece,
			Embedding:         embedding,
		})
	}
	if err := b.chunks.UpsertChunks(ctx, generationID, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
