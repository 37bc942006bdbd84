package retrieve

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xxxsen/oneiro/internal/ai"
	"github.com/xxxsen/oneiro/internal/corpus"
	"github.com/xxxsen/oneiro/internal/model"
	"github.com/xxxsen/oneiro/internal/repo"
)

// Index answers nearest-neighbor queries over the research corpus.
type Index interface {
	Search(ctx context.Context, query string, limit int, categories []string) ([]model.RetrievedChunk, error)
}

// PGIndex searches the active chunk generation in postgres. Query embeddings
// go through the persistent embedding cache so repeated questions do not
// re-hit the embedding API.
type PGIndex struct {
	chunks  *repo.ChunkRepo
	cache   *repo.EmbeddingCacheRepo
	manager *ai.Manager
}

func NewPGIndex(chunks *repo.ChunkRepo, cache *repo.EmbeddingCacheRepo, manager *ai.Manager) *PGIndex {
	return &PGIndex{chunks: chunks, cache: cache, manager: manager}
}

func (idx *PGIndex) Search(ctx context.Context, query string, limit int, categories []string) ([]model.RetrievedChunk, error) {
	gen, err := idx.chunks.ActiveGeneration(ctx)
	if err != nil {
		return nil, fmt.Errorf("read active generation: %w", err)
	}
	if gen == nil {
		// No corpus has been built yet. Retrieval degrades to zero results
		// so interpretation proceeds without research context.
		return nil, nil
	}
	// Query vectors must live in the same embedding space as the indexed
	// chunks, otherwise distances are meaningless.
	if gen.EmbedModel != idx.manager.EmbeddingModelName() {
		return nil, fmt.Errorf("corpus indexed with %q but embedder is %q, rebuild required",
			gen.EmbedModel, idx.manager.EmbeddingModelName())
	}
	embedding, err := idx.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return idx.chunks.Search(ctx, gen.ID, embedding, limit, categories)
}

func (idx *PGIndex) embedQuery(ctx context.Context, query string) ([]float32, error) {
	modelName := idx.manager.EmbeddingModelName()
	hash := hashContent(query)
	if idx.cache != nil {
		cached, ok, err := idx.cache.Get(ctx, modelName, corpus.TaskTypeQuery, hash)
		if err != nil {
			return nil, err
		}
		if ok {
			return cached, nil
		}
	}
	embedding, err := idx.manager.Embed(ctx, query, corpus.TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	if idx.cache != nil {
		_ = idx.cache.Save(ctx, &model.EmbeddingCache{
			ModelName:   modelName,
			TaskType:    corpus.TaskTypeQuery,
			ContentHash: hash,
			Embedding:   embedding,
			Ctime:       time.Now().UnixMilli(),
		})
	}
	return embedding, nil
}

func hashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
