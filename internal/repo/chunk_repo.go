package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/oneiro/internal/model"
)

const (
	GenerationStateBuilding = "building"
	GenerationStateActive   = "active"
	GenerationStateRetired  = "retired"
)

type CorpusGeneration struct {
	ID         int64
	EmbedModel string
	ChunkCount int
	State      string
	Ctime      int64
}

type CorpusStats struct {
	TotalChunks   int            `json:"total_chunks"`
	UniqueSources int            `json:"unique_sources"`
	Categories    map[string]int `json:"categories"`
	EmbedModel    string         `json:"embed_model"`
}

// ChunkRepo stores indexed research chunks. Rebuilds write into a fresh
// generation and activate it in one transaction so concurrent readers never
// observe a partially built index.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) CreateGeneration(ctx context.Context, embedModel string) (int64, error) {
	const query = `
		INSERT INTO corpus_generations (embed_model, state, ctime)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, embedModel, GenerationStateBuilding, time.Now().UnixMilli()).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ChunkRepo) UpsertChunks(ctx context.Context, generationID int64, chunks []*model.ResearchChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	const query = `
		INSERT INTO corpus_chunks (
			generation_id, source_id, chunk_index, total_chunks,
			title, category, credibility_weight, validation_tier, content, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (generation_id, source_id, chunk_index) DO UPDATE SET
			total_chunks = EXCLUDED.total_chunks,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			credibility_weight = EXCLUDED.credibility_weight,
			validation_tier = EXCLUDED.validation_tier,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
	`
	for _, chunk := range chunks {
		_, err := r.db.ExecContext(ctx, query,
			generationID,
			chunk.SourceID,
			chunk.ChunkIndex,
			chunk.TotalChunks,
			chunk.Title,
			chunk.Category,
			chunk.CredibilityWeight,
			chunk.ValidationTier,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s/%d: %w", chunk.SourceID, chunk.ChunkIndex, err)
		}
	}
	return nil
}

// ActivateGeneration flips the new generation to active and drops retired
// generations. Chunks of dropped generations go away via ON DELETE CASCADE.
func (r *ChunkRepo) ActivateGeneration(ctx context.Context, generationID int64, chunkCount int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`UPDATE corpus_generations SET state = $1 WHERE state = $2`,
		GenerationStateRetired, GenerationStateActive,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE corpus_generations SET state = $1, chunk_count = $2 WHERE id = $3`,
		GenerationStateActive, chunkCount, generationID,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM corpus_generations WHERE state = $1`,
		GenerationStateRetired,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ChunkRepo) ActiveGeneration(ctx context.Context) (*CorpusGeneration, error) {
	const query = `
		SELECT id, embed_model, chunk_count, state, ctime
		FROM corpus_generations
		WHERE state = $1
		ORDER BY id DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, GenerationStateActive)
	var gen CorpusGeneration
	if err := row.Scan(&gen.ID, &gen.EmbedModel, &gen.ChunkCount, &gen.State, &gen.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &gen, nil
}

// Search returns the nearest chunks by cosine distance along with the
// distance-derived similarity, clamped to [0,1]. An empty generation yields an
// empty slice.
func (r *ChunkRepo) Search(ctx context.Context, generationID int64, embedding []float32, limit int, categories []string) ([]model.RetrievedChunk, error) {
	query := `
		SELECT source_id, chunk_index, total_chunks, title, category,
			credibility_weight, validation_tier, content, embedding <=> $2 AS distance
		FROM corpus_chunks
		WHERE generation_id = $1
	`
	args := []interface{}{generationID, pgvector.NewVector(embedding)}
	if len(categories) > 0 {
		query += ` AND category = ANY($3)`
		args = append(args, pq.Array(categories))
	}
	query += fmt.Sprintf(` ORDER BY distance ASC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.RetrievedChunk
	for rows.Next() {
		var item model.RetrievedChunk
		var distance float64
		if err := rows.Scan(
			&item.Chunk.SourceID,
			&item.Chunk.ChunkIndex,
			&item.Chunk.TotalChunks,
			&item.Chunk.Title,
			&item.Chunk.Category,
			&item.Chunk.CredibilityWeight,
			&item.Chunk.ValidationTier,
			&item.Chunk.Content,
			&distance,
		); err != nil {
			return nil, err
		}
		similarity := 1 - distance
		if similarity < 0 {
			similarity = 0
		}
		if similarity > 1 {
			similarity = 1
		}
		item.Similarity = similarity
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *ChunkRepo) Stats(ctx context.Context, generationID int64) (*CorpusStats, error) {
	stats := &CorpusStats{Categories: map[string]int{}}
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source_id) FROM corpus_chunks WHERE generation_id = $1`,
		generationID,
	)
	if err := row.Scan(&stats.TotalChunks, &stats.UniqueSources); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM corpus_chunks WHERE generation_id = $1 GROUP BY category`,
		generationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.Categories[category] = count
	}
	return stats, rows.Err()
}
