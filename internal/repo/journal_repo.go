package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/xxxsen/oneiro/internal/model"
	appErr "github.com/xxxsen/oneiro/internal/pkg/errors"
)

type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Insert(ctx context.Context, entry *model.DreamEntry) (int64, error) {
	userCtx, err := json.Marshal(entry.UserContext)
	if err != nil {
		return 0, err
	}
	interp, err := json.Marshal(entry.Interpretation)
	if err != nil {
		return 0, err
	}
	symbols, err := json.Marshal(entry.Symbols)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO dream_entries (
			dream_text, user_context, interpretation, confidence_score, symbols, strategy, ctime
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		entry.DreamText,
		string(userCtx),
		string(interp),
		entry.ConfidenceScore,
		string(symbols),
		entry.Strategy,
		entry.Ctime,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *JournalRepo) Get(ctx context.Context, id int64) (*model.DreamEntry, error) {
	const query = `
		SELECT id, dream_text, user_context, interpretation, confidence_score, symbols, strategy, ctime
		FROM dream_entries
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	entry, err := scanDreamEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *JournalRepo) List(ctx context.Context, limit, offset int) ([]model.DreamEntry, error) {
	const query = `
		SELECT id, dream_text, user_context, interpretation, confidence_score, symbols, strategy, ctime
		FROM dream_entries
		ORDER BY ctime DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.DreamEntry
	for rows.Next() {
		entry, err := scanDreamEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, *entry)
	}
	return results, rows.Err()
}

// ListForPatterns loads the lightweight fields used by pattern analysis.
func (r *JournalRepo) ListForPatterns(ctx context.Context) ([]model.DreamEntry, error) {
	const query = `
		SELECT id, confidence_score, symbols, ctime
		FROM dream_entries
		ORDER BY ctime ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.DreamEntry
	for rows.Next() {
		var entry model.DreamEntry
		var symbols string
		if err := rows.Scan(&entry.ID, &entry.ConfidenceScore, &symbols, &entry.Ctime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(symbols), &entry.Symbols); err != nil {
			entry.Symbols = nil
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

func scanDreamEntry(scan func(dst ...interface{}) error) (*model.DreamEntry, error) {
	var entry model.DreamEntry
	var userCtx, interp, symbols string
	if err := scan(
		&entry.ID,
		&entry.DreamText,
		&userCtx,
		&interp,
		&entry.ConfidenceScore,
		&symbols,
		&entry.Strategy,
		&entry.Ctime,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(userCtx), &entry.UserContext); err != nil {
		entry.UserContext = model.UserContext{}
	}
	if err := json.Unmarshal([]byte(interp), &entry.Interpretation); err != nil {
		entry.Interpretation = nil
	}
	if err := json.Unmarshal([]byte(symbols), &entry.Symbols); err != nil {
		entry.Symbols = nil
	}
	return &entry, nil
}
