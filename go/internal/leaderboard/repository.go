package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one all-time record: the player's name and their elapsed time in
// seconds for a given word.
type Entry struct {
	Name           string  `json:"name"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// Repository persists per-word high score lists in Postgres. Each word maps
// to one row holding the full serialized list; updates always rewrite the
// whole value, never parts of it.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the high_scores table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS high_scores (
			word       text PRIMARY KEY,
			scores     jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create high_scores table: %w", err)
	}
	return nil
}

// GetScores fetches the stored list for a word. An absent key yields an
// empty list, not an error.
func (r *Repository) GetScores(ctx context.Context, word string) ([]Entry, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT scores FROM high_scores WHERE word = $1`, word).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch high scores for %q: %w", word, err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode stored high scores for %q: %w", word, err)
	}
	return entries, nil
}

// PutScores rewrites the full list for a word.
func (r *Repository) PutScores(ctx context.Context, word string, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode high scores for %q: %w", word, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO high_scores (word, scores, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (word) DO UPDATE SET scores = EXCLUDED.scores, updated_at = now()`,
		word, raw)
	if err != nil {
		return fmt.Errorf("failed to store high scores for %q: %w", word, err)
	}
	return nil
}
