package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateRepo — персистентный слепок tag → payload актора State.
// Последняя запись по тегу выигрывает.
type StateRepo struct {
	pool *pgxpool.Pool
}

// NewStateRepo создаёт StateRepo.
func NewStateRepo(pool *pgxpool.Pool) *StateRepo {
	return &StateRepo{pool: pool}
}

// Upsert записывает payload под тегом, перезаписывая прежний.
func (r *StateRepo) Upsert(ctx context.Context, tag string, payload []byte) error {
	query := `
		INSERT INTO state (tag, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tag) DO UPDATE
		SET payload = EXCLUDED.payload,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, tag, payload, time.Now())
	if err != nil {
		return fmt.Errorf("upsert state %s: %w", tag, err)
	}
	return nil
}

// Get возвращает payload по тегу.
func (r *StateRepo) Get(ctx context.Context, tag string) ([]byte, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM state WHERE tag = $1`, tag).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get state %s: %w", tag, err)
	}
	return payload, nil
}
