package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvice/pkg/history"
)

var _ history.Repository = (*HistoryRepository)(nil)

// HistoryRepository implements history.Repository backed by PostgreSQL (pgx).
// The schema comes from the goose migrations in pkg/storage/postgres.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) Create(ctx context.Context, rec history.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	var userData []byte
	if len(rec.UserData) > 0 {
		userData = rec.UserData
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO advice_history (id, query, user_data, prompt, response, model, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, rec.ID, rec.Query, userData, rec.Prompt, rec.Response, rec.Model, rec.DurationMs, rec.CreatedAt)
	return err
}

func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (history.Record, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, query, user_data, prompt, response, model, duration_ms, created_at
FROM advice_history WHERE id = $1
`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return history.Record{}, history.ErrNotFound
	}
	return rec, err
}

func (r *HistoryRepository) List(ctx context.Context, limit, offset int) ([]history.Record, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, query, user_data, prompt, response, model, duration_ms, created_at
FROM advice_history
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *HistoryRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (history.Record, error) {
	var rec history.Record
	var userData []byte
	var created time.Time
	if err := row.Scan(&rec.ID, &rec.Query, &userData, &rec.Prompt, &rec.Response, &rec.Model, &rec.DurationMs, &created); err != nil {
		return history.Record{}, err
	}
	if len(userData) > 0 {
		rec.UserData = userData
	}
	rec.CreatedAt = created.UTC()
	return rec, nil
}
