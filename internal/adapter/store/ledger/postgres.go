package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/domain"
)

const createFramesSQL = `
    CREATE TABLE IF NOT EXISTS bulletin_frames (
        product       TEXT NOT NULL,
        name          TEXT NOT NULL,
        run_id        TEXT NOT NULL,
        bulletin_date TEXT NOT NULL,
        valid_time    TIMESTAMPTZ NOT NULL,
        path          TEXT NOT NULL,
        input         TEXT NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (product, name)
    )
`

const upsertFrameSQL = `
    INSERT INTO bulletin_frames (product, name, run_id, bulletin_date, valid_time, path, input, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (product, name) DO UPDATE SET
        run_id = EXCLUDED.run_id,
        bulletin_date = EXCLUDED.bulletin_date,
        valid_time = EXCLUDED.valid_time,
        path = EXCLUDED.path,
        input = EXCLUDED.input,
        created_at = EXCLUDED.created_at
`

const listFramesBase = `
    SELECT run_id, product, bulletin_date, valid_time, name, path, input, created_at
    FROM bulletin_frames
    WHERE TRUE
`

// Postgres is a ledger stored in a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and creates the frames table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, createFramesSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create frames table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Record upserts rec.
func (p *Postgres) Record(ctx context.Context, rec domain.FrameRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx, upsertFrameSQL,
		rec.Product, rec.Name, rec.RunID, rec.BulletinDate,
		rec.ValidTime, rec.Path, rec.Input, created)
	if err != nil {
		return fmt.Errorf("failed to record frame %s: %w", rec.Name, err)
	}
	return nil
}

// List queries the frames table.
func (p *Postgres) List(ctx context.Context, q store.FrameQuery) ([]domain.FrameRecord, error) {
	query, args := listQuery(q)
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	defer rows.Close()

	records := make([]domain.FrameRecord, 0)
	for rows.Next() {
		var rec domain.FrameRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Product,
			&rec.BulletinDate,
			&rec.ValidTime,
			&rec.Name,
			&rec.Path,
			&rec.Input,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		rec.ValidTime = rec.ValidTime.UTC()
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func listQuery(q store.FrameQuery) (string, []any) {
	query := listFramesBase
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if q.Product != "" {
		query += " AND product = " + next(q.Product)
	}
	if q.Date != "" {
		query += " AND to_char(valid_time AT TIME ZONE 'UTC', 'YYYY-MM-DD') = " + next(q.Date)
	}
	if !q.Since.IsZero() {
		query += " AND valid_time >= " + next(q.Since)
	}
	query += " ORDER BY valid_time, name"
	if q.Limit > 0 {
		query += " LIMIT " + next(q.Limit)
	}
	return query, args
}
