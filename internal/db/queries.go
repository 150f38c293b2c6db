package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries wraps database queries
type Queries struct {
	*pgxpool.Pool
}

// NewQueries creates a new Queries instance
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{Pool: pool}
}

// Blob represents a kv_blobs row
type Blob struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

func (q *Queries) GetBlob(ctx context.Context, key string) (Blob, error) {
	var b Blob
	err := q.Pool.QueryRow(ctx,
		"SELECT key, value, updated_at FROM kv_blobs WHERE key = $1",
		key,
	).Scan(&b.Key, &b.Value, &b.UpdatedAt)
	return b, err
}

func (q *Queries) UpsertBlob(ctx context.Context, key string, value []byte) error {
	_, err := q.Pool.Exec(ctx,
		`INSERT INTO kv_blobs (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return err
}

func (q *Queries) ListBlobKeys(ctx context.Context) ([]string, error) {
	rows, err := q.Pool.Query(ctx, "SELECT key FROM kv_blobs ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
