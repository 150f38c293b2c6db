package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuanAssis01/sgi-maraba/internal/db"

	"github.com/jackc/pgx/v5"
)

// PostgresBlobs stores blobs in the kv_blobs table
type PostgresBlobs struct {
	queries *db.Queries
}

func NewPostgresBlobs(queries *db.Queries) *PostgresBlobs {
	return &PostgresBlobs{queries: queries}
}

func (s *PostgresBlobs) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.queries.GetBlob(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return blob.Value, nil
}

func (s *PostgresBlobs) Save(ctx context.Context, key string, value []byte) error {
	if err := s.queries.UpsertBlob(ctx, key, value); err != nil {
		return fmt.Errorf("failed to upsert blob: %w", err)
	}
	return nil
}
