package wishlist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores wishlists in the wishlists table (see db/migrations).
type PostgresBackend struct {
	db *pgxpool.Pool
}

func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT book_ids::text FROM wishlists WHERE key = $1`

	var raw string
	err := b.db.QueryRow(ctx, q, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (b *PostgresBackend) Save(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO wishlists (key, book_ids, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key)
		DO UPDATE SET book_ids = EXCLUDED.book_ids, updated_at = NOW()
	`
	_, err := b.db.Exec(ctx, q, key, string(data))
	return err
}
