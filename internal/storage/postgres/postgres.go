package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/TINANOROUZI/24hr-stories/internal/migrations"
	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/TINANOROUZI/24hr-stories/pkg/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Opts struct {
	DSN    string
	Logger logger.Logger
	Retry  retry.Config
}

type Store struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func Open(ctx context.Context, opts Opts) (*Store, error) {
	pool, err := pgxpool.New(ctx, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	err = retry.Do(ctx, opts.Logger, "postgres ping", func() error {
		return pool.Ping(ctx)
	}, opts.Retry)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := migrate(ctx, opts.DSN); err != nil {
		pool.Close()
		return nil, err
	}

	opts.Logger.Info("Connected to postgres")
	return &Store{pool: pool, logger: opts.Logger}, nil
}

func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	return migrations.Up(ctx, db, goose.DialectPostgres)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := builder.
		Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var value string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := builder.
		Insert("kv").
		Columns("key", "value", "size_bytes", "updated_at").
		Values(key, string(value), len(value), time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, size_bytes = EXCLUDED.size_bytes, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := builder.
		Delete("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ storage.Substrate = (*Store)(nil)
