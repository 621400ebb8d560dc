package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/TINANOROUZI/24hr-stories/pkg/retry"
	"github.com/go-redis/redis/v8"
)

type Opts struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	Logger    logger.Logger
	Retry     retry.Config
}

// Store keeps each record as a plain string value under "<namespace>:<key>".
type Store struct {
	client    *redis.Client
	namespace string
}

func Open(ctx context.Context, opts Opts) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	err := retry.Do(ctx, opts.Logger, "redis ping", func() error {
		return client.Ping(ctx).Err()
	}, opts.Retry)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	opts.Logger.Info("Connected to redis", "addr", opts.Addr)
	return NewWithClient(client, opts.Namespace), nil
}

func NewWithClient(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return fmt.Sprintf("%s:%s", s.namespace, k)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ storage.Substrate = (*Store)(nil)
