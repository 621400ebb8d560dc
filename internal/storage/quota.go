package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type quota struct {
	Substrate

	mu     sync.Mutex
	max    int64
	keys   []string
	primed bool
	sizes  map[string]int64
}

// WithQuota caps the total size of all records written through the returned
// substrate, the way a browser caps local storage per origin. Records named
// in keys are sized before the first write, so data already in the backend
// counts even when this process never touches it. A max of zero or less
// disables the cap.
func WithQuota(sub Substrate, max int64, keys ...string) Substrate {
	if max <= 0 {
		return sub
	}
	return &quota{
		Substrate: sub,
		max:       max,
		keys:      keys,
		sizes:     make(map[string]int64),
	}
}

func (q *quota) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := q.Substrate.Get(ctx, key)
	if err == nil {
		q.mu.Lock()
		q.sizes[key] = int64(len(value))
		q.mu.Unlock()
	}
	return value, err
}

func (q *quota) Set(ctx context.Context, key string, value []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.primed {
		for _, k := range q.keys {
			if _, known := q.sizes[k]; known {
				continue
			}
			if err := q.learn(ctx, k); err != nil {
				return err
			}
		}
		q.primed = true
	}
	if _, known := q.sizes[key]; !known {
		if err := q.learn(ctx, key); err != nil {
			return err
		}
	}

	var total int64
	for k, n := range q.sizes {
		if k != key {
			total += n
		}
	}
	total += int64(len(value))
	if total > q.max {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, total, q.max)
	}

	if err := q.Substrate.Set(ctx, key, value); err != nil {
		return err
	}
	q.sizes[key] = int64(len(value))
	return nil
}

func (q *quota) Delete(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.Substrate.Delete(ctx, key); err != nil {
		return err
	}
	q.sizes[key] = 0
	return nil
}

func (q *quota) learn(ctx context.Context, key string) error {
	existing, err := q.Substrate.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		q.sizes[key] = 0
	case err != nil:
		return fmt.Errorf("failed to size %s: %w", key, err)
	default:
		q.sizes[key] = int64(len(existing))
	}
	return nil
}
