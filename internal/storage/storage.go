package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock.go

// Substrate is a local key-value store holding whole records under fixed
// keys. Records are always read and written in full.
type Substrate interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
