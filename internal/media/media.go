package media

import (
	"context"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
)

type FileError struct {
	Name string
	Err  error
}

// BatchResult lists what a batch produced, in file iteration order.
type BatchResult struct {
	Items    []domain.StoryItem
	Failures []FileError
	Skipped  []string
}

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go

type Ingestor interface {
	Ingest(ctx context.Context, file domain.File) (domain.StoryItem, error)
	IngestBatch(ctx context.Context, files []domain.File) BatchResult
}
