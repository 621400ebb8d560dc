package mediaimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

// Step is one rung of the image compression ladder.
type Step struct {
	MaxDim  int
	Quality int
}

type Limits struct {
	MaxImageDim      int
	JPEGQuality      int
	MaxImageBytes    int64
	MaxFallbackBytes int64
	MaxVideoBytes    int64
	Ladder           []Step
}

func LimitsFromConfig(cfg *config.Config) Limits {
	m := cfg.Media
	limits := Limits{
		MaxImageDim:      m.MaxImageDim,
		JPEGQuality:      m.JPEGQuality,
		MaxImageBytes:    m.MaxImageBytes,
		MaxFallbackBytes: m.MaxFallbackBytes,
		MaxVideoBytes:    m.MaxVideoBytes,
	}
	for i, dim := range m.DimLadder {
		quality := m.JPEGQuality
		if i < len(m.QualityLadder) {
			quality = m.QualityLadder[i]
		}
		limits.Ladder = append(limits.Ladder, Step{MaxDim: dim, Quality: quality})
	}
	return limits
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Clock  clockwork.Clock
}

type IngestorImpl struct {
	limits Limits
	logger logger.Logger
	clock  clockwork.Clock
	encode encodeFunc
	newID  func() string
}

func New(opts Opts) *IngestorImpl {
	return NewWithLimits(LimitsFromConfig(opts.Config), opts.Clock, opts.Logger)
}

func NewWithLimits(limits Limits, clock clockwork.Clock, log logger.Logger) *IngestorImpl {
	return &IngestorImpl{
		limits: limits,
		logger: log,
		clock:  clock,
		encode: encodeJPEG,
		newID:  uuid.NewString,
	}
}

var _ media.Ingestor = (*IngestorImpl)(nil)

func (m *IngestorImpl) Ingest(ctx context.Context, file domain.File) (domain.StoryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoryItem{}, err
	}

	kind, ok := domain.ClassifyType(file.Type)
	if !ok {
		return domain.StoryItem{}, fmt.Errorf("%s (%s): %w", file.Name, file.Type, domain.ErrUnsupportedType)
	}

	var (
		data string
		err  error
	)
	switch kind {
	case domain.KindVideo:
		data, err = m.ingestVideo(file)
	case domain.KindImage:
		data, err = m.ingestImage(ctx, file)
	}
	if err != nil {
		return domain.StoryItem{}, err
	}

	return domain.StoryItem{
		ID:        m.newID(),
		Kind:      kind,
		Data:      data,
		CreatedAt: m.clock.Now().UnixMilli(),
	}, nil
}

// IngestBatch handles files one at a time, in order. A failing file never
// stops the ones after it.
func (m *IngestorImpl) IngestBatch(ctx context.Context, files []domain.File) media.BatchResult {
	var res media.BatchResult
	for _, f := range files {
		item, err := m.Ingest(ctx, f)
		switch {
		case err == nil:
			m.logger.Info("Story ingested", "file", f.Name, "kind", item.Kind, "bytes", media.PayloadSize(item.Data))
			res.Items = append(res.Items, item)
		case errors.Is(err, domain.ErrUnsupportedType):
			m.logger.Debug("Skipping unsupported file", "file", f.Name, "type", f.Type)
			res.Skipped = append(res.Skipped, f.Name)
		default:
			m.logger.Warn("Failed to ingest file", "file", f.Name, "error", err)
			res.Failures = append(res.Failures, media.FileError{Name: f.Name, Err: err})
		}
	}
	return res
}
