package storagefx

import (
	"context"
	"fmt"

	"github.com/TINANOROUZI/24hr-stories/internal/storage"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/memory"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/postgres"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/redis"
	"github.com/TINANOROUZI/24hr-stories/internal/storage/sqlite"
	"github.com/TINANOROUZI/24hr-stories/internal/story"
	"github.com/TINANOROUZI/24hr-stories/pkg/config"
	"github.com/TINANOROUZI/24hr-stories/pkg/logger"
	"github.com/TINANOROUZI/24hr-stories/pkg/retry"
	"go.uber.org/fx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

var Module = fx.Provide(New)

// New opens the configured substrate, wraps it in the storage quota and ties
// its lifetime to the fx lifecycle.
func New(opts Opts) (storage.Substrate, error) {
	sub, err := Open(context.Background(), opts.Config, opts.Logger)
	if err != nil {
		return nil, err
	}

	opts.LC.Append(
		fx.Hook{
			OnStop: func(ctx context.Context) error {
				return sub.Close()
			},
		},
	)

	return storage.WithQuota(sub, opts.Config.Storage.QuotaBytes, story.ActiveKey, story.ArchiveKey), nil
}

func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Substrate, error) {
	switch cfg.Storage.Driver {
	case DriverSQLite, "":
		log.Debug("Opening sqlite storage", "path", cfg.Storage.Path)
		return sqlite.Open(ctx, cfg.Storage.Path)
	case DriverPostgres:
		return postgres.Open(ctx, postgres.Opts{
			DSN:    cfg.GetDSN(),
			Logger: log,
			Retry:  retry.DefaultConfig(),
		})
	case DriverRedis:
		return redis.Open(ctx, redis.Opts{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Storage.Namespace,
			Logger:    log,
			Retry:     retry.DefaultConfig(),
		})
	case DriverMemory:
		log.Warn("Using in-memory storage, stories will not survive a restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
